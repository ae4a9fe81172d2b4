package scorecard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInferDirection(t *testing.T) {
	t.Run("rising series infers ascending", func(t *testing.T) {
		targets := []*decimal.Decimal{dec("10"), dec("20"), dec("30")}
		assert.Equal(t, DirectionAscending, InferDirection(targets))
	})

	t.Run("falling series infers descending", func(t *testing.T) {
		targets := []*decimal.Decimal{dec("30"), dec("20"), dec("10")}
		assert.Equal(t, DirectionDescending, InferDirection(targets))
	})

	t.Run("flat series infers ascending", func(t *testing.T) {
		targets := []*decimal.Decimal{dec("10"), dec("10"), dec("10")}
		assert.Equal(t, DirectionAscending, InferDirection(targets))
	})

	t.Run("nil gaps are skipped", func(t *testing.T) {
		targets := []*decimal.Decimal{nil, dec("30"), nil, dec("10"), nil}
		assert.Equal(t, DirectionDescending, InferDirection(targets))
	})

	t.Run("single target defaults to ascending", func(t *testing.T) {
		targets := []*decimal.Decimal{nil, dec("30"), nil}
		assert.Equal(t, DirectionAscending, InferDirection(targets))
	})

	t.Run("empty series defaults to ascending", func(t *testing.T) {
		assert.Equal(t, DirectionAscending, InferDirection(nil))
		assert.Equal(t, DirectionAscending, InferDirection([]*decimal.Decimal{nil, nil}))
	})
}
