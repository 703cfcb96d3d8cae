package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBatchesStaysUnderParameterLimit(t *testing.T) {
	for columnCount := 1; columnCount <= 128; columnCount++ {
		plan, err := planBatches(columnCount, 0)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, plan.Size, 1, "columns=%d", columnCount)
		assert.LessOrEqual(t, plan.Size, plan.MaxSize, "columns=%d", columnCount)
		assert.LessOrEqual(t, plan.Size*columnCount, pgMaxQueryArgs, "columns=%d", columnCount)
		assert.LessOrEqual(t, plan.MaxSize*columnCount, pgMaxQueryArgs, "columns=%d", columnCount)
	}
}

func TestPlanBatchesAppliesSafetyFactor(t *testing.T) {
	plan, err := planBatches(7, 0)
	require.NoError(t, err)

	assert.Equal(t, 4681, plan.MaxSize)
	assert.Equal(t, 3510, plan.Size)
}

func TestPlanBatchesOverride(t *testing.T) {
	t.Run("override below max is used as is", func(t *testing.T) {
		plan, err := planBatches(7, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, plan.Size)
	})

	t.Run("override is capped at max", func(t *testing.T) {
		plan, err := planBatches(7, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, plan.MaxSize, plan.Size)
	})

	t.Run("override of one forces single-row batches", func(t *testing.T) {
		plan, err := planBatches(7, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, plan.Size)
	})
}

func TestPlanBatchesSingleColumnEntity(t *testing.T) {
	plan, err := planBatches(1, 0)
	require.NoError(t, err)

	assert.Equal(t, pgMaxQueryArgs, plan.MaxSize)
	assert.GreaterOrEqual(t, plan.Size, 1)
}

func TestPlanBatchesConfigurationErrors(t *testing.T) {
	_, err := planBatches(0, 0)
	assert.Error(t, err)

	// More columns than the protocol allows parameters per statement.
	_, err = planBatches(pgMaxQueryArgs+1, 0)
	assert.Error(t, err)
}
