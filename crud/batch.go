package crud

import (
	"fmt"
	"math"

	"github.com/code19m/errx"
)

const (
	// pgMaxQueryArgs is the maximum number of bind parameters PostgreSQL
	// accepts in a single prepared statement (int16 wire limit).
	pgMaxQueryArgs = 32767

	// batchSafetyFactor leaves headroom under the parameter ceiling for
	// additional per-statement arguments such as conflict-clause values.
	batchSafetyFactor = 0.75

	codeInvalidBatchPlan = "INVALID_BATCH_PLAN"
)

// BatchPlan holds the derived batch sizing for one entity type. Inserting N
// rows of M columns each binds N*M parameters, so the usable batch size is a
// pure function of the column count.
type BatchPlan struct {
	// MaxSize is the hard ceiling: floor(pgMaxQueryArgs / columnCount).
	MaxSize int
	// Size is the batch size actually used by bulk operations.
	Size int
}

// planBatches derives the batch plan for an entity with the given total
// column count. A positive override caps the size but can never raise it
// above MaxSize. The returned size is always at least 1; a plan that cannot
// fit a single row is a configuration error.
func planBatches(columnCount, override int) (BatchPlan, error) {
	if columnCount < 1 {
		return BatchPlan{}, errx.New(
			"batch plan requires at least one column",
			errx.WithCode(codeInvalidBatchPlan),
		)
	}

	maxSize := pgMaxQueryArgs / columnCount
	if maxSize < 1 {
		return BatchPlan{}, errx.New(
			fmt.Sprintf(
				"entity with %d columns cannot fit a single row under the %d parameter limit",
				columnCount, pgMaxQueryArgs,
			),
			errx.WithCode(codeInvalidBatchPlan),
		)
	}

	size := int(math.Floor(float64(maxSize) * batchSafetyFactor))
	if override > 0 {
		size = min(override, maxSize)
	}
	if size < 1 {
		size = 1
	}

	return BatchPlan{MaxSize: maxSize, Size: size}, nil
}
