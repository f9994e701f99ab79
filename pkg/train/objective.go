package train

import (
	"context"

	"github.com/plumelab/plume/pkg/data"
)

// Objective computes a loss and its parameter gradients from one batch.
// The application minimizes each registered objective with its own
// optimizer, and records the loss under the objective's name.
type Objective func(ctx context.Context, batch data.Batch) (loss float64, grads Grads, err error)
