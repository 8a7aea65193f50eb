package eval

import (
	"context"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/medgate/core"
)

// Case is one (question, context, answer) triple for offline batch scoring.
type Case struct {
	Question string
	Contexts []string
	Answer   string
}

// BatchOption configures a batch evaluation run.
type BatchOption func(*batchOptions) error

type batchOptions struct {
	poolSize int
}

// WithPoolSize sets the worker pool size for concurrent scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1. Sizes below 1
// are rejected with ErrInvalidPoolSize.
func WithPoolSize(size int) BatchOption {
	return func(o *batchOptions) error {
		if size < 1 {
			return ErrInvalidPoolSize
		}
		o.poolSize = size
		return nil
	}
}

// BatchEvaluate scores many cases concurrently over a worker pool.
// Results are returned in input order. Individual case failures follow the
// same fail-closed rule as Evaluate, so a batch never partially errors:
// each result is either real scores or the zero fail-closed fallback.
func (e *Evaluator) BatchEvaluate(ctx context.Context, cases []Case, opts ...BatchOption) ([]core.QualityScores, error) {
	o := &batchOptions{
		poolSize: runtime.NumCPU() / 2,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.poolSize < 1 {
		o.poolSize = 1
	}

	if len(cases) == 0 {
		return []core.QualityScores{}, nil
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]core.QualityScores, len(cases))
	var wg sync.WaitGroup

	for n, c := range cases {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[n] = e.Evaluate(ctx, c.Question, c.Contexts, c.Answer)
		}); err != nil {
			wg.Done()
			results[n] = core.QualityScores{Err: err.Error()}
		}
	}

	wg.Wait()
	return results, nil
}
