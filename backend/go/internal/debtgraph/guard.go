package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"DebtGraph/backend/go/pkg/circuitbreaker"
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// guardedRunner fails fast while the database is known to be unreachable.
type guardedRunner struct {
	next    Runner
	breaker *circuitbreaker.Breaker
}

// Guard wraps next with a circuit breaker that opens after repeated
// apperr.ErrBackendUnavailable failures. While open, Run returns
// apperr.ErrBackendUnavailable without contacting the server. Other errors
// pass through and do not count as failures.
func Guard(next Runner, s circuitbreaker.Settings) Runner {
	s.Trips = func(err error) bool { return errors.Is(err, apperr.ErrBackendUnavailable) }
	return &guardedRunner{next: next, breaker: circuitbreaker.New(s)}
}

func (g *guardedRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	var res *neo4j.EagerResult
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = g.next.Run(ctx, query, params)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", apperr.ErrBackendUnavailable, err)
	}
	return res, err
}
