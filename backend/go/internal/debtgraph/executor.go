// Package debtgraph implements the read-side query layer over the corporate
// debt graph: templated traversals, pagination with independent counting,
// bounded cycle detection and normalization of driver results into JSON.
package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"DebtGraph/backend/go/pkg/logger"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"
)

// Runner executes a single read query and buffers its records.
// *neo4j.Client from the database package satisfies it.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Count is the size of a result set independent of pagination.
type Count struct {
	Total int64 `json:"total"`
}

// Result pairs the total row count with the JSON payload of one page.
// It is built per call and never modified afterwards.
type Result struct {
	Count   Count
	Payload string

	records []*neo4j.Record
}

// Rows converts the page's records into normalized variant rows.
func (r *Result) Rows() ([]Row, error) {
	return toRows(r.records)
}

// Executor runs templates with bound parameters and pagination.
type Executor struct {
	runner Runner
	log    *logger.Logger
}

// NewExecutor creates an Executor. A nil logger discards output.
func NewExecutor(runner Runner, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{runner: runner, log: log}
}

// Count runs the count variant of t and returns {total: N}.
func (e *Executor) Count(ctx context.Context, t Template, params map[string]any) (Count, error) {
	bound, err := copyParams(params)
	if err != nil {
		return Count{}, err
	}

	start := time.Now()
	res, err := e.runner.Run(ctx, t.CountCypher(), bound)
	if err != nil {
		return Count{}, err
	}
	e.logQuery("count", len(res.Records), start)

	if len(res.Records) == 0 {
		return Count{}, nil
	}
	raw, ok := res.Records[0].Get(countColumn)
	if !ok {
		return Count{}, fmt.Errorf("%w: count query returned no %q column", apperr.ErrSerialization, countColumn)
	}
	total, ok := raw.(int64)
	if !ok {
		return Count{}, fmt.Errorf("%w: count query returned %T, want int64", apperr.ErrSerialization, raw)
	}
	return Count{Total: total}, nil
}

// Page runs t over the requested window and returns the rows as JSON.
func (e *Executor) Page(ctx context.Context, t Template, params map[string]any, page Page) (string, error) {
	records, err := e.fetch(ctx, t, params, page)
	if err != nil {
		return "", err
	}
	return e.encode(records)
}

// Select runs the count and page queries concurrently and returns both, or
// the first error.
func (e *Executor) Select(ctx context.Context, t Template, params map[string]any, page Page) (*Result, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	var (
		count   Count
		records []*neo4j.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = e.Count(gctx, t, params)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = e.fetch(gctx, t, params, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payload, err := e.encode(records)
	if err != nil {
		return nil, err
	}
	return &Result{Count: count, Payload: payload, records: records}, nil
}

func (e *Executor) fetch(ctx context.Context, t Template, params map[string]any, page Page) ([]*neo4j.Record, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	bound, err := page.bind(params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.runner.Run(ctx, t.PageCypher(page), bound)
	if err != nil {
		return nil, err
	}
	e.logQuery("page", len(res.Records), start)
	return res.Records, nil
}

// encode tries to encode the records as they come from the driver and falls
// back to the normalizer when they contain graph elements.
func (e *Executor) encode(records []*neo4j.Record) (string, error) {
	raw := make([]map[string]any, len(records))
	for i, rec := range records {
		raw[i] = rec.AsMap()
	}
	payload, err := encodeDirect(raw)
	if err == nil {
		return payload, nil
	}
	e.log.WithError(err).Debug("direct encoding failed, normalizing rows")

	rows, err := toRows(records)
	if err != nil {
		return "", err
	}
	payload, err = encodeJSON(NormalizeRows(rows))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrSerialization, err)
	}
	return payload, nil
}

func (e *Executor) logQuery(kind string, rows int, start time.Time) {
	e.log.WithPayload(map[string]interface{}{
		"kind":       kind,
		"rows":       rows,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("neo4j query finished")
}

func toRows(records []*neo4j.Record) ([]Row, error) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row, err := RowFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func encodeDirect(raw []map[string]any) (string, error) {
	for _, row := range raw {
		if !jsonSafe(row) {
			return "", fmt.Errorf("%w: rows contain graph elements", apperr.ErrSerialization)
		}
	}
	return encodeJSON(raw)
}

// encodeJSON keeps non-ASCII text and <, >, & unescaped so payloads stay
// readable for CJK entity names.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func jsonSafe(v any) bool {
	switch x := v.(type) {
	case nil, bool, string, int64, int, int32, int16, int8, float64, float32:
		return true
	case []any:
		for _, item := range x {
			if !jsonSafe(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range x {
			if !jsonSafe(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
