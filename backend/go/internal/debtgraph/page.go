package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"fmt"
)

// Unlimited is the conventional limit for "return every row".
const Unlimited = -1

// Reserved parameter names used by the executor.
const (
	skipParam   = "pageSkip"
	limitParam  = "pageLimit"
	countColumn = "total"
)

// Page selects a window of a result set. Limit <= 0 means no limit.
type Page struct {
	Skip  int
	Limit int
}

// All is the page that returns the whole result set.
var All = Page{Skip: 0, Limit: Unlimited}

// Limited reports whether the page caps the number of rows.
func (p Page) Limited() bool { return p.Limit > 0 }

// Validate rejects negative skips. Any non-positive limit is accepted and
// treated as unlimited.
func (p Page) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0, got %d", apperr.ErrInvalidParameter, p.Skip)
	}
	return nil
}

// bind returns a copy of params with the pagination values added as bound
// parameters. Caller parameters may not use the reserved names.
func (p Page) bind(params map[string]any) (map[string]any, error) {
	out, err := copyParams(params)
	if err != nil {
		return nil, err
	}
	out[skipParam] = int64(p.Skip)
	if p.Limited() {
		out[limitParam] = int64(p.Limit)
	}
	return out, nil
}

func copyParams(params map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params)+2)
	for k, v := range params {
		if k == skipParam || k == limitParam {
			return nil, fmt.Errorf("%w: parameter name %q is reserved", apperr.ErrInvalidParameter, k)
		}
		out[k] = v
	}
	return out, nil
}
