package debtgraph

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type runCall struct {
	query  string
	params map[string]any
}

// fakeRunner answers count queries with the number of rows it holds and
// page queries with the rows windowed by the bound pageSkip/pageLimit, the
// way the server would.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall

	keys []string
	rows [][]any
	// rowsFor, when set, replaces keys/rows per call.
	rowsFor func(query string, params map[string]any) ([]string, [][]any)
	err     error
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, runCall{query: query, params: params})
	if f.err != nil {
		return nil, f.err
	}

	keys, rows := f.keys, f.rows
	if f.rowsFor != nil {
		keys, rows = f.rowsFor(query, params)
	}

	if strings.Contains(query, "RETURN count(*) AS total") {
		return &neo4j.EagerResult{
			Keys:    []string{"total"},
			Records: []*neo4j.Record{{Keys: []string{"total"}, Values: []any{int64(len(rows))}}},
		}, nil
	}

	skip := int(params[skipParam].(int64))
	if skip > len(rows) {
		skip = len(rows)
	}
	window := rows[skip:]
	if limit, ok := params[limitParam].(int64); ok && int(limit) < len(window) {
		window = window[:limit]
	}

	records := make([]*neo4j.Record, len(window))
	for i, values := range window {
		records[i] = &neo4j.Record{Keys: keys, Values: values}
	}
	return &neo4j.EagerResult{Keys: keys, Records: records}, nil
}

func (f *fakeRunner) pageCalls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runCall
	for _, c := range f.calls {
		if !strings.Contains(c.query, "count(*)") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRunner) lastPageCall() runCall {
	calls := f.pageCalls()
	return calls[len(calls)-1]
}

func node(id, label, name string, extra map[string]any) neo4j.Node {
	props := map[string]any{"name": name}
	for k, v := range extra {
		props[k] = v
	}
	return neo4j.Node{ElementId: id, Labels: []string{label}, Props: props}
}

func rel(id, typ string, from, to neo4j.Node, props map[string]any) neo4j.Relationship {
	if props == nil {
		props = map[string]any{}
	}
	return neo4j.Relationship{
		ElementId:      id,
		StartElementId: from.ElementId,
		EndElementId:   to.ElementId,
		Type:           typ,
		Props:          props,
	}
}
