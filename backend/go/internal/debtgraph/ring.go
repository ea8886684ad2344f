package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"DebtGraph/backend/go/pkg/util"
	"context"
	"fmt"
)

// MinJump is the shortest ring accepted. A one-edge ring is a self-loop and
// is rejected.
const MinJump = 2

// DefaultMaxJump bounds ring length when no limit is configured.
const DefaultMaxJump = 8

// simpleCycle accepts a closed path only if it visits exactly $jump distinct
// nodes, which rules out shorter rings walked several times.
const simpleCycle = "size(reduce(seen = [], n IN nodes(path) | CASE WHEN n IN seen THEN seen ELSE seen + [n] END)) = $jump"

// Ring query bodies. %d is the ring length; variable-length bounds cannot be
// bound as parameters, so it is formatted in after validation.
const (
	childRingBody = `
MATCH path = (child:Level2)-[:HAS_DEBT*%d]->(child)
WHERE child.name = $child AND ` + simpleCycle

	childWithChildRingBody = `
MATCH path = (child:Level2)-[:HAS_DEBT*%d]->(child)
WHERE child.name = $child AND ` + simpleCycle + `
  AND any(n IN nodes(path) WHERE n.name = $via)`

	parentRingBody = `
MATCH (child:Level2)-[edge:HAS_PARENT]->(parent:Level1)
WHERE parent.name = $parent
WITH child, edge, parent
MATCH path = (child)-[:HAS_DEBT*%d]->(child)
WHERE ` + simpleCycle

	parentWithParentRingBody = `
MATCH (child1:Level2)-[:HAS_PARENT]->(parent1:Level1)
WHERE parent1.name = $parent1
MATCH (child2:Level2)-[:HAS_PARENT]->(parent2:Level1)
WHERE parent2.name = $parent2
WITH child1, child2, parent1, parent2
MATCH path = (child1)-[:HAS_DEBT*%d]->(child1)
WHERE ` + simpleCycle + `
  AND any(n IN nodes(path) WHERE n = child2)`
)

// ringKey identifies a ring template after the length is formatted in.
type ringKey struct {
	body string
	jump int
}

// RingFinder detects simple debt cycles of an exact length.
type RingFinder struct {
	exec      *Executor
	maxJump   int
	templates *util.LRU[ringKey, Template]
}

// NewRingFinder creates a RingFinder accepting ring lengths in
// [MinJump, maxJump]. A maxJump below MinJump selects DefaultMaxJump.
func NewRingFinder(exec *Executor, maxJump int) *RingFinder {
	if maxJump < MinJump {
		maxJump = DefaultMaxJump
	}
	// 4 种环查询 × 每种允许的长度
	templates, err := util.NewLRU[ringKey, Template](4 * (maxJump - MinJump + 1))
	if err != nil {
		panic(err)
	}
	return &RingFinder{exec: exec, maxJump: maxJump, templates: templates}
}

// ChildRing returns the rings of jump edges that start and end at child.
func (f *RingFinder) ChildRing(ctx context.Context, child string, jump int, page Page) (*Result, error) {
	if err := requireName("child", child); err != nil {
		return nil, err
	}
	return f.run(ctx, childRingBody, "path", jump, map[string]any{"child": child}, page)
}

// ParentRing returns the rings of jump edges through each child of parent,
// together with the child's HAS_PARENT edge.
func (f *RingFinder) ParentRing(ctx context.Context, parent string, jump int, page Page) (*Result, error) {
	if err := requireName("parent", parent); err != nil {
		return nil, err
	}
	return f.run(ctx, parentRingBody, "path, child, edge, parent", jump, map[string]any{"parent": parent}, page)
}

// ChildWithChildRing returns the rings of jump edges anchored at child that
// also pass through via.
func (f *RingFinder) ChildWithChildRing(ctx context.Context, child, via string, jump int, page Page) (*Result, error) {
	if err := requireName("child", child); err != nil {
		return nil, err
	}
	if err := requireName("via", via); err != nil {
		return nil, err
	}
	if child == via {
		return nil, fmt.Errorf("%w: child and via must differ", apperr.ErrInvalidParameter)
	}
	return f.run(ctx, childWithChildRingBody, "path", jump, map[string]any{"child": child, "via": via}, page)
}

// ParentWithParentRing returns the rings of jump edges that start at a child
// of parent1 and pass through a child of parent2.
func (f *RingFinder) ParentWithParentRing(ctx context.Context, parent1, parent2 string, jump int, page Page) (*Result, error) {
	if err := requireName("parent1", parent1); err != nil {
		return nil, err
	}
	if err := requireName("parent2", parent2); err != nil {
		return nil, err
	}
	if parent1 == parent2 {
		return nil, fmt.Errorf("%w: parent groups must differ", apperr.ErrInvalidParameter)
	}
	params := map[string]any{"parent1": parent1, "parent2": parent2}
	return f.run(ctx, parentWithParentRingBody, "path, child1, child2, parent1, parent2", jump, params, page)
}

func (f *RingFinder) run(ctx context.Context, body, projection string, jump int, params map[string]any, page Page) (*Result, error) {
	t, err := f.template(body, projection, jump)
	if err != nil {
		return nil, err
	}
	params["jump"] = int64(jump)
	return f.exec.Select(ctx, t, params, page)
}

func (f *RingFinder) template(body, projection string, jump int) (Template, error) {
	if jump < MinJump || jump > f.maxJump {
		return Template{}, fmt.Errorf("%w: jump must be in [%d, %d], got %d",
			apperr.ErrInvalidParameter, MinJump, f.maxJump, jump)
	}
	return f.templates.GetOrCreate(ringKey{body: body, jump: jump}, func() (Template, error) {
		return NewTemplate(fmt.Sprintf(body, jump), projection)
	})
}
