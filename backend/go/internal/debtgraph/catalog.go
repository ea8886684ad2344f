package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"context"
	"fmt"
)

// detailFilter restricts a debt traversal to edges whose category is listed.
const detailFilter = "edge[$detailKey] IN $details"

// Hierarchy lookups. A child with several HAS_PARENT edges yields one row per edge.
var (
	parentsOfTemplate = MustTemplate(`
MATCH (child:Level2)-[edge:HAS_PARENT]->(parent:Level1)
WHERE child.name IN $children`, "child, edge, parent")

	childrenOfTemplate = MustTemplate(`
MATCH (child:Level2)-[edge:HAS_PARENT]->(parent:Level1)
WHERE parent.name IN $parents`, "child, edge, parent")
)

// Directional traversals. "debt" follows HAS_DEBT out of the anchor,
// "receivables" follows it into the anchor.
var (
	childDebtTemplate = MustTemplate(`
MATCH (child:Level2)-[edge:HAS_DEBT]->(other:Level2)
WHERE child.name = $child`, "child, edge, other")

	childReceivablesTemplate = MustTemplate(`
MATCH (other:Level2)-[edge:HAS_DEBT]->(child:Level2)
WHERE child.name = $child`, "other, edge, child")

	parentDebtTemplate = MustTemplate(`
MATCH (child:Level2)-[:HAS_PARENT]->(parent:Level1)
WHERE parent.name = $parent
WITH DISTINCT child
MATCH (child)-[edge:HAS_DEBT]->(other:Level2)`, "child, edge, other")

	parentReceivablesTemplate = MustTemplate(`
MATCH (child:Level2)-[:HAS_PARENT]->(parent:Level1)
WHERE parent.name = $parent
WITH DISTINCT child
MATCH (other:Level2)-[edge:HAS_DEBT]->(child)`, "other, edge, child")
)

// Pairwise lookups.
var (
	childToChildDebtTemplate = MustTemplate(`
MATCH (debtor:Level2)-[edge:HAS_DEBT]->(creditor:Level2)
WHERE debtor.name = $debtor AND creditor.name = $creditor`, "debtor, edge, creditor")

	parentToParentDebtTemplate = MustTemplate(`
MATCH (debtorParent:Level1)<-[:HAS_PARENT]-(debtor:Level2)-[edge:HAS_DEBT]->(creditor:Level2)-[:HAS_PARENT]->(creditorParent:Level1)
WHERE debtorParent.name = $debtor AND creditorParent.name = $creditor`, "debtorParent, debtor, edge, creditorParent, creditor")
)

// Category-filtered variants of the traversals above.
var (
	childDebtByDetailsTemplate          = mustFilter(childDebtTemplate)
	childReceivablesByDetailsTemplate   = mustFilter(childReceivablesTemplate)
	parentDebtByDetailsTemplate         = mustFilter(parentDebtTemplate)
	parentReceivablesByDetailsTemplate  = mustFilter(parentReceivablesTemplate)
	childToChildDebtByDetailsTemplate   = mustFilter(childToChildDebtTemplate)
	parentToParentDebtByDetailsTemplate = mustFilter(parentToParentDebtTemplate)
)

func mustFilter(t Template) Template {
	filtered, err := t.And(detailFilter)
	if err != nil {
		panic(err)
	}
	return filtered
}

// Catalog exposes the named traversals of the debt graph. Every method
// returns the total row count, computed independently of page, and the JSON
// payload of the requested page.
type Catalog struct {
	exec      *Executor
	detailKey string
}

// NewCatalog creates a Catalog. detailKey is the HAS_DEBT property holding
// the debt category.
func NewCatalog(exec *Executor, detailKey string) *Catalog {
	return &Catalog{exec: exec, detailKey: detailKey}
}

// ParentsOf returns the HAS_PARENT edges of the named children.
func (c *Catalog) ParentsOf(ctx context.Context, children []string, page Page) (*Result, error) {
	if err := requireNames("children", children); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, parentsOfTemplate, map[string]any{"children": children}, page)
}

// ChildrenOf returns the children of the named parents with their HAS_PARENT edges.
func (c *Catalog) ChildrenOf(ctx context.Context, parents []string, page Page) (*Result, error) {
	if err := requireNames("parents", parents); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, childrenOfTemplate, map[string]any{"parents": parents}, page)
}

// ChildDebt returns what the child owes.
func (c *Catalog) ChildDebt(ctx context.Context, child string, page Page) (*Result, error) {
	return c.anchored(ctx, childDebtTemplate, "child", child, page)
}

// ChildReceivables returns what is owed to the child.
func (c *Catalog) ChildReceivables(ctx context.Context, child string, page Page) (*Result, error) {
	return c.anchored(ctx, childReceivablesTemplate, "child", child, page)
}

// ParentDebt returns what the children of parent owe.
func (c *Catalog) ParentDebt(ctx context.Context, parent string, page Page) (*Result, error) {
	return c.anchored(ctx, parentDebtTemplate, "parent", parent, page)
}

// ParentReceivables returns what is owed to the children of parent.
func (c *Catalog) ParentReceivables(ctx context.Context, parent string, page Page) (*Result, error) {
	return c.anchored(ctx, parentReceivablesTemplate, "parent", parent, page)
}

// ChildDebtByDetails is ChildDebt restricted to the given categories.
func (c *Catalog) ChildDebtByDetails(ctx context.Context, child string, details []string, page Page) (*Result, error) {
	return c.anchoredByDetails(ctx, childDebtByDetailsTemplate, "child", child, details, page)
}

// ChildReceivablesByDetails is ChildReceivables restricted to the given categories.
func (c *Catalog) ChildReceivablesByDetails(ctx context.Context, child string, details []string, page Page) (*Result, error) {
	return c.anchoredByDetails(ctx, childReceivablesByDetailsTemplate, "child", child, details, page)
}

// ParentDebtByDetails is ParentDebt restricted to the given categories.
func (c *Catalog) ParentDebtByDetails(ctx context.Context, parent string, details []string, page Page) (*Result, error) {
	return c.anchoredByDetails(ctx, parentDebtByDetailsTemplate, "parent", parent, details, page)
}

// ParentReceivablesByDetails is ParentReceivables restricted to the given categories.
func (c *Catalog) ParentReceivablesByDetails(ctx context.Context, parent string, details []string, page Page) (*Result, error) {
	return c.anchoredByDetails(ctx, parentReceivablesByDetailsTemplate, "parent", parent, details, page)
}

// ChildToChildDebt returns the HAS_DEBT edges from debtor to creditor.
func (c *Catalog) ChildToChildDebt(ctx context.Context, debtor, creditor string, page Page) (*Result, error) {
	params, err := pairParams(debtor, creditor)
	if err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, childToChildDebtTemplate, params, page)
}

// ChildToChildDebtByDetails is ChildToChildDebt restricted to the given categories.
func (c *Catalog) ChildToChildDebtByDetails(ctx context.Context, debtor, creditor string, details []string, page Page) (*Result, error) {
	params, err := pairParams(debtor, creditor)
	if err != nil {
		return nil, err
	}
	if err := c.bindDetails(params, details); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, childToChildDebtByDetailsTemplate, params, page)
}

// ParentToParentDebt returns the HAS_DEBT edges from any child of the debtor
// parent to any child of the creditor parent, with both parents.
func (c *Catalog) ParentToParentDebt(ctx context.Context, debtor, creditor string, page Page) (*Result, error) {
	params, err := pairParams(debtor, creditor)
	if err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, parentToParentDebtTemplate, params, page)
}

// ParentToParentDebtByDetails is ParentToParentDebt restricted to the given categories.
func (c *Catalog) ParentToParentDebtByDetails(ctx context.Context, debtor, creditor string, details []string, page Page) (*Result, error) {
	params, err := pairParams(debtor, creditor)
	if err != nil {
		return nil, err
	}
	if err := c.bindDetails(params, details); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, parentToParentDebtByDetailsTemplate, params, page)
}

func (c *Catalog) anchored(ctx context.Context, t Template, key, name string, page Page) (*Result, error) {
	if err := requireName(key, name); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, t, map[string]any{key: name}, page)
}

func (c *Catalog) anchoredByDetails(ctx context.Context, t Template, key, name string, details []string, page Page) (*Result, error) {
	if err := requireName(key, name); err != nil {
		return nil, err
	}
	params := map[string]any{key: name}
	if err := c.bindDetails(params, details); err != nil {
		return nil, err
	}
	return c.exec.Select(ctx, t, params, page)
}

func (c *Catalog) bindDetails(params map[string]any, details []string) error {
	if err := requireNames("details", details); err != nil {
		return err
	}
	params["details"] = details
	params["detailKey"] = c.detailKey
	return nil
}

func pairParams(debtor, creditor string) (map[string]any, error) {
	if err := requireName("debtor", debtor); err != nil {
		return nil, err
	}
	if err := requireName("creditor", creditor); err != nil {
		return nil, err
	}
	return map[string]any{"debtor": debtor, "creditor": creditor}, nil
}

func requireName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s must not be empty", apperr.ErrInvalidParameter, field)
	}
	return nil
}

func requireNames(field string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: %s must not be empty", apperr.ErrInvalidParameter, field)
	}
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: %s contains an empty name", apperr.ErrInvalidParameter, field)
		}
	}
	return nil
}
