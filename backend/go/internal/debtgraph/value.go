package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Relationship types and labels of the debt graph.
const (
	LabelParent     = "Level1"
	LabelChild      = "Level2"
	RelHasParent    = "HAS_PARENT"
	RelHasDebt      = "HAS_DEBT"
	nodeEnvelopeKey = "Node"
)

// Value is the closed set of shapes a query result can contain. The set is
// sealed: supporting a new node or relationship kind means adding a variant
// here and a method to Visitor, which every visitor must then implement.
type Value interface {
	Accept(v Visitor) any
	sealed()
}

// Visitor has one method per Value variant.
type Visitor interface {
	VisitScalar(Scalar) any
	VisitSequence(Sequence) any
	VisitMapping(Mapping) any
	VisitNode(Node) any
	VisitDebtEdge(DebtEdge) any
	VisitHierarchyEdge(HierarchyEdge) any
	VisitPath(Path) any
}

// Scalar holds a string, bool, integer, float or nil.
type Scalar struct{ V any }

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping is a string-keyed map of values.
type Mapping map[string]Value

// Node is a Level1 or Level2 entity.
type Node struct {
	ElementID string
	Labels    []string
	Props     Mapping
}

// DebtEdge is a HAS_DEBT relationship; the start node owes the end node.
type DebtEdge struct {
	ElementID string
	StartID   string
	EndID     string
	Props     Mapping
}

// HierarchyEdge is a HAS_PARENT relationship from a child to its parent.
type HierarchyEdge struct {
	ElementID string
	StartID   string
	EndID     string
	Props     Mapping
}

// Path is the alternating node/edge sequence of a traversal, in order.
type Path []Value

func (s Scalar) Accept(v Visitor) any        { return v.VisitScalar(s) }
func (s Sequence) Accept(v Visitor) any      { return v.VisitSequence(s) }
func (m Mapping) Accept(v Visitor) any       { return v.VisitMapping(m) }
func (n Node) Accept(v Visitor) any          { return v.VisitNode(n) }
func (e DebtEdge) Accept(v Visitor) any      { return v.VisitDebtEdge(e) }
func (e HierarchyEdge) Accept(v Visitor) any { return v.VisitHierarchyEdge(e) }
func (p Path) Accept(v Visitor) any          { return v.VisitPath(p) }

func (Scalar) sealed()        {}
func (Sequence) sealed()      {}
func (Mapping) sealed()       {}
func (Node) sealed()          {}
func (DebtEdge) sealed()      {}
func (HierarchyEdge) sealed() {}
func (Path) sealed()          {}

// Nodes returns the nodes of the path in traversal order.
func (p Path) Nodes() []Node {
	var nodes []Node
	for _, v := range p {
		if n, ok := v.(Node); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Row is one result record keyed by projection column.
type Row = Mapping

// FromDriver converts a value returned by the neo4j driver into a Value.
// Relationships other than HAS_DEBT and HAS_PARENT, and Go types outside the
// JSON scalar set, are rejected with apperr.ErrSerialization.
func FromDriver(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil, bool, string, int64, int, int32, int16, int8, float64, float32:
		return Scalar{V: x}, nil
	case []any:
		seq := make(Sequence, 0, len(x))
		for i, item := range x {
			v, err := FromDriver(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq = append(seq, v)
		}
		return seq, nil
	case map[string]any:
		return mappingFromDriver(x)
	case neo4j.Node:
		return nodeFromDriver(x)
	case neo4j.Relationship:
		return relationshipFromDriver(x)
	case neo4j.Path:
		return pathFromDriver(x)
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", apperr.ErrSerialization, raw)
	}
}

// RowFromRecord converts a driver record into a Row.
func RowFromRecord(rec *neo4j.Record) (Row, error) {
	return mappingFromDriver(rec.AsMap())
}

func mappingFromDriver(m map[string]any) (Mapping, error) {
	out := make(Mapping, len(m))
	for k, item := range m {
		v, err := FromDriver(item)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func nodeFromDriver(n neo4j.Node) (Node, error) {
	props, err := mappingFromDriver(n.Props)
	if err != nil {
		return Node{}, err
	}
	return Node{ElementID: n.ElementId, Labels: n.Labels, Props: props}, nil
}

func relationshipFromDriver(r neo4j.Relationship) (Value, error) {
	props, err := mappingFromDriver(r.Props)
	if err != nil {
		return nil, err
	}
	switch r.Type {
	case RelHasDebt:
		return DebtEdge{ElementID: r.ElementId, StartID: r.StartElementId, EndID: r.EndElementId, Props: props}, nil
	case RelHasParent:
		return HierarchyEdge{ElementID: r.ElementId, StartID: r.StartElementId, EndID: r.EndElementId, Props: props}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported relationship type %q", apperr.ErrSerialization, r.Type)
	}
}

func pathFromDriver(p neo4j.Path) (Path, error) {
	out := make(Path, 0, len(p.Nodes)+len(p.Relationships))
	for i, n := range p.Nodes {
		node, err := nodeFromDriver(n)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
		if i < len(p.Relationships) {
			rel, err := relationshipFromDriver(p.Relationships[i])
			if err != nil {
				return nil, err
			}
			out = append(out, rel)
		}
	}
	return out, nil
}
