package debtgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize converts a Value into plain maps, slices and scalars that encode
// to the payload shape: {"Node": {...}}, {"HAS_DEBT": {...}},
// {"HAS_PARENT": {...}}, a path as the list of its elements, and everything
// else structurally.
func Normalize(v Value) any {
	return v.Accept(jsonVisitor{})
}

// NormalizeRows normalizes every row of a result set.
func NormalizeRows(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = jsonVisitor{}.VisitMapping(row).(map[string]any)
	}
	return out
}

type jsonVisitor struct{}

func (jsonVisitor) VisitScalar(s Scalar) any { return s.V }

func (j jsonVisitor) VisitSequence(s Sequence) any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v.Accept(j)
	}
	return out
}

func (j jsonVisitor) VisitMapping(m Mapping) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Accept(j)
	}
	return out
}

func (j jsonVisitor) VisitNode(n Node) any {
	return map[string]any{nodeEnvelopeKey: j.VisitMapping(n.Props)}
}

func (j jsonVisitor) VisitDebtEdge(e DebtEdge) any {
	return map[string]any{RelHasDebt: j.VisitMapping(e.Props)}
}

func (j jsonVisitor) VisitHierarchyEdge(e HierarchyEdge) any {
	return map[string]any{RelHasParent: j.VisitMapping(e.Props)}
}

func (j jsonVisitor) VisitPath(p Path) any {
	return j.VisitSequence(Sequence(p))
}

// Stats counts the graph elements contained in a result set.
type Stats struct {
	Nodes          int `json:"nodes"`
	DebtEdges      int `json:"debt_edges"`
	HierarchyEdges int `json:"hierarchy_edges"`
	Paths          int `json:"paths"`
}

// Summarize walks the rows and counts nodes, edges and paths. An element
// returned in several columns or rows is counted every time it appears.
func Summarize(rows []Row) Stats {
	sv := &statsVisitor{}
	for _, row := range rows {
		sv.VisitMapping(row)
	}
	return sv.stats
}

type statsVisitor struct{ stats Stats }

func (s *statsVisitor) VisitScalar(Scalar) any { return nil }

func (s *statsVisitor) VisitSequence(seq Sequence) any {
	for _, v := range seq {
		v.Accept(s)
	}
	return nil
}

func (s *statsVisitor) VisitMapping(m Mapping) any {
	for _, v := range m {
		v.Accept(s)
	}
	return nil
}

func (s *statsVisitor) VisitNode(Node) any { s.stats.Nodes++; return nil }

func (s *statsVisitor) VisitDebtEdge(DebtEdge) any { s.stats.DebtEdges++; return nil }

func (s *statsVisitor) VisitHierarchyEdge(HierarchyEdge) any { s.stats.HierarchyEdges++; return nil }

func (s *statsVisitor) VisitPath(p Path) any {
	s.stats.Paths++
	return s.VisitSequence(Sequence(p))
}

// Label renders a value as short human-readable text: nodes by name, edges
// by type and properties, paths as the chain of node names.
func Label(v Value) string {
	return v.Accept(labelVisitor{}).(string)
}

type labelVisitor struct{}

func (labelVisitor) VisitScalar(s Scalar) any {
	if s.V == nil {
		return ""
	}
	return fmt.Sprint(s.V)
}

func (l labelVisitor) VisitSequence(seq Sequence) any {
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = v.Accept(l).(string)
	}
	return strings.Join(parts, ", ")
}

func (l labelVisitor) VisitMapping(m Mapping) any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k].Accept(l).(string)
	}
	return strings.Join(parts, ", ")
}

func (l labelVisitor) VisitNode(n Node) any {
	if name, ok := n.Props["name"]; ok {
		return name.Accept(l)
	}
	return n.ElementID
}

func (l labelVisitor) VisitDebtEdge(e DebtEdge) any {
	return RelHasDebt + "(" + l.VisitMapping(e.Props).(string) + ")"
}

func (l labelVisitor) VisitHierarchyEdge(e HierarchyEdge) any {
	return RelHasParent + "(" + l.VisitMapping(e.Props).(string) + ")"
}

func (l labelVisitor) VisitPath(p Path) any {
	nodes := p.Nodes()
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = l.VisitNode(n).(string)
	}
	return strings.Join(names, " -> ")
}
