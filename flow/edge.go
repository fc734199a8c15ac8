// Package flow provides the sequential graph runtime underneath the
// review trainer: nodes, conditional edges, per-step persistence and a
// suspension-aware execution loop.
package flow

// Edge is a possible transition between two nodes.
//
// Edges are evaluated only when a node returns no explicit route; the
// first edge whose predicate matches (nil predicate always matches)
// wins. Explicit NodeResult routing takes precedence over edges.
type Edge[S any] struct {
	From string
	To   string

	// When guards the edge. Nil means unconditional.
	When Predicate[S]
}

// Predicate evaluates state to decide whether an edge is taken. It must
// be pure: deterministic and free of side effects, since the engine may
// evaluate several predicates to pick a route.
type Predicate[S any] func(state S) bool
