/*
Package depgraph tracks the readiness of operations over their
"must-finish-before" dependency relation.

The graph is acyclic by construction: edges are validated (cycle check,
no-started-operands check) when they are wired onto operations via
operation.AddDependency, before submission. This package implements the
scheduler-side bookkeeping: which operations wait on which dependencies,
and which become ready when a dependency finishes.

Readiness is recomputed incrementally. Register computes an operation's
initial readiness once; after that, each Finished call re-checks only the
operations actually waiting on the finished dependency:

	g := depgraph.New()
	ready, watch := g.Register(op)
	for _, dep := range watch {
		dep := dep
		dep.OnFinished(func(*operation.Operation) {
			promote(g.Finished(dep))
		})
	}
*/
package depgraph
