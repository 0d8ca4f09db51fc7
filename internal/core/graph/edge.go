package graph

// EdgeKind discriminates the edge tagged union.
type EdgeKind int

const (
	// EdgeKindPlain is an unconditional successor list. Multiple targets
	// declare a fan-out: all of them are scheduled after the node runs.
	EdgeKindPlain EdgeKind = iota
	// EdgeKindConditional routes through a RouterFunc over labeled targets.
	EdgeKindConditional
)

// EdgeSet is the single outgoing edge set of a node, either a plain target
// list or a router with a label-to-node mapping.
type EdgeSet struct {
	Kind    EdgeKind
	Targets []string // plain fan-out targets, in declaration order
	Router  RouterFunc
	Labels  map[string]string // label -> node name or End
}
