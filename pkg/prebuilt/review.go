package prebuilt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// Field names of the review-board graph state.
const (
	FieldTask     = "task"
	FieldPlan     = "plan"
	FieldAnswer   = "answer"
	FieldVotes    = "votes"
	FieldApproved = "approved"
	FieldRetries  = "retries"
	FieldHandoff  = "handoff"
)

// Verifier vote values.
const (
	VoteApproved = "APPROVED"
	VoteRejected = "REJECTED"
)

// Retry budget of the supervisor loop.
const maxReviewRetries = 3

// Handoff records which agent passed control to which, and why. It lives
// in state under a replace field so routing decisions stay inspectable.
type Handoff struct {
	FromAgent string `json:"from_agent" msgpack:"from_agent"`
	ToAgent   string `json:"to_agent" msgpack:"to_agent"`
	Reason    string `json:"reason" msgpack:"reason"`
}

// NewReviewGraph builds the supervisor graph: an executor sub-graph plans
// and solves the task, two verifiers vote in a fan-out step, and an
// aggregator either approves or hands control back to the executor.
func NewReviewGraph() (*graph.CompiledGraph, error) {
	executor, err := newExecutorSubgraph()
	if err != nil {
		return nil, err
	}

	s, err := schema.Define(
		schema.Field{Name: FieldTask},
		schema.Field{Name: FieldPlan},
		schema.Field{Name: FieldAnswer},
		schema.Field{Name: FieldVotes, Reducer: schema.ReducerAppend},
		schema.Field{Name: FieldApproved, Default: false},
		schema.Field{Name: FieldRetries, Default: 0},
		schema.Field{Name: FieldHandoff},
	)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(s)
	if err := b.AddSubgraph("executor", executor); err != nil {
		return nil, err
	}
	if err := b.AddNode("verifier_a", verifierA); err != nil {
		return nil, err
	}
	if err := b.AddNode("verifier_b", verifierB); err != nil {
		return nil, err
	}
	if err := b.AddNode("aggregator", aggregate); err != nil {
		return nil, err
	}

	// Fan-out: both verifiers run in the same step against the executor's
	// output, then converge on the aggregator.
	if err := b.AddEdge("executor", "verifier_a"); err != nil {
		return nil, err
	}
	if err := b.AddEdge("executor", "verifier_b"); err != nil {
		return nil, err
	}
	if err := b.AddEdge("verifier_a", "aggregator"); err != nil {
		return nil, err
	}
	if err := b.AddEdge("verifier_b", "aggregator"); err != nil {
		return nil, err
	}
	if err := b.AddConditionalEdge("aggregator", reviewRouter, map[string]string{
		"retry": "executor",
		"done":  graph.End,
	}); err != nil {
		return nil, err
	}
	b.SetEntry("executor")
	return b.Compile(graph.Config{Name: "review", StepLimit: 16})
}

// newExecutorSubgraph builds the nested planner/solver graph. Its schema
// shares only replace fields with the parent, so projecting its final
// snapshot back is a clean update.
func newExecutorSubgraph() (*graph.CompiledGraph, error) {
	s, err := schema.Define(
		schema.Field{Name: FieldTask},
		schema.Field{Name: FieldPlan},
		schema.Field{Name: FieldAnswer},
	)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(s)
	if err := b.AddNode("planner", planTask); err != nil {
		return nil, err
	}
	if err := b.AddNode("solver", solveTask); err != nil {
		return nil, err
	}
	if err := b.AddEdge("planner", "solver"); err != nil {
		return nil, err
	}
	if err := b.AddEdge("solver", graph.End); err != nil {
		return nil, err
	}
	b.SetEntry("planner")
	return b.Compile(graph.Config{Name: "review-executor", StepLimit: 4})
}

func planTask(_ context.Context, st schema.State) (schema.State, error) {
	return schema.State{
		FieldPlan: fmt.Sprintf("1. parse the task %q 2. compute the result", st.GetString(FieldTask)),
	}, nil
}

// solveTask handles additive arithmetic tasks like "12 + 18"; anything
// else is echoed back unanswered so the verifiers reject it.
func solveTask(_ context.Context, st schema.State) (schema.State, error) {
	task := st.GetString(FieldTask)
	parts := strings.Split(task, "+")
	sum := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return schema.State{FieldAnswer: ""}, nil
		}
		sum += n
	}
	if len(parts) < 2 {
		return schema.State{FieldAnswer: ""}, nil
	}
	return schema.State{FieldAnswer: strconv.Itoa(sum)}, nil
}

func verifierA(_ context.Context, st schema.State) (schema.State, error) {
	if st.GetString(FieldAnswer) != "" {
		return schema.State{FieldVotes: VoteApproved}, nil
	}
	return schema.State{FieldVotes: VoteRejected}, nil
}

func verifierB(_ context.Context, st schema.State) (schema.State, error) {
	if _, err := strconv.Atoi(st.GetString(FieldAnswer)); err == nil {
		return schema.State{FieldVotes: VoteApproved}, nil
	}
	return schema.State{FieldVotes: VoteRejected}, nil
}

// aggregate counts the two most recent votes. Votes accumulate under the
// append reducer, so only the tail of the list belongs to this round.
func aggregate(_ context.Context, st schema.State) (schema.State, error) {
	votes := st.GetSlice(FieldVotes)
	round := votes
	if len(round) > 2 {
		round = round[len(round)-2:]
	}
	approvals := 0
	for _, v := range round {
		if v == VoteApproved {
			approvals++
		}
	}

	if approvals == len(round) && len(round) > 0 {
		return schema.State{
			FieldApproved: true,
			FieldHandoff: Handoff{
				FromAgent: "aggregator",
				ToAgent:   "done",
				Reason:    "all verifiers approved",
			},
		}, nil
	}
	return schema.State{
		FieldApproved: false,
		FieldRetries:  st.GetInt(FieldRetries) + 1,
		FieldHandoff: Handoff{
			FromAgent: "aggregator",
			ToAgent:   "executor",
			Reason:    "verifier rejection, retrying",
		},
	}, nil
}

func reviewRouter(st schema.State) string {
	if st.GetBool(FieldApproved) || st.GetInt(FieldRetries) >= maxReviewRetries {
		return "done"
	}
	return "retry"
}
