package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/rvsdg/ir"
	"github.com/wippyai/rvsdg/prune/internal/analysis"
)

// State is what a step sees while analyzing one IfElse occurrence.
// Graph and Uses are shared read-only snapshots; Plan belongs to the
// occurrence.
type State struct {
	Graph  *ir.Graph
	Uses   *ir.Uses
	Plan   *analysis.Plan
	Logger *zap.Logger
	// ParallelBranches lets the detect step scan both branches concurrently.
	ParallelBranches bool
}

// Step is one phase of the per-occurrence analysis.
//
// Steps read the graph and fill fields of the plan. A step that decides
// the occurrence cannot be transformed sets Plan.Skip; no later step runs.
// An error means the step found the plan in a state its predecessors
// should not have produced.
type Step interface {
	Run(s *State) error
}

// StepFunc is an adapter to use ordinary functions as Steps.
type StepFunc func(s *State) error

// Run implements Step.
func (f StepFunc) Run(s *State) error {
	return f(s)
}

type namedStep struct {
	step Step
	name string
}

// Registry is the ordered list of steps run for every occurrence.
type Registry struct {
	steps []namedStep
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a step. Registering an existing name replaces that
// step in place and keeps its position.
func (r *Registry) Register(name string, s Step) {
	for i := range r.steps {
		if r.steps[i].name == name {
			r.steps[i].step = s
			return
		}
	}
	r.steps = append(r.steps, namedStep{name: name, step: s})
}

// RegisterFunc registers a function as a step.
func (r *Registry) RegisterFunc(name string, fn func(*State) error) {
	r.Register(name, StepFunc(fn))
}

// Names returns the registered step names in execution order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// run executes the steps in order until one skips the occurrence or fails.
func (r *Registry) run(s *State) error {
	for _, ns := range r.steps {
		if err := ns.step.Run(s); err != nil {
			return fmt.Errorf("step %s: %w", ns.name, err)
		}
		if s.Plan.Skipped() {
			s.Logger.Debug("occurrence skipped",
				zap.Int("ifelse", int(s.Plan.IfElse)),
				zap.String("step", ns.name),
				zap.String("reason", string(s.Plan.Skip)))
			return nil
		}
	}
	return nil
}
