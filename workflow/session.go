package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/flow"
	"github.com/reviewkata/reviewkata-go/flow/emit"
	"github.com/reviewkata/reviewkata-go/flow/store"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/prompt"
	"github.com/reviewkata/reviewkata-go/review"
)

// Validation failures returned to the caller without mutating state.
var (
	// ErrWrongStep means SubmitReview was called outside the review
	// suspension point.
	ErrWrongStep = errors.New("workflow: session is not awaiting a review")

	// ErrReviewTooShort means the submitted review is empty or below
	// the minimum length after trimming.
	ErrReviewTooShort = errors.New("workflow: review text too short")
)

// minReviewLen is the minimum trimmed length SubmitReview accepts.
const minReviewLen = 10

// SetupError means a session could not begin: catalog unreachable or a
// model role missing. It is surfaced from NewWorkflow before any node
// runs.
type SetupError struct {
	Reason string
	Cause  error
}

func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("workflow setup: %s: %v", e.Reason, e.Cause)
	}
	return "workflow setup: " + e.Reason
}

func (e *SetupError) Unwrap() error { return e.Cause }

// Limits bounds the two retry loops. Zero values take the defaults.
type Limits struct {
	MaxEvaluationAttempts int `json:"max_evaluation_attempts" yaml:"max_evaluation_attempts"`
	MaxIterations         int `json:"max_iterations" yaml:"max_iterations"`
}

const (
	DefaultMaxEvaluationAttempts = 3
	DefaultMaxIterations         = 3
)

// Params describes one new training session.
type Params struct {
	Selection  catalog.Selection
	Length     prompt.Length
	Difficulty catalog.Difficulty
	Locale     catalog.Locale
	Phase      Phase
	Domain     string
	Limits     Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches Prometheus metrics to step execution and model
// invocations.
func WithMetrics(m *flow.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxSteps overrides the runaway-loop bound on a single session.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// Engine is the session-level API over the graph runtime: it owns the
// graph wiring and exposes NewWorkflow, Advance, SubmitReview, Cancel
// and Status. One Engine serves any number of concurrent sessions;
// each session's state is the caller's to hold and persist.
type Engine struct {
	catalog catalog.Store
	models  model.Set
	flow    *flow.Engine[State]
	store   store.Store[State]

	metrics  *flow.Metrics
	maxSteps int
}

// NewEngine wires the session graph over the given catalog, model set
// and state store. The model set must carry all three roles.
func NewEngine(cat catalog.Store, models model.Set, st store.Store[State], emitter emit.Emitter, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, &SetupError{Reason: "catalog store is required"}
	}
	if err := models.Validate(); err != nil {
		return nil, &SetupError{Reason: "incomplete model set", Cause: err}
	}
	if st == nil {
		return nil, &SetupError{Reason: "state store is required"}
	}

	e := &Engine{
		catalog:  cat,
		models:   models,
		store:    st,
		maxSteps: 50,
	}
	for _, opt := range opts {
		opt(e)
	}

	n := &nodes{
		generator: review.NewGenerator(cat, instrument(models.Generative, model.RoleGenerative, e.metrics)),
		evaluator: review.NewEvaluator(instrument(models.Review, model.RoleReview, e.metrics)),
		grader:    review.NewGrader(instrument(models.Review, model.RoleReview, e.metrics)),
		reporter:  review.NewReporter(instrument(models.Summary, model.RoleSummary, e.metrics)),
	}

	reducer := func(prev, delta State) State { return delta }
	fe := flow.New[State](reducer, st, emitter, flow.Options{
		MaxSteps: e.maxSteps,
		Metrics:  e.metrics,
	})

	for id, fn := range map[string]flow.NodeFunc[State]{
		NodeGenerateCode:   n.generateCode,
		NodeEvaluateCode:   n.evaluateCode,
		NodeRegenerateCode: n.regenerateCode,
		NodeReviewCode:     n.reviewCode,
		NodeAnalyzeReview:  n.analyzeReview,
		NodeReport:         n.generateReport,
		NodeSummary:        n.generateSummary,
	} {
		if err := fe.Add(id, fn); err != nil {
			return nil, &SetupError{Reason: "graph wiring", Cause: err}
		}
	}

	// Branch edges; registration order is evaluation order.
	branches := []struct {
		from, to string
		pick     func(State) string
	}{
		{NodeEvaluateCode, NodeReviewCode, regenerateOrReview},
		{NodeEvaluateCode, NodeRegenerateCode, regenerateOrReview},
		{NodeAnalyzeReview, NodeReport, continueOrReport},
		{NodeAnalyzeReview, NodeReviewCode, continueOrReport},
	}
	for _, b := range branches {
		to := b.to
		pick := b.pick
		if err := fe.Connect(b.from, b.to, func(s State) bool { return pick(s) == to }); err != nil {
			return nil, &SetupError{Reason: "graph wiring", Cause: err}
		}
	}

	if err := fe.StartAt(NodeGenerateCode); err != nil {
		return nil, &SetupError{Reason: "graph wiring", Cause: err}
	}

	e.flow = fe
	return e, nil
}

// instrument wraps a client so every invocation is counted per role.
func instrument(c model.Client, role model.Role, m *flow.Metrics) model.Client {
	if m == nil {
		return c
	}
	return model.Func(func(ctx context.Context, p string) (string, error) {
		out, err := c.Invoke(ctx, p)
		m.ObserveModelCall(string(role), err)
		return out, err
	})
}

// NewWorkflow constructs the initial session state. It probes the
// catalog so an unreachable store fails here, before anything runs,
// and it never invokes a model.
func (e *Engine) NewWorkflow(ctx context.Context, p Params) (State, error) {
	if err := p.Selection.Validate(); err != nil {
		return State{}, &SetupError{Reason: "invalid selection", Cause: err}
	}
	if _, err := e.catalog.ListCategories(ctx, p.Locale); err != nil {
		return State{}, &SetupError{Reason: "catalog unavailable", Cause: err}
	}

	phase := p.Phase
	if phase == "" {
		phase = PhaseFull
	}
	locale := p.Locale
	if locale == "" {
		locale = catalog.LocaleEN
	}
	limits := p.Limits
	if limits.MaxEvaluationAttempts == 0 {
		limits.MaxEvaluationAttempts = DefaultMaxEvaluationAttempts
	}
	if limits.MaxIterations == 0 {
		limits.MaxIterations = DefaultMaxIterations
	}

	return State{
		WorkflowID:            uuid.NewString(),
		Phase:                 phase,
		CurrentStep:           StepGenerate,
		Locale:                locale,
		Selection:             p.Selection,
		Length:                p.Length,
		Difficulty:            p.Difficulty,
		Domain:                p.Domain,
		MaxEvaluationAttempts: limits.MaxEvaluationAttempts,
		MaxIterations:         limits.MaxIterations,
		CurrentIteration:      1,
	}, nil
}

// stepNode maps a serialized step back to the node that handles it.
var stepNode = map[Step]string{
	StepGenerate:   NodeGenerateCode,
	StepEvaluate:   NodeEvaluateCode,
	StepRegenerate: NodeRegenerateCode,
	StepReview:     NodeReviewCode,
	StepAnalyze:    NodeAnalyzeReview,
	StepReport:     NodeReport,
}

// Advance executes nodes until the session suspends at review_code or
// terminates. Terminal states and the empty-pending review state are
// fixed points: Advance returns them unchanged.
func (e *Engine) Advance(ctx context.Context, s State) (State, error) {
	if s.Terminal() || s.Suspended() {
		return s, nil
	}

	startNode, ok := stepNode[s.CurrentStep]
	if !ok {
		return s, &flow.EngineError{
			Message: "unknown step: " + string(s.CurrentStep),
			Code:    "UNKNOWN_STEP",
		}
	}

	next, _, err := e.flow.RunFrom(ctx, s.WorkflowID, startNode, s)
	if err != nil {
		return s, err
	}
	return next, nil
}

// Resume rehydrates the latest persisted state of a session, e.g.
// after a process restart while a learner was writing their review.
// The returned state is ready for Advance or SubmitReview.
func (e *Engine) Resume(ctx context.Context, workflowID string) (State, error) {
	s, _, err := e.store.LoadLatest(ctx, workflowID)
	if err != nil {
		return State{}, fmt.Errorf("resume workflow %s: %w", workflowID, err)
	}
	return s, nil
}

// SubmitReview validates and attaches a learner submission, then
// resumes the session. Validation failures leave the state untouched.
func (e *Engine) SubmitReview(ctx context.Context, s State, reviewText string) (State, error) {
	if s.Terminal() || s.CurrentStep != StepReview {
		return s, ErrWrongStep
	}
	trimmed := strings.TrimSpace(reviewText)
	if len(trimmed) < minReviewLen {
		return s, ErrReviewTooShort
	}

	s.PendingReview = trimmed
	return e.Advance(ctx, s)
}

// Cancel moves the session to its terminal cancelled form. Idempotent;
// an already-terminal session is returned unchanged.
func (e *Engine) Cancel(s State) State {
	if s.Terminal() {
		return s
	}
	return s.fail(ErrCancelled)
}

// Status projects the state into the caller-facing view.
func (e *Engine) Status(s State) StatusView {
	return StatusView{
		Step:               s.CurrentStep,
		Phase:              s.Phase,
		HasArtifact:        s.Artifact != nil,
		EvaluationAttempts: s.EvaluationAttempts,
		CurrentIteration:   s.CurrentIteration,
		ReviewSufficient:   s.ReviewSufficient,
		HasError:           s.Error != "",
	}
}
