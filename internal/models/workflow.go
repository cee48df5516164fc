package models

import (
	"sync"

	"github.com/core-coin/go-core/v2/common"
)

// WorkflowKind identifies the multi-step marketplace workflows.
type WorkflowKind int

const (
	PurchaseWorkflow WorkflowKind = iota
	ListForSaleWorkflow
	BuyFromMarketWorkflow
	CancelListingWorkflow
	CreateServiceWorkflow
	FaucetWorkflow
)

func (k WorkflowKind) String() string {
	switch k {
	case PurchaseWorkflow:
		return "purchase"
	case ListForSaleWorkflow:
		return "list_for_sale"
	case BuyFromMarketWorkflow:
		return "buy_from_market"
	case CancelListingWorkflow:
		return "cancel_listing"
	case CreateServiceWorkflow:
		return "create_service"
	case FaucetWorkflow:
		return "faucet"
	default:
		return "unknown"
	}
}

// WorkflowState is the per-instance state machine:
// Idle -> Submitting -> AwaitingConfirmation -> Settled, with Failed
// reachable from Submitting and AwaitingConfirmation.
type WorkflowState int

const (
	Idle WorkflowState = iota
	Submitting
	AwaitingConfirmation
	Settled
	Failed
)

func (s WorkflowState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Settled:
		return "settled"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s WorkflowState) Terminal() bool {
	return s == Settled || s == Failed
}

// Workflow is one instance of a marketplace workflow. The orchestrator owns
// the transitions; everyone else observes. Two calls against the same
// entity create two independent instances; the orchestrator never
// coalesces them, it only exposes a busy flag for presentation debouncing.
type Workflow struct {
	Kind   WorkflowKind
	Entity string

	mu        sync.Mutex
	state     WorkflowState
	history   []WorkflowState
	approveTx common.Hash
	actionTx  common.Hash
	err       error
}

func NewWorkflow(kind WorkflowKind, entity string) *Workflow {
	return &Workflow{Kind: kind, Entity: entity, state: Idle, history: []WorkflowState{Idle}}
}

func (w *Workflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// History returns every state the instance has been in, in order.
func (w *Workflow) History() []WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WorkflowState, len(w.history))
	copy(out, w.history)
	return out
}

// Transition moves the instance to next. Transitions out of a terminal
// state are ignored: a settled or failed workflow stays settled or failed.
func (w *Workflow) Transition(next WorkflowState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Terminal() {
		return
	}
	w.state = next
	w.history = append(w.history, next)
}

// Fail records err and moves the instance to Failed.
func (w *Workflow) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Terminal() {
		return
	}
	w.err = err
	w.state = Failed
	w.history = append(w.history, Failed)
}

func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Workflow) SetApproveTx(h common.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.approveTx = h
}

func (w *Workflow) SetActionTx(h common.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.actionTx = h
}

// ApproveTx is the hash of the allowance-granting step, zero when the
// workflow has no approve phase or has not reached it.
func (w *Workflow) ApproveTx() common.Hash {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.approveTx
}

func (w *Workflow) ActionTx() common.Hash {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actionTx
}
