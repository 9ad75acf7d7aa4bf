// Package controller coordinates the transaction screen: it owns the
// filter criteria, the fetched list, the derived summary, and the
// edit and delete slots. Every mutation is followed by a refetch so
// the displayed data always comes from the store, never from local
// patching.
package controller

import (
	"context"
	"errors"
	"sync"

	"fincas/internal/client"
	"fincas/internal/core"
	"fincas/internal/log"
)

// State is the controller's coarse lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"    // a list fetch is in flight
	StateSubmitting State = "submitting" // a mutation is in flight
	StateErrored    State = "errored"    // last operation failed, snapshot kept
)

// Store is the slice of the store client the controller needs.
type Store interface {
	ListTransactions(ctx context.Context, criteria core.FilterCriteria) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, draft client.TransactionDraft) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch client.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

var _ Store = (*client.Client)(nil)

// RefreshPolicy decides what to load after the criteria change or a
// mutation lands. The default refetches everything under the current
// criteria; a smarter policy could patch locally and reconcile later.
type RefreshPolicy interface {
	Refresh(ctx context.Context, store Store, criteria core.FilterCriteria) ([]core.Transaction, error)
}

// FullRefetch always asks the store for the complete filtered list.
type FullRefetch struct{}

func (FullRefetch) Refresh(ctx context.Context, store Store, criteria core.FilterCriteria) ([]core.Transaction, error) {
	return store.ListTransactions(ctx, criteria)
}

// Notifier receives user-facing failure messages.
type Notifier func(message string)

// Snapshot is one consistent view of the screen's data. Summary is
// always derived from Transactions, never fetched separately.
type Snapshot struct {
	Transactions []core.Transaction
	Summary      core.FinancialSummary
	Criteria     core.FilterCriteria
	State        State
}

type Controller struct {
	mu     sync.Mutex
	store  Store
	policy RefreshPolicy
	notify Notifier
	logger *log.Logger

	criteria core.FilterCriteria
	txs      []core.Transaction
	state    State

	// fetchSeq numbers list fetches; only the response carrying the
	// latest number may replace the snapshot. Stale responses are
	// dropped, so out-of-order completion cannot show old data.
	fetchSeq uint64

	editing       *core.Transaction
	pendingDelete string
}

// Option configures a Controller.
type Option func(*Controller)

func WithRefreshPolicy(p RefreshPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l.WithComponent("controller") }
}

func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		policy:   FullRefetch{},
		notify:   func(string) {},
		criteria: core.NewFilterCriteria(),
		txs:      []core.Transaction{},
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(log.DefaultConfig()).WithComponent("controller")
	}
	return c
}

// Snapshot returns the current view. The transaction slice is copied
// so callers can hold it across later refreshes.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	txs := make([]core.Transaction, len(c.txs))
	copy(txs, c.txs)
	return Snapshot{
		Transactions: txs,
		Summary:      core.Summarize(c.txs),
		Criteria:     c.criteria,
		State:        c.state,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Criteria() core.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// Load performs the initial fetch under the current criteria.
func (c *Controller) Load(ctx context.Context) error {
	return c.refresh(ctx)
}

// SetFilter merges the patch into the criteria and triggers exactly
// one refetch for the whole change, however many axes it touches.
func (c *Controller) SetFilter(ctx context.Context, patch core.FilterPatch) error {
	c.mu.Lock()
	c.criteria = c.criteria.Merge(patch)
	c.mu.Unlock()
	return c.refresh(ctx)
}

// ResetFilter returns every axis to its sentinel and refetches.
func (c *Controller) ResetFilter(ctx context.Context) error {
	c.mu.Lock()
	c.criteria = core.NewFilterCriteria()
	c.mu.Unlock()
	return c.refresh(ctx)
}

// Acknowledge clears the errored state after the user has seen the
// notification. The kept snapshot stays in place.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateErrored {
		c.state = StateIdle
	}
}

// refresh fetches the list for the criteria as they stand now. The
// lock is released for the duration of the network call; when the
// response arrives it is applied only if no newer fetch was issued in
// the meantime.
func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	criteria := c.criteria
	c.state = StateLoading
	c.mu.Unlock()

	txs, err := c.policy.Refresh(ctx, c.store, criteria)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		// A newer fetch owns the snapshot now.
		c.logger.Debug("dropping stale fetch", "seq", seq, "latest", c.fetchSeq)
		return nil
	}
	if err != nil {
		c.state = StateErrored
		c.notify(failureMessage(err))
		c.logger.Warn("refresh failed", "error", err)
		return err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	c.txs = txs
	c.state = StateIdle
	return nil
}

// Create submits a new transaction and refetches on success. On
// failure the previous snapshot is kept and the user is notified.
func (c *Controller) Create(ctx context.Context, draft client.TransactionDraft) error {
	return c.mutate(ctx, func() error {
		_, err := c.store.CreateTransaction(ctx, draft)
		return err
	})
}

// StartEdit claims the edit slot for one transaction. Starting a new
// edit discards whatever was in the slot; there is never more than one
// edit underway.
func (c *Controller) StartEdit(tx core.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := tx
	c.editing = &copied
}

// CurrentEdit returns the transaction occupying the edit slot.
func (c *Controller) CurrentEdit() (core.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return core.Transaction{}, false
	}
	return *c.editing, true
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
}

// SubmitEdit applies the patch to the transaction in the edit slot.
// The slot is released only on success.
func (c *Controller) SubmitEdit(ctx context.Context, patch client.TransactionPatch) error {
	c.mu.Lock()
	if c.editing == nil {
		c.mu.Unlock()
		return errors.New("no edit in progress")
	}
	id := c.editing.ID
	c.mu.Unlock()

	err := c.mutate(ctx, func() error {
		_, err := c.store.UpdateTransaction(ctx, id, patch)
		return err
	})
	if err == nil {
		c.mu.Lock()
		c.editing = nil
		c.mu.Unlock()
	}
	return err
}

// RequestDelete stages a transaction for deletion pending the user's
// confirmation. A newer request replaces the staged one.
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
}

// PendingDelete returns the staged deletion, if any.
func (c *Controller) PendingDelete() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete, c.pendingDelete != ""
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = ""
}

// ConfirmDelete deletes the staged transaction. The staging is cleared
// whatever the outcome. When the target is already gone the not-found
// failure is surfaced like any other, but the list is still refetched:
// the transaction no longer exists and the snapshot must reconcile.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pendingDelete
	c.pendingDelete = ""
	c.mu.Unlock()
	if id == "" {
		return errors.New("no deletion pending")
	}

	err := c.mutate(ctx, func() error {
		return c.store.DeleteTransaction(ctx, id)
	})
	if client.IsKind(err, client.KindNotFound) {
		c.logger.Debug("delete target already gone", "transaction_id", id)
		if rerr := c.refresh(ctx); rerr != nil {
			return rerr
		}
	}
	return err
}

// mutate runs one store mutation under the Submitting state and
// refetches on success. On failure the snapshot from before the
// mutation stays visible and the state returns to Idle, the failure
// having been surfaced through the notifier.
func (c *Controller) mutate(ctx context.Context, op func() error) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return errors.New("another change is still being saved")
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	if err := op(); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.notify(failureMessage(err))
		c.logger.Warn("mutation failed", "error", err)
		return err
	}

	return c.refresh(ctx)
}

func failureMessage(err error) string {
	var se *client.Error
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return client.FallbackMessage
}
