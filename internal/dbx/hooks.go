package dbx

import "context"

// TxHooks collects work that has to wait for the outcome of a transaction,
// typically removing objects in external storage that committed rows no
// longer reference. A TxHooks belongs to one transaction and is not safe for
// concurrent use.
type TxHooks struct {
	onCommit   []func(ctx context.Context)
	onRollback []func(ctx context.Context)
}

// OnCommit registers fn to run after the transaction commits.
func (h *TxHooks) OnCommit(fn func(ctx context.Context)) {
	h.onCommit = append(h.onCommit, fn)
}

// OnRollback registers fn to run when the transaction does not commit,
// including a failed commit.
func (h *TxHooks) OnRollback(fn func(ctx context.Context)) {
	h.onRollback = append(h.onRollback, fn)
}

// Finish runs the commit hooks or the rollback hooks, in registration order,
// and clears both lists. Hooks still run when ctx is already canceled.
func (h *TxHooks) Finish(ctx context.Context, committed bool) {
	run := h.onRollback
	if committed {
		run = h.onCommit
	}
	h.onCommit, h.onRollback = nil, nil

	ctx = context.WithoutCancel(ctx)
	for _, fn := range run {
		fn(ctx)
	}
}
