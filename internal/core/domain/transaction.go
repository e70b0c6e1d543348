package domain

// TxStatus is the lifecycle state of one upgrade transaction.
type TxStatus string

const (
	// TxPending is the initial state before any work starts.
	TxPending TxStatus = "pending"
	// TxResolving means the graph resolver is running. No mutation of the
	// consumer's own state has happened yet.
	TxResolving TxStatus = "resolving"
	// TxSnapshotting means the pre-transaction snapshot is being captured.
	TxSnapshotting TxStatus = "snapshotting"
	// TxMigrating means migration commands are executing.
	TxMigrating TxStatus = "migrating"
	// TxVerifying means a verification command is executing.
	TxVerifying TxStatus = "verifying"
	// TxCommitting means the new lock document is being written.
	TxCommitting TxStatus = "committing"
	// TxDone is the successful terminal state.
	TxDone TxStatus = "done"
	// TxRollingBack means the snapshot is being restored after a failure.
	TxRollingBack TxStatus = "rolling-back"
	// TxRolledBack is the failed terminal state: the repository is
	// observably unchanged from before the transaction.
	TxRolledBack TxStatus = "rolled-back"
)

// PlannedChange is one change the transaction will apply, bound to the
// dependency that declared it.
type PlannedChange struct {
	Dependency string
	Change     Change
	Migration  Command
	Verify     Command
}

// Transaction is the ephemeral coordinator state of one upgrade. It never
// outlives the orchestrator call that created it.
type Transaction struct {
	// Target is the dependency name being upgraded.
	Target string

	// Changes lists the planned changes in application order.
	Changes []PlannedChange

	// Snapshot identifies the captured pre-transaction state, empty until
	// the snapshotting phase completes.
	Snapshot Snapshot

	// Status is the current lifecycle state.
	Status TxStatus
}

// NewTransaction creates a pending transaction for the given target.
func NewTransaction(target string) *Transaction {
	return &Transaction{Target: target, Status: TxPending}
}

// To advances the transaction to the given state.
func (t *Transaction) To(status TxStatus) {
	t.Status = status
}
