package ports

// SyncEngine runs the per-account mailbox synchronization flows.
type SyncEngine interface {
	// Start launches the backfill and live-tail flow for every
	// configured account.
	Start() error

	// Stop terminates all account flows and waits for them to exit.
	Stop() error
}
