package usecase

const (
	// DefaultExternalID is the ERP id assumed when a reference cannot be
	// resolved during the migration window.
	DefaultExternalID int64 = 1

	// DefaultClearingAccountCode is the ERP account code of the suspense
	// account that carries the counterpart line of every journal entry.
	DefaultClearingAccountCode = "499000"
)
