package contract

// LockMode selects the row lock a read takes inside a unit of work.
type LockMode int

const (
	LockNone LockMode = iota
	// LockForUpdate blocks until the row is free.
	LockForUpdate
	// LockSkipLocked returns no row when another transaction holds it.
	LockSkipLocked
)
