package report

import "errors"

var (
	// ErrNotFound is returned when no report has the requested id.
	ErrNotFound = errors.New("report not found")
	// ErrUnknownStatus is returned for a status outside the closed set.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrTerminalState is returned when a resolved or dismissed report
	// would move back to pending or reviewing.
	ErrTerminalState = errors.New("report is in a terminal state")
	// ErrNoState is returned by a Repository that has never been saved to.
	ErrNoState = errors.New("no saved reports")
	// ErrCorrupt is returned by a Repository whose saved data cannot be decoded.
	ErrCorrupt = errors.New("saved reports are corrupt")
)
