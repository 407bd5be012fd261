package tickets

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrMalformedRow   = errors.New("malformed row")
	// ErrConflict means the store gave up on a statement because of concurrent work.
	// Retrying the whole transaction is safe.
	ErrConflict = errors.New("concurrent update conflict")
)
