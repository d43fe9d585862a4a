package execution

import "errors"

var (
	// ErrNotFound is returned when no execution exists for the given id.
	ErrNotFound = errors.New("execution not found")

	// ErrAlreadyExists is returned when creating an execution with an id
	// that was already used. Ids are minted once and never reused.
	ErrAlreadyExists = errors.New("execution already exists")

	// ErrKindInProgress is returned when an execution cannot start because
	// another execution of the same kind is still in progress.
	ErrKindInProgress = errors.New("another execution of this kind is in progress")

	// ErrMissingDecoder is returned when the decoder registry is built
	// without a decoder for one of the catalogue kinds.
	ErrMissingDecoder = errors.New("no output decoder registered for kind")

	// ErrUnknownKind is returned when decoding output for a kind outside
	// the closed catalogue.
	ErrUnknownKind = errors.New("unknown command kind")
)
