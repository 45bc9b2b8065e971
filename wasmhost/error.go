package wasmhost

import "errors"

var (
	ErrRequiredFunctionNotExported = errors.New("required function not exported")
	ErrABIVersionMarkerNotExported = errors.New("required ABI version marker not exported")
	// ErrGuestRejected is returned when an entry point reports BAD_REQUEST or
	// a status code outside the ABI.
	ErrGuestRejected = errors.New("guest rejected request")
)
