package connectivity

import "errors"

// Domain errors for the connectivity package.
//
// These errors can be checked using errors.Is() in calling code:
//
//	if errors.Is(err, connectivity.ErrBackendUnavailable) {
//	    // tell the user the backend is unreachable
//	}
var (
	// ErrNotFound is returned when a registry operation references an
	// unknown device identifier. It is recovered internally by the
	// coordinator (cache misses are tolerated) and is never surfaced
	// from connect/disconnect.
	ErrNotFound = errors.New("connectivity: device not found")

	// ErrBackendUnavailable is returned when no command executor is
	// reachable. Fatal to the requested operation, not to the
	// coordinator's future usability.
	ErrBackendUnavailable = errors.New("connectivity: backend unavailable")

	// ErrRemoteFailure matches any RemoteError via errors.Is.
	ErrRemoteFailure = errors.New("connectivity: remote command failed")

	// ErrUnsupported is returned when an operation is invoked on a
	// universe that has no command for it (pair/forget on instruments).
	ErrUnsupported = errors.New("connectivity: operation not supported by universe")

	// ErrDuplicateID is returned when a scan result contains the same
	// device identifier twice. The registry keeps its previous contents.
	ErrDuplicateID = errors.New("connectivity: duplicate device id in scan result")

	// ErrMissingID is returned when a scan result contains a record with
	// an empty identifier. The registry keeps its previous contents.
	ErrMissingID = errors.New("connectivity: device record has no id")
)

// RemoteError is returned when the command executor reports failure,
// either as success=false or as a transport fault — the coordinator
// treats both identically. Error() is the backend's human-readable
// message verbatim, so callers and error events surface exactly what
// the backend said.
type RemoteError struct {
	Command string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrRemoteFailure) match any RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}
