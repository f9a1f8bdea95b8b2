package replication

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Delete when the key has no entry.
var ErrKeyNotFound = errors.New("key not found")

// QuorumError reports a dispatch that resolved below the write quorum. The
// leader's local state is retained; only the client-visible outcome fails.
type QuorumError struct {
	Acks   int
	Quorum int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("replication quorum not reached (%d/%d)", e.Acks, e.Quorum)
}
