package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

const codeLen = 6

// NewCode returns a short shareable code drawn from the random tail of a
// ULID, so codes stay uppercase and unambiguous to read out loud.
func NewCode() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
	return id[len(id)-codeLen:]
}
