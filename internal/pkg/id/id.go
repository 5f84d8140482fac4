package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID used for doctor ids and booking ids. ULIDs sort by
// creation time, so booking range keys come back in insertion order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
