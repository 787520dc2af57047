// Package id issues ULIDs for plans and logged trades.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Monotonic entropy keeps IDs from the same millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t, so IDs sort with the records they
// name even when the caller's clock is not the wall clock. A zero or
// pre-epoch t is stamped with the current time.
func NewAt(t time.Time) string {
	if t.Unix() < 0 {
		t = time.Now()
	}

	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// only when t is outside the ULID range or entropy fails
		panic(err)
	}
	return id.String()
}

// Time returns the millisecond timestamp embedded in a ULID.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
