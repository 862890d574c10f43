package checkout

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"regexp"
	"time"
)

// DefaultOrderNumberPrefix is the store's order number prefix
const DefaultOrderNumberPrefix = "VST"

// OrderNumberPattern matches the order number format PREFIX-YYYYMMDD-NNNN
var OrderNumberPattern = regexp.MustCompile(`^[A-Z]+-\d{8}-\d{4}$`)

// GenerateOrderNumber produces an order number of the form PREFIX-YYYYMMDD-NNNN
// where the date is the current UTC date and NNNN is a random zero-padded
// 4-digit suffix. The suffix is not globally unique; uniqueness is enforced by
// the database unique constraint and the caller retries on collision.
func GenerateOrderNumber(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the clock
		binary.BigEndian.PutUint64(buf[:], uint64(now.UnixNano()))
	}
	suffix := binary.BigEndian.Uint64(buf[:]) % 10000
	return fmt.Sprintf("%s-%s-%04d", prefix, now.UTC().Format("20060102"), suffix)
}
