// Package daily maps calendar days to challenges and stores daily results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"
)

const keyLayout = "2006-01-02"

// ErrBadDate is returned by ParseKey for anything but YYYY-MM-DD.
var ErrBadDate = errors.New("daily: date must be YYYY-MM-DD")

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(keyLayout)
}

// ParseKey validates and normalizes a YYYY-MM-DD date key.
func ParseKey(s string) (string, error) {
	t, err := time.Parse(keyLayout, s)
	if err != nil {
		return "", ErrBadDate
	}
	return DateKey(t), nil
}

// Index picks one of n challenges for date: HMAC-SHA256(salt, date key) mod n.
// Every moment of a UTC day maps to the same index.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(DateKey(date)))
	v := binary.BigEndian.Uint64(mac.Sum(nil)[:8])
	return int(v % uint64(n))
}
