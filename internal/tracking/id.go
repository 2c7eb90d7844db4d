package tracking

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	idSeparator    = "_"
	idAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	idRandomLength = 12
	idMinRandom    = 9
)

// NewID returns "<type>_<unix millis>_<12 random base36 chars>".
func NewID(t EmailType) (string, error) {
	return newID(t, time.Now())
}

func newID(t EmailType, now time.Time) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmailType, t)
	}
	suffix, err := randomString(idRandomLength)
	if err != nil {
		return "", err
	}
	return string(t) + idSeparator + strconv.FormatInt(now.UnixMilli(), 10) + idSeparator + suffix, nil
}

// randomString draws n characters from idAlphabet using rejection sampling
// so every character is equally likely.
func randomString(n int) (string, error) {
	const limit = 256 - 256%len(idAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("tracking: read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, idAlphabet[int(b)%len(idAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// ParseID decodes a tracking id. The email type and send time it returns are
// informational; stored records remain the source of truth.
func ParseID(id string) (EmailType, time.Time, error) {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 3 {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	t := EmailType(parts[0])
	if !t.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: unknown type in %q", ErrInvalidID, id)
	}

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ms <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: bad timestamp in %q", ErrInvalidID, id)
	}

	suffix := parts[2]
	if len(suffix) < idMinRandom || len(suffix) > 64 {
		return "", time.Time{}, fmt.Errorf("%w: bad random part in %q", ErrInvalidID, id)
	}
	for _, c := range suffix {
		if !strings.ContainsRune(idAlphabet, c) {
			return "", time.Time{}, fmt.Errorf("%w: bad random part in %q", ErrInvalidID, id)
		}
	}

	return t, time.UnixMilli(ms).UTC(), nil
}
