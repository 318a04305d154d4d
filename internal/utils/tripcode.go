package utils

import (
	"encoding/base64"
	"strings"

	"github.com/itchan-dev/textboard/internal/domain"
	"golang.org/x/crypto/blake2b"
)

const (
	tripSeparator = "#"
	tripMarker    = " ◆"
	tripLen       = 10
)

// NameFormatter turns the raw name field into the name shown on a post.
type NameFormatter struct {
	salt []byte
}

// NewNameFormatter returns a formatter with tripcodes keyed by salt. An empty
// salt disables tripcodes and names are only trimmed.
func NewNameFormatter(salt string) *NameFormatter {
	return &NameFormatter{salt: []byte(salt)}
}

// DisplayName trims raw and falls back to the anonymous name. With tripcodes
// enabled "name#secret" becomes "name ◆<code>", where code is derived from
// secret and the salt.
func (f *NameFormatter) DisplayName(raw string) domain.DisplayName {
	trimmed := strings.TrimSpace(raw)
	if len(f.salt) == 0 {
		return orAnonymous(trimmed)
	}
	name, secret, hasTrip := strings.Cut(trimmed, tripSeparator)
	if !hasTrip || strings.TrimSpace(secret) == "" {
		return orAnonymous(trimmed)
	}
	return orAnonymous(strings.TrimSpace(name)) + tripMarker + f.tripcode(secret)
}

func orAnonymous(name string) domain.DisplayName {
	if name == "" {
		return domain.AnonymousName
	}
	return name
}

func (f *NameFormatter) tripcode(secret string) string {
	// blake2b only rejects keys longer than 64 bytes
	key := f.salt
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))[:tripLen]
}
