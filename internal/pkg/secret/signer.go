// Package secret authenticates values handed to clients, such as opaque
// session keys, so forged values are rejected before any store lookup.
package secret

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

const separator = "."

var (
	ErrEmptyKey         = errors.New("secret: empty signing key")
	ErrInvalidSignature = errors.New("secret: invalid signature")
)

// Signer appends an HMAC-SHA256 tag to values. The tag also covers a name,
// so a value signed for one cookie cannot be replayed as another.
type Signer struct {
	key []byte
}

func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Signer{key: k}, nil
}

// Sign returns value followed by a separator and the encoded tag.
func (s *Signer) Sign(name, value string) string {
	return value + separator + base64.RawURLEncoding.EncodeToString(s.mac(name, value))
}

// Unwrap verifies a signed value and returns the unsigned value.
func (s *Signer) Unwrap(name, signed string) (string, error) {
	i := strings.LastIndex(signed, separator)
	if i <= 0 || i == len(signed)-1 {
		return "", ErrInvalidSignature
	}
	value, encoded := signed[:i], signed[i+1:]

	tag, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if !hmac.Equal(tag, s.mac(name, value)) {
		return "", ErrInvalidSignature
	}
	return value, nil
}

func (s *Signer) mac(name, value string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}
