package types

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed covers tag mismatch, wrong master key and
	// wrong context alike. The causes are deliberately collapsed so a
	// caller cannot be used as a decryption oracle.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidUTF8 is returned when decryption succeeds but the payload
	// is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("plaintext is not valid UTF-8")
)

// InvalidBase64Error names the envelope field that failed to decode.
type InvalidBase64Error struct {
	Field string
	Err   error
}

func (e InvalidBase64Error) Error() string {
	return fmt.Sprintf("invalid base64 %s: %v", e.Field, e.Err)
}

func (e InvalidBase64Error) Unwrap() error {
	return e.Err
}

// InvalidNonceLengthError is raised before any cipher operation runs.
type InvalidNonceLengthError struct {
	Length int
}

func (e InvalidNonceLengthError) Error() string {
	return fmt.Sprintf("invalid nonce length: expected %d bytes, got %d", NonceSize, e.Length)
}

// KeyDerivationError carries the underlying cause of a failed derivation.
type KeyDerivationError struct {
	Err error
}

func (e KeyDerivationError) Error() string {
	return fmt.Sprintf("key derivation failed: %v", e.Err)
}

func (e KeyDerivationError) Unwrap() error {
	return e.Err
}

type MissingVersionError struct {
	Value []byte
}

func (e MissingVersionError) Error() string {
	return fmt.Sprintf("envelope does not contain a version: %q", e.Value)
}

type InvalidVersionError struct {
	Value []byte
}

func (e InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid envelope version: %q", e.Value)
}

type UnsupportedVersionError struct {
	Value int
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported envelope version: %d", e.Value)
}
