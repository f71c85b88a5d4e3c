package types

// Envelope field sizes. These are fixed for version 1 of the envelope:
// decryption reconstructs the derived key from the transmitted salt and
// the cipher requires the exact nonce used at encryption time, so none of
// them can change without bumping the envelope version.
const (
	SaltSize  = 16 // key derivation salt, transmitted openly with the ciphertext
	NonceSize = 12 // AES-GCM nonce
	KeySize   = 32 // AES-256 key
	TagSize   = 16 // GCM authentication tag, appended to the ciphertext
)

// Argon2id work parameters. Fixed so that any envelope can be opened by
// any service holding the master key, and calibrated to keep a single
// derivation in the tens of milliseconds on current server hardware.
const (
	Argon2Time    uint32 = 2
	Argon2Memory  uint32 = 19 * 1024 // KiB
	Argon2Threads uint8  = 1
)

// MinSaltSize is the smallest salt the key derivation accepts. Envelopes
// always carry a SaltSize salt; anything below this bound is an invalid
// parameter state rather than an authentication failure.
const MinSaltSize = 8

const (
	EnvelopeVersion = 1
	SEPARATOR       = "|"
	ENVELOPE_PARTS  = 3
)
