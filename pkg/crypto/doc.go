/*
Package crypto provides the cryptographic primitives for kcrypt: key
derivation and authenticated encryption.

Encryption uses AES-256-GCM with:
  - a 32 byte key derived per operation via Argon2id
  - a 12 byte random nonce, never reused across calls
  - caller supplied additional data folded into the authentication tag,
    binding the ciphertext to its usage context

Key derivation uses Argon2id with fixed work parameters (time 2,
memory 19456 KiB, parallelism 1) and a 16 byte random salt that is
transmitted openly with the ciphertext. The same master key and salt
always produce the same key, which is how decryption recovers it.

Derived keys are single use. Nothing in this package retains key
material between calls; callers are expected to Zero a derived key as
soon as its one operation completes. Long lived secrets such as the
service master key belong in a memguard enclave (see pkg/cache), not in
plain byte slices.

Decryption failure is deliberately uninformative: wrong key, wrong
context and tampered ciphertext all surface as the same
types.ErrAuthenticationFailed. Do not add finer grained diagnostics; a
caller able to distinguish the causes becomes a decryption oracle.
*/
package crypto
