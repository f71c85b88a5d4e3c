/*
 *   Copyright 2024 KServices <engineering@kservices.io>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package crypto

import (
	"fmt"

	"github.com/kservices/kcrypt/pkg/types"
	"golang.org/x/crypto/argon2"
)

// DeriveKey derives a 32 byte AES-256 key from the master key and salt
// using Argon2id with the fixed work parameters from pkg/types.
//
// The function is deterministic in its two inputs: decryption
// reconstructs the same key from the salt transmitted alongside the
// ciphertext. Invalid parameter state (empty master key, undersized salt)
// is a KeyDerivationError, never a silent downgrade.
func DeriveKey(masterKey, salt []byte) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, types.KeyDerivationError{Err: fmt.Errorf("master key is empty")}
	}
	if len(salt) < types.MinSaltSize {
		return nil, types.KeyDerivationError{
			Err: fmt.Errorf("salt must be at least %d bytes, got %d", types.MinSaltSize, len(salt)),
		}
	}
	return argon2.IDKey(masterKey, salt,
		types.Argon2Time, types.Argon2Memory, types.Argon2Threads, types.KeySize), nil
}

// EncryptWith seals plaintext with AES-256-GCM, folding the additional
// data into the authentication tag. The returned slice is the ciphertext
// with the 16 byte tag appended. The nonce must never repeat for the same
// key; callers draw a fresh one via GenerateNonce per encryption.
func EncryptWith(plaintext, key, nonce, aad []byte) ([]byte, error) {
	gcm, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// DecryptWith opens a ciphertext produced by EncryptWith. The outcome is
// binary: any mismatch in key, nonce, additional data, ciphertext or tag
// yields types.ErrAuthenticationFailed and no partial plaintext. The
// causes are not distinguished.
func DecryptWith(ciphertext, key, nonce, aad []byte) ([]byte, error) {
	gcm, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < types.TagSize {
		return nil, types.ErrAuthenticationFailed
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, types.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// GenerateSalt draws a fresh 16 byte key derivation salt from the
// process-wide cryptographically secure source.
func GenerateSalt() ([]byte, error) {
	return generateRandom(types.SaltSize)
}

// GenerateNonce draws a fresh 12 byte GCM nonce from the process-wide
// cryptographically secure source.
func GenerateNonce() ([]byte, error) {
	return generateRandom(types.NonceSize)
}

// Zero overwrites key material in place. Call it as soon as a derived key
// has served its single operation.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func generateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := randRead(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
