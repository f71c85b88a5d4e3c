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
package kcrypt

import (
	"unicode/utf8"

	"github.com/kservices/kcrypt/pkg/crypto"
	"github.com/kservices/kcrypt/pkg/types"
)

// EncryptWithContext encrypts plaintext under a key derived from the
// master key and a fresh random salt, binding the ciphertext to the given
// context string. The context is authenticated but not encrypted:
// decryption under any other context fails.
//
// Every call draws a fresh salt and nonce and derives a new key. Nothing
// is shared or cached between calls and the derived key is wiped before
// return, so the function is safe for unsynchronised concurrent use.
func EncryptWithContext(plaintext, masterKey, aadContext string) (types.Envelope, error) {
	var (
		salt, nonce     []byte
		key, ciphertext []byte
		err             error
	)

	if salt, err = crypto.GenerateSalt(); err != nil {
		return types.Envelope{}, err
	}
	if nonce, err = crypto.GenerateNonce(); err != nil {
		return types.Envelope{}, err
	}

	if key, err = crypto.DeriveKey([]byte(masterKey), salt); err != nil {
		return types.Envelope{}, err
	}
	defer crypto.Zero(key)

	if ciphertext, err = crypto.EncryptWith([]byte(plaintext), key, nonce, []byte(aadContext)); err != nil {
		return types.Envelope{}, err
	}

	return types.NewEnvelope(ciphertext, salt, nonce), nil
}

// DecryptWithContext reverses EncryptWithContext from the three base64
// transport fields. Decode failures name the offending field, a nonce of
// the wrong length is rejected before any cryptographic work, and every
// authentication problem collapses into types.ErrAuthenticationFailed.
func DecryptWithContext(ciphertextB64, saltB64, nonceB64, masterKey, aadContext string) (string, error) {
	return Open(types.Envelope{
		Ciphertext: ciphertextB64,
		Salt:       saltB64,
		Nonce:      nonceB64,
	}, masterKey, aadContext)
}

// Open decrypts an envelope. The recovered payload must be valid UTF-8
// text; anything else fails with types.ErrInvalidUTF8 and no partial
// plaintext is ever released.
func Open(envelope types.Envelope, masterKey, aadContext string) (string, error) {
	var (
		ciphertext, salt, nonce []byte
		key, plaintext          []byte
		err                     error
	)

	if ciphertext, err = envelope.DecodeCiphertext(); err != nil {
		return "", err
	}
	if salt, err = envelope.DecodeSalt(); err != nil {
		return "", err
	}
	// DecodeNonce enforces the 12 byte precondition.
	if nonce, err = envelope.DecodeNonce(); err != nil {
		return "", err
	}

	if key, err = crypto.DeriveKey([]byte(masterKey), salt); err != nil {
		return "", err
	}
	defer crypto.Zero(key)

	if plaintext, err = crypto.DecryptWith(ciphertext, key, nonce, []byte(aadContext)); err != nil {
		return "", err
	}

	if !utf8.Valid(plaintext) {
		return "", types.ErrInvalidUTF8
	}
	return string(plaintext), nil
}
