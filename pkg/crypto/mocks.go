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
	"crypto/aes"
	"crypto/cipher"
	cryptorand "crypto/rand"
	"fmt"
	"io"

	"github.com/kservices/kcrypt/pkg/types"
)

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	randRead func(b []byte) (int, error) = func(b []byte) (int, error) {
		return io.ReadFull(cryptorand.Reader, b)
	}

	newCipher func(key []byte) (cipher.Block, error) = aes.NewCipher

	newGCM func(block cipher.Block) (cipher.AEAD, error) = cipher.NewGCM
)

// newAEAD validates key and nonce sizes before any cipher state is
// created. The nonce check runs here independently of the cipher call so
// a malformed nonce is rejected without touching key material.
func newAEAD(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != types.KeySize {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", types.KeySize, len(key))
	}
	if len(nonce) != types.NonceSize {
		return nil, types.InvalidNonceLengthError{Length: len(nonce)}
	}

	block, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	return newGCM(block)
}
