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
	"errors"
	"testing"

	"github.com/kservices/kcrypt/pkg/types"
)

const testMasterKey = "unit-test-master-key-0123456789ab"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintexts := []string{
		"",
		"hello world",
		"unicode: héllo wörld 日本語 🔐",
		"a somewhat longer plaintext that spans more than a single block of the cipher",
	}

	for _, plaintext := range plaintexts {
		envelope, err := EncryptWithContext(plaintext, testMasterKey, "user:42")
		if err != nil {
			t.Fatalf("Expected nil error but got %v", err)
		}

		recovered, err := DecryptWithContext(envelope.Ciphertext, envelope.Salt, envelope.Nonce,
			testMasterKey, "user:42")
		if err != nil {
			t.Fatalf("Expected nil error but got %v", err)
		}
		if recovered != plaintext {
			t.Errorf("Expected plaintext %q but got %q", plaintext, recovered)
		}
	}
}

func TestEncryptProducesFreshEnvelopes(t *testing.T) {
	first, err := EncryptWithContext("same plaintext", testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}
	second, err := EncryptWithContext("same plaintext", testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}

	if first.Salt == second.Salt {
		t.Error("Expected a fresh salt for every encryption")
	}
	if first.Nonce == second.Nonce {
		t.Error("Expected a fresh nonce for every encryption")
	}
	if first.Ciphertext == second.Ciphertext {
		t.Error("Expected differing ciphertexts for differing keys and nonces")
	}
}

func TestDecryptWrongContext(t *testing.T) {
	envelope, err := EncryptWithContext("secret", testMasterKey, "user:42")
	if err != nil {
		t.Fatal(err)
	}

	for _, context := range []string{"user:43", "", "USER:42"} {
		_, err = DecryptWithContext(envelope.Ciphertext, envelope.Salt, envelope.Nonce,
			testMasterKey, context)
		if !errors.Is(err, types.ErrAuthenticationFailed) {
			t.Errorf("Expected ErrAuthenticationFailed for context %q but got %v", context, err)
		}
	}
}

func TestDecryptWrongMasterKey(t *testing.T) {
	envelope, err := EncryptWithContext("secret", testMasterKey, "user:42")
	if err != nil {
		t.Fatal(err)
	}

	_, err = DecryptWithContext(envelope.Ciphertext, envelope.Salt, envelope.Nonce,
		"a-different-master-key-0123456789", "user:42")
	if !errors.Is(err, types.ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed but got %v", err)
	}
}

func TestDecryptInvalidFields(t *testing.T) {
	envelope, err := EncryptWithContext("secret", testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		ciphertext    string
		salt          string
		nonce         string
		expectedField string
	}{
		{"bad ciphertext", "not-base64!", envelope.Salt, envelope.Nonce, "ciphertext"},
		{"bad salt", envelope.Ciphertext, "%%%", envelope.Nonce, "salt"},
		{"bad nonce", envelope.Ciphertext, envelope.Salt, "@@@", "nonce"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecryptWithContext(test.ciphertext, test.salt, test.nonce, testMasterKey, "ctx")
			var b64Err types.InvalidBase64Error
			if !errors.As(err, &b64Err) {
				t.Fatalf("Expected InvalidBase64Error but got %v", err)
			}
			if b64Err.Field != test.expectedField {
				t.Errorf("Expected field %q but got %q", test.expectedField, b64Err.Field)
			}
		})
	}
}

func TestDecryptShortNonce(t *testing.T) {
	envelope, err := EncryptWithContext("secret", testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}

	// valid base64 but only 8 bytes of nonce
	_, err = DecryptWithContext(envelope.Ciphertext, envelope.Salt, "AAAAAAAAAAA=", testMasterKey, "ctx")
	var nonceErr types.InvalidNonceLengthError
	if !errors.As(err, &nonceErr) {
		t.Fatalf("Expected InvalidNonceLengthError but got %v", err)
	}
	if nonceErr.Length != 8 {
		t.Errorf("Expected reported length 8 but got %d", nonceErr.Length)
	}
}

func TestEncryptEmptyMasterKey(t *testing.T) {
	_, err := EncryptWithContext("secret", "", "ctx")
	var kdfErr types.KeyDerivationError
	if !errors.As(err, &kdfErr) {
		t.Errorf("Expected KeyDerivationError but got %v", err)
	}
}

func TestDecryptRejectsNonUtf8Plaintext(t *testing.T) {
	// Go strings carry arbitrary bytes, so invalid UTF-8 can be sealed
	// but must be refused on the way back out.
	envelope, err := EncryptWithContext(string([]byte{0xff, 0xfe, 0xfd}), testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}

	_, err = DecryptWithContext(envelope.Ciphertext, envelope.Salt, envelope.Nonce, testMasterKey, "ctx")
	if !errors.Is(err, types.ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8 but got %v", err)
	}
}

func TestOpenCompactForm(t *testing.T) {
	envelope, err := EncryptWithContext("compact form secret", testMasterKey, "ctx")
	if err != nil {
		t.Fatal(err)
	}

	var parsed types.Envelope
	if err = parsed.UnmarshalText([]byte(envelope.String())); err != nil {
		t.Fatal(err)
	}

	recovered, err := Open(parsed, testMasterKey, "ctx")
	if err != nil {
		t.Fatalf("Expected nil error but got %v", err)
	}
	if recovered != "compact form secret" {
		t.Errorf("Expected plaintext %q but got %q", "compact form secret", recovered)
	}
}
