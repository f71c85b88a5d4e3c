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
package cache

import (
	"bytes"
	"strings"
	"testing"
)

func TestMasterKeyRoundTrip(t *testing.T) {
	defer Reset()
	Reset()

	m := Instance()
	if m.IsSet() {
		t.Fatal("Expected no master key on a fresh instance")
	}

	if _, err := m.MasterKey(); err == nil {
		t.Error("Expected error but got nil")
	}

	secret := []byte(strings.Repeat("k", MinMasterKeyLength))
	expected := make([]byte, len(secret))
	copy(expected, secret)

	if err := m.Set(secret); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !m.IsSet() {
		t.Fatal("Expected master key to be set")
	}

	key, err := m.MasterKey()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.Equal(key, expected) {
		t.Error("Expected the stored master key back")
	}

	// Each call hands out an independent copy.
	again, err := m.MasterKey()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	key[0] ^= 0xff
	if !bytes.Equal(again, expected) {
		t.Error("Expected copies to be independent")
	}
}

func TestMasterKeyTooShort(t *testing.T) {
	defer Reset()
	Reset()

	err := Instance().Set([]byte("too-short"))
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
	if err.Error() != "master key must be at least 32 characters, got 9" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}
}

func TestInstanceIsSingleton(t *testing.T) {
	defer Reset()
	Reset()

	if Instance() != Instance() {
		t.Error("Expected the same instance on repeated calls")
	}
}
