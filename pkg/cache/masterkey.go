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
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// MinMasterKeyLength is the minimum number of bytes accepted for a
// master key. Shorter secrets leave the derivation with too little
// entropy to be worth the Argon2 cost.
const MinMasterKeyLength = 32

// MasterKeyCache holds the service master key in an encrypted memguard
// enclave for the lifetime of the process.
//
// Initialization of this object is done in a singleton fashion to ensure
// the secret exists in memory exactly once. Only the caller supplied
// master key is retained: per-operation derived keys are created and
// discarded inside each encrypt or decrypt call and are never stored
// here or anywhere else.
type MasterKeyCache struct {
	enclave *memguard.Enclave
}

var (
	masterKeyCache *MasterKeyCache
	lock           = &sync.Mutex{}
)

// Instance gets the current instance or creates a new master key cache.
//
// This is a mockable entry point for testing.
var Instance = instance

func instance() *MasterKeyCache {
	lock.Lock()
	defer lock.Unlock()
	if masterKeyCache == nil {
		masterKeyCache = &MasterKeyCache{}
	}
	return masterKeyCache
}

// Set seals the master key into the enclave. The input slice is wiped by
// memguard as part of sealing and must not be reused by the caller.
func (m *MasterKeyCache) Set(key []byte) error {
	if len(key) < MinMasterKeyLength {
		return fmt.Errorf("master key must be at least %d characters, got %d", MinMasterKeyLength, len(key))
	}
	lock.Lock()
	defer lock.Unlock()
	m.enclave = memguard.NewEnclave(key)
	return nil
}

// IsSet reports whether a master key has been sealed.
func (m *MasterKeyCache) IsSet() bool {
	lock.Lock()
	defer lock.Unlock()
	return m.enclave != nil
}

// MasterKey opens the enclave and returns a copy of the master key. The
// copy belongs to the caller for the duration of a single operation;
// wipe it when done.
func (m *MasterKeyCache) MasterKey() ([]byte, error) {
	lock.Lock()
	defer lock.Unlock()
	if m.enclave == nil {
		return nil, fmt.Errorf("no master key has been set")
	}

	buffer, err := m.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open master key enclave: %w", err)
	}
	defer buffer.Destroy()

	key := make([]byte, buffer.Size())
	copy(key, buffer.Bytes())
	return key, nil
}

// Reset discards the singleton. Only used from tests.
func Reset() {
	lock.Lock()
	defer lock.Unlock()
	masterKeyCache = nil
}
