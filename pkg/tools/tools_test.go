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
package tools

import "testing"

func TestContainsIp(t *testing.T) {
	tests := []struct {
		name     string
		network  string
		ip       string
		expected bool
	}{
		{"address in block", "192.168.0.0/24", "192.168.0.17", true},
		{"address outside block", "192.168.0.0/24", "192.168.1.17", false},
		{"loopback block", "127.0.0.0/24", "127.0.0.1", true},
		{"plain address match", "10.0.0.1", "10.0.0.1", true},
		{"plain address mismatch", "10.0.0.1", "10.0.0.2", false},
		{"garbage network", "not-a-network", "10.0.0.1", false},
		{"garbage ip", "10.0.0.0/8", "not-an-ip", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsIp(tc.network, tc.ip); got != tc.expected {
				t.Errorf("ContainsIp(%q, %q) = %v, want %v", tc.network, tc.ip, got, tc.expected)
			}
		})
	}
}

func TestGetMasterKeyFromEnvironment(t *testing.T) {
	t.Setenv(MasterKeyEnv, "environment-master-key-0123456789")

	key, err := GetMasterKey(false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(key) != "environment-master-key-0123456789" {
		t.Errorf("Unexpected master key %q", key)
	}
}
