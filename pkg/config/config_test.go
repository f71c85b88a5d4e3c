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
package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/kservices/kcrypt/pkg/cache"
	"github.com/kservices/kcrypt/pkg/types"
)

var testMasterKey = []byte("an-integration-test-master-key-0")

func setupSuite(t *testing.T) func(t *testing.T) {
	t.Log("Setting up config suite")
	tempDir := t.TempDir()
	ConfigPath = func(m ConfigMode) string {
		return filepath.Join(tempDir, "server.yaml")
	}
	err := os.WriteFile(ConfigPath(ConfigModeServer), []byte(`
server:
  whitelist:
    - 127.0.0.0/24
  cert: cert.pem
  key: key.pem
  port: 6278
  apikeys:
    example.com: abcdef123456
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	return func(t *testing.T) {
		ConfigPath = getConfigPath
		cache.Reset()
	}
}

func primeMasterKey(t *testing.T) {
	key := make([]byte, len(testMasterKey))
	copy(key, testMasterKey)
	if err := cache.Instance().Set(key); err != nil {
		t.Fatal(err)
	}
}

func TestConfig_Load(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	c := New()
	if err := c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	expected := types.ServeCmd{
		Whitelist: []string{"127.0.0.0/24"},
		Cert:      "cert.pem",
		Key:       "key.pem",
		Port:      6278,
		ApiKeys:   map[string]string{"example.com": "abcdef123456"},
	}
	if diff := pretty.Compare(expected, c.Server); diff != "" {
		t.Errorf("Loaded config does not match (-want +got):\n%s", diff)
	}
}

func TestConfig_LoadEnvOverrides(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	t.Setenv("KCRYPT_ADDRESS", "vault.example.com")
	t.Setenv("KCRYPT_PORT", "7070")
	t.Setenv("KCRYPT_TOKEN", "abcdef123456")

	c := New()
	if err := c.Load(ConfigModeClient); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if c.Address != "vault.example.com" {
		t.Errorf("Expected address %q but got %q", "vault.example.com", c.Address)
	}
	if c.Port != 7070 {
		t.Errorf("Expected port %d but got %d", 7070, c.Port)
	}
	if c.Token != "abcdef123456" {
		t.Errorf("Expected token %q but got %q", "abcdef123456", c.Token)
	}
}

func TestConfig_MergeClientConfig(t *testing.T) {
	c := &Config{Address: "localhost", Port: 6278, Token: "original"}
	c.MergeClientConfig(types.ClientCmd{Server: "remote.example.com", Token: "override"})

	if c.Address != "remote.example.com" {
		t.Errorf("Expected address %q but got %q", "remote.example.com", c.Address)
	}
	if c.Port != 6278 {
		t.Errorf("Expected port %d to be preserved but got %d", 6278, c.Port)
	}
	if c.Token != "override" {
		t.Errorf("Expected token %q but got %q", "override", c.Token)
	}
}

func TestConfig_IsSecure(t *testing.T) {
	c := &Config{}
	if c.IsSecure() {
		t.Error("Expected IsSecure to return false when cert and key are empty")
	}

	c.Server.Cert = "cert.pem"
	if c.IsSecure() {
		t.Error("Expected IsSecure to return false when key is empty")
	}

	c.Server.Key = "key.pem"
	if !c.IsSecure() {
		t.Error("Expected IsSecure to return true when cert and key are not empty")
	}
}

func TestDeriveApiKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	key, err := DeriveApiKey("example-token")
	if err != nil {
		t.Fatal(err)
	}

	t.Log("Derived API key:", key)
	if _, err := base64.StdEncoding.DecodeString(key); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	again, err := DeriveApiKey("example-token")
	if err != nil {
		t.Fatal(err)
	}
	if key != again {
		t.Error("Expected the same token to derive the same API key")
	}
}

func TestDeriveApiKey_NoMasterKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	if _, err := DeriveApiKey("example-token"); err == nil {
		t.Error("Expected an error when no master key has been set")
	}
}

func TestCreateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		token := CreateToken()
		if len(token) != 32 {
			t.Errorf("Expected token length 32 but got %d", len(token))
		}
		if seen[token] {
			t.Errorf("Expected unique tokens but %q repeated", token)
		}
		seen[token] = true
	}
}

func TestConfig_AddApiKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	var (
		c          *Config = New()
		hostOrCidr string  = "example.com"
		key        string
		ok         bool
		err        error
		token      string
	)

	if err = c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if token, err = c.AddApiKey(hostOrCidr); err != nil {
		t.Fatal(err)
	}

	if key, ok = c.Server.ApiKeys[hostOrCidr]; !ok {
		t.Errorf("Expected API key for host %q to be added", hostOrCidr)
	}

	derived, err := DeriveApiKey(token)
	if err != nil {
		t.Fatal(err)
	}
	if key != derived {
		t.Errorf("Expected API key %q for host %q but got %q", derived, hostOrCidr, key)
	}

	if _, err := base64.StdEncoding.DecodeString(key); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}
}

func TestConfig_Save(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	var (
		c    *Config = New()
		err  error
		data []byte
	)

	if err = c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	c.Server.Cert = "cert.pem"
	c.Server.Key = "key.pem"
	c.Server.Port = 6278
	c.Server.ApiKeys = map[string]string{"example.com": "abcdef123456"}

	if err = c.Save(); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if data, err = os.ReadFile(ConfigPath(ConfigModeServer)); err != nil {
		t.Fatal(err)
	}

	reloaded := New()
	if err = reloaded.loadYaml(ConfigModeServer); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(c.Server, reloaded.Server); diff != "" {
		t.Errorf("Saved config does not round trip (-want +got):\n%s\nfile contents:\n%s", diff, string(data))
	}
}

func TestConfig_RevokeApiKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	c := New()
	if err := c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	var (
		hostOrCidr  string = "example.com"
		token       string
		err         error
		revokedHost string
	)
	if token, err = c.AddApiKey(hostOrCidr); err != nil {
		t.Fatal(err)
	}

	if revokedHost, err = c.RevokeApiKey(token); err != nil {
		t.Fatal(err)
	}

	if revokedHost != hostOrCidr {
		t.Errorf("Expected revoked host %q but got %q", hostOrCidr, revokedHost)
	}
	if _, ok := c.Server.ApiKeys[hostOrCidr]; ok {
		t.Errorf("Expected API key for host %q to be revoked", hostOrCidr)
	}
}

func TestConfig_RevokeApiKey_ByHost(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	c := New()
	if err := c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if _, err := c.AddApiKey("192.168.0.0/24"); err != nil {
		t.Fatal(err)
	}

	revokedHost, err := c.RevokeApiKey("192.168.0.0/24")
	if err != nil {
		t.Fatal(err)
	}
	if revokedHost != "192.168.0.0/24" {
		t.Errorf("Expected revoked host %q but got %q", "192.168.0.0/24", revokedHost)
	}
}

func TestConfig_CheckApiKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	var (
		c     *Config = New()
		err   error
		token string
	)

	if err = c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	hosts := map[string]string{
		"example.com": "",
		"192.168.0.1": "",
	}
	for host := range hosts {
		if token, err = c.AddApiKey(host); err != nil {
			t.Fatal(err)
		}
		hosts[host] = token
	}

	for host, key := range hosts {
		if !c.CheckApiKey(host, key) {
			t.Errorf("Expected API key %q for host %q to be valid", key, host)
		}
	}
}

func TestConfig_CheckApiKey_Cidr(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	c := New()
	if err := c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	token, err := c.AddApiKey("10.0.0.0/8")
	if err != nil {
		t.Fatal(err)
	}

	if !c.CheckApiKey("10.1.2.3", token) {
		t.Errorf("Expected API key for CIDR %q to admit %q", "10.0.0.0/8", "10.1.2.3")
	}
	if c.CheckApiKey("192.168.0.1", token) {
		t.Errorf("Expected API key for CIDR %q to reject %q", "10.0.0.0/8", "192.168.0.1")
	}
}

func TestConfig_CheckApiKey_InvalidKey(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)
	primeMasterKey(t)

	c := New()
	if err := c.Load(ConfigModeServer); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	addr := "127.0.0.1"
	key := "invalidkey"

	if c.CheckApiKey(addr, key) {
		t.Errorf("Expected API key %q for address %q to be invalid", key, addr)
	}
}

func TestGetConfigPath(t *testing.T) {
	expectedPath := filepath.Join(os.Getenv("HOME"), ".config/kcrypt/server.yaml")
	actualPath := getConfigPath(ConfigModeServer)
	if actualPath != expectedPath {
		t.Errorf("Expected config path %q but got %q", expectedPath, actualPath)
	}
}
