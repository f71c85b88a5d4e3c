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
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"

	"github.com/kservices/kcrypt/pkg/cache"
	"github.com/kservices/kcrypt/pkg/crypto"
	"github.com/kservices/kcrypt/pkg/tools"
	"github.com/kservices/kcrypt/pkg/types"
)

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	ConfigPath   func(m ConfigMode) string = getConfigPath
	getMasterKey func() ([]byte, error)    = func() ([]byte, error) {
		return cache.Instance().MasterKey()
	}
)

type Config struct {
	Server types.ServeCmd `yaml:"server"`

	Address string `yaml:"address" env:"KCRYPT_ADDRESS"`
	Port    int    `yaml:"port" env:"KCRYPT_PORT"`
	Token   string `yaml:"token" env:"KCRYPT_TOKEN"`
}

type ConfigMode int

const (
	ConfigModeDefault ConfigMode = iota
	ConfigModeClient
	ConfigModeServer
)

func New() *Config {
	return &Config{}
}

// Load the config file from the user local config directory
//
// The config file will be loaded from ~/.config/kcrypt/server.yaml (or
// client.yaml) if it exists and then the environment will be checked for
// overrides.
//
// Users are expected to call one of `MergeServerConfig` or
// `MergeClientConfig` to override the config with command line options.
func (c *Config) Load(m ConfigMode) (err error) {
	if err = c.loadYaml(m); err != nil {
		return
	}
	if err = c.loadEnv(); err != nil {
		return
	}

	return
}

func (c *Config) loadYaml(m ConfigMode) (err error) {
	var (
		cp       string = ConfigPath(m)
		yamlFile []byte
	)

	if _, err = os.Stat(cp); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if yamlFile, err = os.ReadFile(cp); err != nil {
		return err
	}

	log.Printf("Loading config file %s\n", cp)
	return yaml.Unmarshal(yamlFile, c)
}

func (c *Config) loadEnv() (err error) {
	return env.Parse(c)
}

func (c *Config) MergeClientConfig(cmd types.ClientCmd) {
	if cmd.Server != "" {
		c.Address = cmd.Server
	}
	if cmd.Port != 0 {
		c.Port = cmd.Port
	}
	if cmd.Token != "" {
		c.Token = cmd.Token
	}
}

func (c *Config) MergeServerConfig(cmd types.ServeCmd) {
	if len(cmd.Whitelist) > 0 {
		c.Server.Whitelist = cmd.Whitelist
	}
	if len(cmd.ApiKeys) > 0 {
		if c.Server.ApiKeys == nil {
			c.Server.ApiKeys = make(map[string]string)
		}
		for k, v := range cmd.ApiKeys {
			c.Server.ApiKeys[k] = v
		}
	}
	if cmd.Cert != "" {
		c.Server.Cert = cmd.Cert
	}
	if cmd.Key != "" {
		c.Server.Key = cmd.Key
	}
	if cmd.Port != 0 {
		c.Server.Port = cmd.Port
	}
	if cmd.Debug {
		c.Server.Debug = cmd.Debug
	}
	if cmd.Quiet {
		c.Server.Quiet = cmd.Quiet
	}
}

func (c *Config) IsSecure() (secure bool) {
	if c.Server.Cert != "" && c.Server.Key != "" {
		secure = true
	}
	return
}

// DeriveApiKey turns a plain token into its stored comparison form by
// running it through the key derivation with the master key. Only the
// derived form ever touches the config file; the plain token stays with
// the client that requested it.
func DeriveApiKey(token string) (string, error) {
	var (
		masterKey []byte
		derived   []byte
		err       error
	)
	if masterKey, err = getMasterKey(); err != nil {
		return "", err
	}
	defer crypto.Zero(masterKey)

	// The token doubles as salt input so the derivation stays
	// deterministic per token.
	salt := sha256.Sum256([]byte(token))
	if derived, err = crypto.DeriveKey(masterKey, salt[:types.SaltSize]); err != nil {
		return "", err
	}
	defer crypto.Zero(derived)

	return base64.StdEncoding.EncodeToString(derived), nil
}

const tokenRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

func CreateToken() string {
	b := make([]byte, 32)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenRunes))))
		if err != nil {
			log.Fatal(err)
		}
		b[i] = tokenRunes[n.Int64()]
	}
	return string(b)
}

func (c *Config) AddApiKey(hostOrCidr string) (string, error) {
	var (
		token string = CreateToken()
		key   string
		err   error
	)

	if key, err = DeriveApiKey(token); err != nil {
		return "", err
	}

	if c.Server.ApiKeys == nil {
		c.Server.ApiKeys = make(map[string]string)
	}
	c.Server.ApiKeys[hostOrCidr] = key

	err = c.Save()
	return token, err
}

func (c *Config) Save() (err error) {
	// Localhost address must always be whitelisted
	if len(c.Server.Whitelist) == 0 {
		c.Server.Whitelist = append(c.Server.Whitelist, "127.0.0.0/24")
	}

	var data []byte
	if data, err = yaml.Marshal(c); err != nil {
		return err
	}

	var cp string = ConfigPath(ConfigModeServer)
	if err = os.MkdirAll(filepath.Dir(cp), 0700); err != nil {
		return err
	}
	return os.WriteFile(cp, data, 0600)
}

func getConfigPath(m ConfigMode) string {
	home, _ := os.UserHomeDir()
	if m == ConfigModeClient {
		return fmt.Sprintf("%s/.config/kcrypt/client.yaml", home)
	}
	return fmt.Sprintf("%s/.config/kcrypt/server.yaml", home)
}

func (c *Config) RevokeApiKey(what string) (string, error) {
	var (
		keys        map[string]string = make(map[string]string)
		revokedHost string            = ""
		derivedWhat string
		err         error
	)

	if derivedWhat, err = DeriveApiKey(what); err != nil {
		return "", err
	}

	for host, key := range c.Server.ApiKeys {
		if host == what || key == derivedWhat {
			revokedHost = host
			continue
		}
		keys[host] = key
	}
	c.Server.ApiKeys = keys
	err = c.Save()
	return revokedHost, err
}

func (c *Config) CheckApiKey(addr, key string) bool {
	// derive the token for comparison
	derived, err := DeriveApiKey(key)
	if err != nil {
		return false
	}
	for ip, k := range c.Server.ApiKeys {
		if k == derived && (ip == addr || tools.ContainsIp(ip, addr)) {
			return true
		}
	}
	return false
}
