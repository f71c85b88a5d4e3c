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
package types

type ServeCmd struct {
	Cert      string            `yaml:"cert" env:"KCRYPT_CERT"`
	Key       string            `yaml:"key" env:"KCRYPT_KEY"`
	Port      int               `yaml:"port" env:"KCRYPT_PORT"`
	Whitelist []string          `yaml:"whitelist" env:"KCRYPT_WHITELIST" envSeparator:","`
	ApiKeys   map[string]string `yaml:"apikeys" env:"KCRYPT_APIKEYS" envSeparator:","`
	Debug     bool              `yaml:"debug" env:"KCRYPT_DEBUG"`
	Quiet     bool              `yaml:"quiet" env:"KCRYPT_QUIET"`
}

type ClientCmd struct {
	Server     string `yaml:"server" env:"KCRYPT_SERVER"`
	Port       int    `yaml:"port" env:"KCRYPT_PORT"`
	SkipVerify bool   `yaml:"skipverify" env:"KCRYPT_SKIPVERIFY"`
	Debug      bool   `yaml:"debug" env:"KCRYPT_DEBUG"`
	Quiet      bool   `yaml:"quiet" env:"KCRYPT_QUIET"`
	Token      string `yaml:"token" env:"KCRYPT_TOKEN"`
	Output     string `yaml:"output" env:"KCRYPT_OUTPUT"`
}

// EncryptRequest is the body of POST /api/v1/encrypt.
type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
	Context   string `json:"context"`
}

// DecryptRequest is the body of POST /api/v1/decrypt. The three envelope
// fields travel exactly as they were returned by the encrypt call.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Context    string `json:"context"`
}

// DecryptResponse carries the recovered plaintext.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// Params describes the fixed pipeline parameters a server is running
// with. Clients use this to sanity check interoperability before
// submitting envelopes.
type Params struct {
	KDF         string `json:"kdf"`
	Time        uint32 `json:"time"`
	Memory      uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
	Cipher      string `json:"cipher"`
	SaltSize    int    `json:"saltsize"`
	NonceSize   int    `json:"noncesize"`
}

// DefaultParams returns the parameter set compiled into this build.
func DefaultParams() Params {
	return Params{
		KDF:         "argon2id",
		Time:        Argon2Time,
		Memory:      Argon2Memory,
		Parallelism: Argon2Threads,
		Cipher:      "aes-256-gcm",
		SaltSize:    SaltSize,
		NonceSize:   NonceSize,
	}
}
