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
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/twpayne/go-pinentry"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/kservices/kcrypt/pkg/kcrypt"
	"github.com/kservices/kcrypt/pkg/tools"
	"github.com/kservices/kcrypt/pkg/types"
)

var fatal func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

// sealProof seals a short registration message under the caller's master
// key with the token context. A server holding the same master key can
// open it, which is the proof required to be issued an API key.
var sealProof = func(masterKey string) (string, error) {
	envelope, err := kcrypt.EncryptWithContext("registration", masterKey, kcrypt.TokenContext)
	if err != nil {
		return "", err
	}
	return envelope.String(), nil
}

var getPassword func() (string, error) = func() (string, error) {
	return func() (string, error) {
		var (
			err         error
			client      *pinentry.Client
			password    string
			usePinentry bool = true
		)

		if client, err = getPinentry(
			pinentry.WithBinaryNameFromGnuPGAgentConf(),
			pinentry.WithDesc("Please enter the kcrypt master key."),
			pinentry.WithGPGTTY(),
			pinentry.WithPrompt("Master key:"),
			pinentry.WithTitle("Master key"),
		); err != nil {
			if password, err = readPassword("Please enter the kcrypt master key: "); err != nil {
				return "", err
			}
			usePinentry = false
		}

		if usePinentry {
			defer client.Close()
			password, _, err = client.GetPIN()
			if pinentry.IsCancelled(err) {
				return "", fmt.Errorf("Cancelled")
			}
		}
		if password == "" {
			return "", fmt.Errorf("No password provided")
		}
		password = strings.TrimSpace(password)
		return password, err
	}()
}

var getPinentry func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) = func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) {
	return pinentry.NewClient(options...)
}

var readPassword func(prompt string) (string, error) = func(prompt string) (string, error) {
	b, err := tools.ReadPassword(prompt)
	return string(b), err
}

// formatEnvelope renders an envelope in the requested output format.
//
// json is the transport representation, text is the single line compact
// form and k8s wraps the fields in an opaque kubernetes secret manifest
// ready for kubectl apply.
func formatEnvelope(envelope types.Envelope, aadContext, name, format string) (string, error) {
	switch format {
	case "", "json":
		b, err := prettyjson.Marshal(envelope)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "text":
		return envelope.String(), nil
	case "k8s":
		if name == "" {
			name = "kcrypt-secret"
		}
		secret := corev1.Secret{
			TypeMeta: metav1.TypeMeta{
				Kind:       "Secret",
				APIVersion: "v1",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name: name,
				Annotations: map[string]string{
					"kcrypt.kservices.io/context": aadContext,
				},
			},
			Type: corev1.SecretTypeOpaque,
			StringData: map[string]string{
				"ciphertext": envelope.Ciphertext,
				"salt":       envelope.Salt,
				"nonce":      envelope.Nonce,
			},
		}
		b, err := yaml.Marshal(secret)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}
