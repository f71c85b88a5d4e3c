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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/crypto"
	"github.com/kservices/kcrypt/pkg/kcrypt"
	"github.com/kservices/kcrypt/pkg/tools"
	"github.com/kservices/kcrypt/pkg/transport"
	"github.com/kservices/kcrypt/pkg/types"
)

var (
	aadContext string
	secretName string
	local      bool
)

// encryptCmd represents the encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt [plaintext]",
	Short: "Encrypt plaintext bound to a context",
	Long: `Encrypt plaintext under the master key, binding the ciphertext to a
	context string. The same context must be supplied to decrypt.

	The plaintext is taken from the first argument, or read from stdin when
	no argument is given:

		kcrypt encrypt -c db/primary 'connection string'
		cat credential.txt | kcrypt encrypt -c db/primary

	With --local the master key is read from the KCRYPT_MASTER_KEY
	environment variable or the system keychain and the operation runs
	without a server. Otherwise the request is sent to the configured
	kcrypt server.

	The result is printed as JSON by default. Use --output text for the
	single line envelope form, or --output k8s for a kubernetes secret
	manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			plaintext string
			envelope  types.Envelope
			err       error
		)

		if len(args) > 0 {
			plaintext = args[0]
		} else {
			var b []byte
			if b, err = io.ReadAll(os.Stdin); err != nil {
				return fmt.Errorf("unable to read plaintext from stdin: %w", err)
			}
			plaintext = string(b)
		}

		if local {
			var masterKey []byte
			if masterKey, err = tools.GetMasterKey(true); err != nil {
				return err
			}
			defer crypto.Zero(masterKey)

			if envelope, err = kcrypt.EncryptWithContext(plaintext, string(masterKey), aadContext); err != nil {
				return err
			}
		} else {
			if err = loadClientConfig(); err != nil {
				return err
			}

			var (
				ctx     context.Context = context.WithValue(context.Background(), transport.AuthToken{}, clientCmd.Token)
				address string          = fmt.Sprintf("https://%s:%d/api/v1/encrypt", clientCmd.Server, clientCmd.Port)
			)
			if err = transport.DefaultHttpClient.Post(ctx, address, &envelope, types.EncryptRequest{
				Plaintext: plaintext,
				Context:   aadContext,
			}); err != nil {
				return err
			}
		}

		var out string
		if out, err = formatEnvelope(envelope, aadContext, secretName, clientCmd.Output); err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVarP(&aadContext, "context", "c", "", "Context string the ciphertext is bound to")
	encryptCmd.Flags().StringVarP(&secretName, "name", "n", "", "Secret name used with --output k8s")
	encryptCmd.Flags().BoolVarP(&local, "local", "l", false, "Run locally against the master key instead of a server")
}
