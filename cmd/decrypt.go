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
	"strings"

	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/crypto"
	"github.com/kservices/kcrypt/pkg/kcrypt"
	"github.com/kservices/kcrypt/pkg/tools"
	"github.com/kservices/kcrypt/pkg/transport"
	"github.com/kservices/kcrypt/pkg/types"
)

var decryptFields types.DecryptRequest

// decryptCmd represents the decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt [envelope]",
	Short: "Decrypt an envelope bound to a context",
	Long: `Decrypt a ciphertext envelope. The context given to encrypt must be
	supplied again; a mismatch fails authentication.

	The envelope is taken either from the first argument (or stdin) in the
	single line form produced by encrypt --output text:

		kcrypt decrypt -c db/primary '1.gbJ...==|aGVsbG8wMDAwMDA=|xyz...='

	or from the individual --ciphertext, --salt and --nonce flags carrying
	the base64 fields of the JSON form.

	With --local the master key is read from the KCRYPT_MASTER_KEY
	environment variable or the system keychain and the operation runs
	without a server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			envelope  types.Envelope
			plaintext string
			err       error
		)

		if decryptFields.Ciphertext != "" || decryptFields.Salt != "" || decryptFields.Nonce != "" {
			envelope = types.Envelope{
				Ciphertext: decryptFields.Ciphertext,
				Salt:       decryptFields.Salt,
				Nonce:      decryptFields.Nonce,
			}
		} else {
			var compact string
			if len(args) > 0 {
				compact = args[0]
			} else {
				var b []byte
				if b, err = io.ReadAll(os.Stdin); err != nil {
					return fmt.Errorf("unable to read envelope from stdin: %w", err)
				}
				compact = strings.TrimSpace(string(b))
			}
			if err = envelope.UnmarshalText([]byte(compact)); err != nil {
				return err
			}
		}

		if local {
			var masterKey []byte
			if masterKey, err = tools.GetMasterKey(true); err != nil {
				return err
			}
			defer crypto.Zero(masterKey)

			if plaintext, err = kcrypt.Open(envelope, string(masterKey), aadContext); err != nil {
				return err
			}
		} else {
			if err = loadClientConfig(); err != nil {
				return err
			}

			var (
				ctx      context.Context = context.WithValue(context.Background(), transport.AuthToken{}, clientCmd.Token)
				address  string          = fmt.Sprintf("https://%s:%d/api/v1/decrypt", clientCmd.Server, clientCmd.Port)
				response types.DecryptResponse
			)
			if err = transport.DefaultHttpClient.Post(ctx, address, &response, types.DecryptRequest{
				Ciphertext: envelope.Ciphertext,
				Salt:       envelope.Salt,
				Nonce:      envelope.Nonce,
				Context:    aadContext,
			}); err != nil {
				return err
			}
			plaintext = response.Plaintext
		}

		fmt.Println(plaintext)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVarP(&aadContext, "context", "c", "", "Context string the ciphertext was bound to")
	decryptCmd.Flags().StringVar(&decryptFields.Ciphertext, "ciphertext", "", "Base64 ciphertext field of the envelope")
	decryptCmd.Flags().StringVar(&decryptFields.Salt, "salt", "", "Base64 salt field of the envelope")
	decryptCmd.Flags().StringVar(&decryptFields.Nonce, "nonce", "", "Base64 nonce field of the envelope")
	decryptCmd.Flags().BoolVarP(&local, "local", "l", false, "Run locally against the master key instead of a server")
}
