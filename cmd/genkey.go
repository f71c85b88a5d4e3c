//go:build !windows
// +build !windows

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
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/transport"
)

// genkeyCmd represents the genkey command
var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate an API key",
	Long: `All calls to the API must be made with a known token. This command
	requests a new token from the server and prints it for use in scripts.

	During key generation, you will be prompted for the master key. The
	master key is used to seal a proof that is sent to the server; the key
	itself never leaves this machine. A server holding the same master key
	can open the proof and will answer with a fresh token bound to the
	address this request is made from.

	You can generate a new key at any time. If you do, the old key remains
	valid until it is revoked with 'kcrypt key revoke'.

	The function will attempt to use GPG Pinentry if available, otherwise
	falls back to reading from stdin.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			password string
			proof    string
			err      error
		)

		type message struct {
			Token string `json:"token"`
		}

		if password, err = getPassword(); err != nil {
			fatal("invalid password %q", err)
			return
		}

		if proof, err = sealProof(password); err != nil {
			fatal("unable to seal registration proof: %q", err)
			return
		}

		if err = loadClientConfig(); err != nil {
			fatal("unable to load client config: %q", err)
			return
		}

		// Send to server
		var (
			req          *http.Request
			ctx          context.Context = context.Background()
			localAddress string          = fmt.Sprintf("https://%s:%d", clientCmd.Server, clientCmd.Port)
		)

		ctx = context.WithValue(ctx, transport.AuthToken{}, proof)
		if req, err = http.NewRequest("POST", localAddress+"/api/v1/storetoken", nil); err != nil {
			fatal("unable to create request for %s: %q", localAddress, err)
			return
		}

		var r message
		if err = transport.DefaultHttpClient.DoWithBackoff(ctx, req, &r); err != nil {
			fatal("unable to send request for %s: %q", localAddress, err)
			return
		}

		if r.Token == "" {
			fatal("server did not issue a token")
			return
		}
		log.Printf("%s\n", r.Token)
	},
}

func init() {
	keyCmd.AddCommand(genkeyCmd)
}
