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
	"log"

	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/cache"
	"github.com/kservices/kcrypt/pkg/config"
	"github.com/kservices/kcrypt/pkg/tools"
)

// revokeCmd represents the revoke command
var revokeCmd = &cobra.Command{
	Use:   "revoke <token or address>",
	Short: "Revoke the token for a given address or cidr block",
	Long: `This command revokes an API key from the server configuration.
The key can be named either by the token itself or by the address or cidr
block it was granted to.

Revocation is a server console operation. It edits the server config file
directly; run 'kcrypt serve' reload or wait for the next request cycle for
the change to take effect on a running server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			c           *config.Config = config.New()
			masterKey   []byte
			revokedHost string
			err         error
		)

		if err = c.Load(config.ConfigModeServer); err != nil {
			return err
		}

		if !cache.Instance().IsSet() {
			if masterKey, err = tools.GetMasterKey(true); err != nil {
				return err
			}
			if err = cache.Instance().Set(masterKey); err != nil {
				return err
			}
		}

		if revokedHost, err = c.RevokeApiKey(args[0]); err != nil {
			return err
		}

		if revokedHost == "" {
			log.Printf("No API key matched %q", args[0])
			return nil
		}
		log.Printf("Token revoked for address %s", revokedHost)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(revokeCmd)
}
