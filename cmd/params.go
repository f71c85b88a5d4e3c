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

	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/transport"
	"github.com/kservices/kcrypt/pkg/types"
)

// paramsCmd represents the params command
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show the derivation and cipher parameters of a server",
	Long: `Fetch the key derivation and cipher parameters a kcrypt server is
	running with. Envelopes only interoperate between servers running the
	same parameters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			params types.Params
			err    error
		)

		if err = loadClientConfig(); err != nil {
			return err
		}

		var address string = fmt.Sprintf("https://%s:%d/api/v1/params", clientCmd.Server, clientCmd.Port)
		if err = transport.DefaultHttpClient.Get(context.Background(), address, &params); err != nil {
			return err
		}

		var b []byte
		if b, err = prettyjson.Marshal(params); err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
