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
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/config"
)

// listCmd represents the key list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List granted API keys",
	Long: `List the addresses and cidr blocks holding API keys on this server.
Only the derived comparison form of each key is stored, so the tokens
themselves cannot be recovered from this listing.

This is a server console operation and reads the server config file
directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			c   *config.Config = config.New()
			err error
		)

		if err = c.Load(config.ConfigModeServer); err != nil {
			return err
		}

		hosts := make([]string, 0, len(c.Server.ApiKeys))
		for host := range c.Server.ApiKeys {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Address", "Derived key"})
		for _, host := range hosts {
			t.AppendRow(table.Row{host, c.Server.ApiKeys[host]})
		}
		t.Render()
		return nil
	},
}

func init() {
	keyCmd.AddCommand(listCmd)
}
