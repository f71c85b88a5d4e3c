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
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kservices/kcrypt/pkg/config"
)

// whitelistCmd represents the whitelist command
var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Handle whitelisted IP addresses",
	Long: `Whitelisted IP addresses protect the master key by denying access
	to the API from any IP address not on the whitelist. You can add or remove
	IP addresses from the whitelist using this command. You can also list the
	currently whitelisted IP addresses.

	These are server console operations and edit the server config file
	directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func validWhitelistEntry(entry string) error {
	if strings.Contains(entry, "/") {
		if _, _, err := net.ParseCIDR(entry); err != nil {
			return fmt.Errorf("invalid cidr block %q", entry)
		}
		return nil
	}
	if net.ParseIP(entry) == nil {
		return fmt.Errorf("invalid ip address %q", entry)
	}
	return nil
}

var addCommand = &cobra.Command{
	Use:   "add <address>",
	Short: "Add an IP address to the whitelist",
	Long: `Add an IP address or CIDR block to the whitelist. When a CIDR block
	is given, all addresses in the block are admitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validWhitelistEntry(args[0]); err != nil {
			return err
		}

		c := config.New()
		if err := c.Load(config.ConfigModeServer); err != nil {
			return err
		}

		for _, entry := range c.Server.Whitelist {
			if entry == args[0] {
				return nil
			}
		}
		c.Server.Whitelist = append(c.Server.Whitelist, args[0])
		return c.Save()
	},
}

var removeCommand = &cobra.Command{
	Use:   "remove <address>",
	Short: "Remove an IP address from the whitelist",
	Long: `Remove an IP address or CIDR block from the whitelist. The entry
	must match exactly as listed; members of a block cannot be removed
	individually.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()
		if err := c.Load(config.ConfigModeServer); err != nil {
			return err
		}

		entries := make([]string, 0, len(c.Server.Whitelist))
		for _, entry := range c.Server.Whitelist {
			if entry != args[0] {
				entries = append(entries, entry)
			}
		}
		c.Server.Whitelist = entries
		return c.Save()
	},
}

var listWhitelistCommand = &cobra.Command{
	Use:   "list",
	Short: "List the currently whitelisted IP addresses",
	Long: `List the currently whitelisted IP addresses. The list will be printed
	to stdout in CIDR notation, one address per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()
		if err := c.Load(config.ConfigModeServer); err != nil {
			return err
		}
		for _, entry := range c.Server.Whitelist {
			fmt.Println(entry)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whitelistCmd)
	whitelistCmd.AddCommand(addCommand)
	whitelistCmd.AddCommand(removeCommand)
	whitelistCmd.AddCommand(listWhitelistCommand)
}
