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
	"github.com/spf13/cobra"
)

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Key operations",
	Long: `The key command allows you to manage the API keys granted for use on
	this server. You can generate a new key, list the current keys, or revoke an
	existing key.

	The list and revoke commands only work from the server console. They will
	not work from a remote client.`,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}
