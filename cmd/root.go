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

	"github.com/kservices/kcrypt/pkg/config"
	"github.com/kservices/kcrypt/pkg/kcrypt"
	"github.com/kservices/kcrypt/pkg/transport"
	"github.com/kservices/kcrypt/pkg/types"
)

var clientCmd types.ClientCmd = types.ClientCmd{}

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kcrypt",
	Short: "Context bound encryption service",
	Long: `
Context bound encryption service

kcrypt seals plaintext under a key derived from a master key and binds
every ciphertext to a caller supplied context string. A ciphertext can
only be opened with the same master key and the same context.

Encrypt and decrypt operations run either locally against a master key
held in the environment or system keychain, or remotely against a kcrypt
server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fatal("Error: %s", err)
	}
}

func init() {
	// These are conistent across all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/kcrypt/client.yaml)")
	rootCmd.PersistentFlags().StringVar(&clientCmd.Server, "server", "", "address of the server")
	rootCmd.PersistentFlags().IntVar(&clientCmd.Port, "port", 0, "port of the server")
	rootCmd.PersistentFlags().BoolVar(&clientCmd.SkipVerify, "skip-verify", false, "skip verification of the server certificate")
	rootCmd.PersistentFlags().BoolVar(&clientCmd.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&clientCmd.Quiet, "quiet", false, "disable all logging")
	rootCmd.PersistentFlags().StringVarP(&clientCmd.Token, "token", "t", "", "Token for accessing the server")
	rootCmd.PersistentFlags().StringVarP(&clientCmd.Output, "output", "o", "json", "Output format. One of json, text or k8s")
}

func loadClientConfig() (err error) {
	c := config.New()
	if err = c.Load(config.ConfigModeClient); err != nil {
		return err
	}
	c.MergeClientConfig(clientCmd)

	clientCmd.Token = c.Token
	clientCmd.Server = c.Address
	if c.Address == "" {
		clientCmd.Server = "localhost"
	}

	clientCmd.Port = c.Port
	if c.Port == 0 {
		clientCmd.Port = kcrypt.DefaultPort
	}

	if clientCmd.SkipVerify {
		transport.SkipVerify()
	}

	return
}
