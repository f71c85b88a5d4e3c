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

	"github.com/kservices/kcrypt/pkg/kcrypt"
	"github.com/kservices/kcrypt/pkg/types"
)

var serve types.ServeCmd = types.ServeCmd{}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the encryption API server",
	Long: `The serve command starts an HTTP server offering context bound
	encryption and decryption over a JSON API. The master key is read once
	at startup from the environment or the system keychain and held in
	locked memory for the lifetime of the process.

	The server can be configured to only respond to requests from a whitelist
	of IP addresses. The whitelist can be specified as a comma-separated list
	of IP addresses or CIDR blocks using the --whitelist flag.

	The server can be configured to use TLS. The certificate and key are
	specified using the --cert and --key flags. If no certificate or key is
	specified, the server will use HTTP instead of HTTPS. An unsecured
	server refuses to start without a whitelist.

	The server can be configured to listen on a specific port using the --port
	flag. If no port is specified, the server will listen on port 6278.

	If no flags are specified, the server will look for a configuration file
	at ~/.config/kcrypt/server.yaml.`,

	Run: func(cmd *cobra.Command, args []string) {
		server := kcrypt.NewHttpServer()
		if err := server.ListenAndServe(serve); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringSliceVarP(&serve.Whitelist, "whitelist", "w", []string{}, "Comma-separated list of IP addresses or CIDR blocks to whitelist")
	serveCmd.Flags().StringVarP(&serve.Cert, "cert", "c", "", "Path to TLS certificate")
	serveCmd.Flags().StringVarP(&serve.Key, "key", "K", "", "Path to TLS key")
	serveCmd.Flags().IntVarP(&serve.Port, "port", "p", 0, "Port to listen on")
	serveCmd.Flags().BoolVarP(&serve.Debug, "debug", "d", false, "Enable debug logging")
	serveCmd.Flags().BoolVarP(&serve.Quiet, "quiet", "q", false, "Disable all logging")
}
