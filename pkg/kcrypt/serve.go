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
package kcrypt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kservices/kcrypt/pkg/cache"
	"github.com/kservices/kcrypt/pkg/config"
	"github.com/kservices/kcrypt/pkg/crypto"
	"github.com/kservices/kcrypt/pkg/tools"
	"github.com/kservices/kcrypt/pkg/types"
)

const DefaultPort = 6278

// TokenContext is the AAD context used when a client proves possession
// of the master key by sending an encrypted registration token.
const TokenContext = "kcrypt/api-token"

type HttpServer struct {
	c *config.Config
}

func NewHttpServer() *HttpServer {
	return &HttpServer{
		c: config.New(),
	}
}

func (s *HttpServer) writeResponseError(w *http.ResponseWriter, message string, code int) (err error) {
	// There has to be a cleaner way of managing this...
	message = strings.ReplaceAll(message, `"`, ``)
	message = strings.ReplaceAll(message, `\`, ``)
	var b []byte
	if b, err = json.Marshal(map[string]string{
		"message": message,
	}); err != nil {
		return
	}

	(*w).WriteHeader(code)
	fmt.Fprint(*w, string(b))
	return
}

func (s *HttpServer) IsSecure() (secure bool) {
	return s.c.IsSecure()
}

// requestID tags every request with a unique id so concurrent operations
// can be traced through the logs without ever logging payloads.
func (s *HttpServer) requestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		if s.c.Server.Debug && !s.c.Server.Quiet {
			log.Printf("[%s] %s %s from %s\n", id, r.Method, r.URL.Path, r.RemoteAddr)
		}
		next(w, r)
	}
}

// authorize applies the whitelist and Bearer token checks shared by
// every operational endpoint.
func (s *HttpServer) authorize(w http.ResponseWriter, r *http.Request) bool {
	var (
		addr         string   = strings.Split(r.RemoteAddr, ":")[0]
		useWhitelist bool     = len(s.c.Server.Whitelist) != 0
		matched      bool     = !useWhitelist || tools.ContainsIp("127.0.0.0/24", addr)
		auth         []string = strings.Split(r.Header.Get("Authorization"), " ")
	)

	if addr == "" {
		_ = s.writeResponseError(&w, "kcrypt denied request - no ip address", http.StatusBadRequest)
		return false
	}

	if useWhitelist {
		for _, ip := range s.c.Server.Whitelist {
			if ip == addr || tools.ContainsIp(ip, addr) {
				matched = true
				break
			}
		}
	}

	if !matched {
		_ = s.writeResponseError(&w, "kcrypt denied request", http.StatusForbidden)
		return false
	}

	if len(auth) != 2 || auth[0] != "Bearer" || !s.c.CheckApiKey(addr, auth[1]) {
		_ = s.writeResponseError(&w, "kcrypt denied request - missing or invalid token", http.StatusUnauthorized)
		return false
	}
	return true
}

// statusFor maps pipeline errors onto HTTP status codes. Authentication
// failures keep a single undifferentiated message so the endpoint cannot
// be used as a decryption oracle.
func statusFor(err error) (int, string) {
	var (
		b64Err   types.InvalidBase64Error
		nonceErr types.InvalidNonceLengthError
		kdfErr   types.KeyDerivationError
	)
	switch {
	case errors.As(err, &b64Err), errors.As(err, &nonceErr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrInvalidUTF8):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrAuthenticationFailed):
		return http.StatusBadRequest, types.ErrAuthenticationFailed.Error()
	case errors.As(err, &kdfErr):
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *HttpServer) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		_ = s.writeResponseError(&w, "kcrypt denied encrypt request - invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r) {
		return
	}

	var (
		request   types.EncryptRequest
		masterKey []byte
		envelope  types.Envelope
		err       error
	)
	if err = json.NewDecoder(r.Body).Decode(&request); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("invalid request body: %q", err), http.StatusBadRequest)
		return
	}

	if masterKey, err = cache.Instance().MasterKey(); err != nil {
		_ = s.writeResponseError(&w, "an internal server error has occurred - please try again later", http.StatusInternalServerError)
		return
	}
	defer crypto.Zero(masterKey)

	if envelope, err = EncryptWithContext(request.Plaintext, string(masterKey), request.Context); err != nil {
		code, message := statusFor(err)
		_ = s.writeResponseError(&w, message, code)
		return
	}

	var b []byte
	if b, err = json.Marshal(envelope); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("error: %q", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(b))
}

func (s *HttpServer) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		_ = s.writeResponseError(&w, "kcrypt denied decrypt request - invalid method", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r) {
		return
	}

	var (
		request   types.DecryptRequest
		masterKey []byte
		plaintext string
		err       error
	)
	if err = json.NewDecoder(r.Body).Decode(&request); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("invalid request body: %q", err), http.StatusBadRequest)
		return
	}

	if masterKey, err = cache.Instance().MasterKey(); err != nil {
		_ = s.writeResponseError(&w, "an internal server error has occurred - please try again later", http.StatusInternalServerError)
		return
	}
	defer crypto.Zero(masterKey)

	if plaintext, err = DecryptWithContext(request.Ciphertext, request.Salt, request.Nonce,
		string(masterKey), request.Context); err != nil {
		code, message := statusFor(err)
		_ = s.writeResponseError(&w, message, code)
		return
	}

	var b []byte
	if b, err = json.Marshal(types.DecryptResponse{Plaintext: plaintext}); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("error: %q", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(b))
}

// params reports the fixed derivation and cipher parameters so clients
// can verify interoperability before submitting envelopes.
func (s *HttpServer) params(w http.ResponseWriter, r *http.Request) {
	var (
		b   []byte
		err error
	)
	if b, err = json.Marshal(types.DefaultParams()); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("error: %q", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", b)
}

// storeToken stores a token sent via POST in the Authorization header.
// The header carries an envelope encrypted under the server master key
// with TokenContext; being able to produce one proves the caller holds
// the master key, so a fresh API key is issued for the calling address.
func (s *HttpServer) storeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		_ = s.writeResponseError(&w, "kcrypt denied storetoken request - invalid method", http.StatusMethodNotAllowed)
		return
	}

	var (
		addr      string   = strings.Split(r.RemoteAddr, ":")[0]
		auth      []string = strings.Split(r.Header.Get("Authorization"), " ")
		envelope  types.Envelope
		masterKey []byte
		token     string
		err       error
	)

	if addr == "" {
		_ = s.writeResponseError(&w, "kcrypt denied storetoken request - no ip address", http.StatusBadRequest)
		return
	}

	if len(auth) != 2 || auth[0] != "Bearer" {
		_ = s.writeResponseError(&w, "kcrypt denied storetoken request - missing or invalid token", http.StatusUnauthorized)
		return
	}

	if err = envelope.UnmarshalText([]byte(auth[1])); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("kcrypt denied storetoken request from ip %s - %q", addr, err.Error()), http.StatusForbidden)
		return
	}

	if masterKey, err = cache.Instance().MasterKey(); err != nil {
		_ = s.writeResponseError(&w, "an internal server error has occurred - please try again later", http.StatusInternalServerError)
		return
	}
	defer crypto.Zero(masterKey)

	// Verify the sent token decrypts under the known master key
	if _, err = Open(envelope, string(masterKey), TokenContext); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("kcrypt denied storetoken request from ip %s - %q", addr, err.Error()), http.StatusForbidden)
		return
	}

	if token, err = s.c.AddApiKey(addr); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("kcrypt denied storetoken request from ip %s - %q", addr, err.Error()), http.StatusInternalServerError)
		return
	}

	var b []byte
	if b, err = json.Marshal(struct {
		Token string `json:"token"`
	}{
		Token: token,
	}); err != nil {
		_ = s.writeResponseError(&w, fmt.Sprintf("kcrypt denied storetoken request from ip %s - %q", addr, err.Error()), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(b))
}

// reload the config file
func (s *HttpServer) reload(w http.ResponseWriter, r *http.Request) {
	if err := s.c.Load(config.ConfigModeServer); err != nil {
		log.Printf("error: invalid config file %q", err)
		err = s.writeResponseError(&w, "an internal server error has occurred - please try again later", http.StatusInternalServerError)
		if err != nil {
			log.Printf("error: %q", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe starts the HTTP server and listens for requests
func (s *HttpServer) ListenAndServe(cmdConfig types.ServeCmd) (err error) {
	var (
		listener net.Listener
		server   *http.ServeMux
	)

	if err := s.c.Load(config.ConfigModeServer); err != nil {
		log.Fatalf("Invalid config file: %q", err)
	}
	s.c.MergeServerConfig(cmdConfig)

	if !cache.Instance().IsSet() {
		var masterKey []byte
		if masterKey, err = tools.GetMasterKey(true); err != nil {
			return err
		}
		if err = cache.Instance().Set(masterKey); err != nil {
			return err
		}
	}

	server = http.NewServeMux()
	server.HandleFunc("/api/v1/params", s.requestID(s.params))
	server.HandleFunc("/api/v1/reload", s.requestID(s.reload))
	server.HandleFunc("/api/v1/storetoken", s.requestID(s.storeToken))
	server.HandleFunc("/api/v1/encrypt", s.requestID(s.handleEncrypt))
	server.HandleFunc("/api/v1/decrypt", s.requestID(s.handleDecrypt))

	if s.c.Server.Port == 0 {
		s.c.Server.Port = DefaultPort
		if err = s.c.Save(); err != nil {
			log.Fatal(err)
		}
	}

	if listener, err = net.Listen("tcp4", fmt.Sprintf(":%d", s.c.Server.Port)); err != nil {
		log.Fatal(err)
	}

	if !s.IsSecure() && len(s.c.Server.Whitelist) == 0 {
		return fmt.Errorf("Cowardly - refusing to start unsecure crypto server without a whitelist")
	}

	if s.c.IsSecure() {
		log.Printf("Listening for secure connections on :%d (whitelist %+v)\n", s.c.Server.Port, s.c.Server.Whitelist)
		err = http.ServeTLS(listener, server, s.c.Server.Cert, s.c.Server.Key)
		return
	}

	log.Printf("Listening for unsecured connections on :%d (whitelist %+v)\n", s.c.Server.Port, s.c.Server.Whitelist)
	err = http.Serve(listener, server)
	return err
}
