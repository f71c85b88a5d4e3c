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
package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

var b64enc = base64.StdEncoding.Strict()

// Envelope holds the three transport fields of an encrypted payload. Each
// field is independently base64 encoded (RFC 4648, standard alphabet,
// padded) so it survives JSON, environment variables and manifest files
// without further escaping.
//
// The compact text form is:
//
//	<version>.<salt>|<nonce>|<ciphertext>
//
// Where:
//
//	<version> is the envelope version - integer format, currently always 1
//	<salt> is the key derivation salt - base64 encoded - decoded length is 16 bytes
//	<nonce> is the cipher nonce - base64 encoded - decoded length is 12 bytes
//	<ciphertext> is the encrypted payload with the 16 byte authentication
//	             tag appended - base64 encoded - decoded length is arbitrary
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
}

// NewEnvelope base64 encodes the raw buffers into an Envelope.
func NewEnvelope(ciphertext, salt, nonce []byte) Envelope {
	return Envelope{
		Ciphertext: b64enc.EncodeToString(ciphertext),
		Salt:       b64enc.EncodeToString(salt),
		Nonce:      b64enc.EncodeToString(nonce),
	}
}

// IsZero - returns true if the Envelope is empty
func (e Envelope) IsZero() bool {
	return e.Ciphertext == "" && e.Salt == "" && e.Nonce == ""
}

// DecodeCiphertext decodes the ciphertext field. Failures name the field.
func (e Envelope) DecodeCiphertext() ([]byte, error) {
	return decodeField("ciphertext", e.Ciphertext)
}

// DecodeSalt decodes the salt field. Failures name the field.
func (e Envelope) DecodeSalt() ([]byte, error) {
	return decodeField("salt", e.Salt)
}

// DecodeNonce decodes the nonce field and enforces the 12 byte nonce
// precondition so no caller reaches the cipher with a malformed nonce.
func (e Envelope) DecodeNonce() ([]byte, error) {
	nonce, err := decodeField("nonce", e.Nonce)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, InvalidNonceLengthError{Length: len(nonce)}
	}
	return nonce, nil
}

// envelopeJSON keeps json encoding on the three field object form.
// Without it json.Marshal would pick up MarshalText and collapse the
// envelope into its compact string.
type envelopeJSON Envelope

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeJSON(e))
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, (*envelopeJSON)(e))
}

// String - compact single line form of the envelope
func (e Envelope) String() string {
	if e.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%s%s%s%s%s", EnvelopeVersion, e.Salt, SEPARATOR, e.Nonce, SEPARATOR, e.Ciphertext)
}

// MarshalText - convert an Envelope to its compact form
func (e Envelope) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e Envelope) Bytes() []byte {
	return []byte(e.String())
}

// UnmarshalText parses the compact form. Each part is validated as base64
// here so a malformed envelope is rejected with the offending field named;
// sizes are checked when the fields are decoded.
func (e *Envelope) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var (
		i       int
		err     error
		version int
	)

	if i = bytes.IndexByte(data, '.'); i < 0 {
		return MissingVersionError{Value: data}
	}

	if version, err = strconv.Atoi(string(data[:i])); err != nil {
		return InvalidVersionError{Value: data[:i]}
	}

	if version != EnvelopeVersion {
		return UnsupportedVersionError{Value: version}
	}

	parts := bytes.Split(data[(i+1):], []byte(SEPARATOR))
	if len(parts) != ENVELOPE_PARTS {
		return fmt.Errorf("envelope requires %d parts: %q", ENVELOPE_PARTS, data)
	}

	if _, err = decodeField("salt", string(parts[0])); err != nil {
		return err
	}
	if _, err = decodeField("nonce", string(parts[1])); err != nil {
		return err
	}
	if _, err = decodeField("ciphertext", string(parts[2])); err != nil {
		return err
	}

	e.Salt = string(parts[0])
	e.Nonce = string(parts[1])
	e.Ciphertext = string(parts[2])
	return nil
}

func decodeField(field, value string) ([]byte, error) {
	b, err := b64enc.DecodeString(value)
	if err != nil {
		return nil, InvalidBase64Error{Field: field, Err: err}
	}
	return b, nil
}
