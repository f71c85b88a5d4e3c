package cmd

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kservices/kcrypt/pkg/types"
)

// captureStdout runs f with os.Stdout redirected to a pipe and returns
// everything written.
func captureStdout(t *testing.T, f func() error) string {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() {
		os.Stdout = old
	}()

	if err = f(); err != nil {
		w.Close()
		t.Fatal(err)
	}
	w.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestEncryptDecryptLocalRoundTrip(t *testing.T) {
	t.Setenv("KCRYPT_MASTER_KEY", "cmd-test-master-key-0123456789abc")

	local = true
	aadContext = "db/primary"
	clientCmd.Output = "text"
	defer func() {
		local = false
		aadContext = ""
		clientCmd.Output = "json"
	}()

	compact := strings.TrimSpace(captureStdout(t, func() error {
		return encryptCmd.RunE(encryptCmd, []string{"service credential"})
	}))

	var envelope types.Envelope
	if err := envelope.UnmarshalText([]byte(compact)); err != nil {
		t.Fatalf("Expected a parseable envelope, got %q: %v", compact, err)
	}

	plaintext := strings.TrimSpace(captureStdout(t, func() error {
		return decryptCmd.RunE(decryptCmd, []string{compact})
	}))
	if plaintext != "service credential" {
		t.Errorf("Expected plaintext %q, got %q", "service credential", plaintext)
	}
}

func TestDecryptLocalWrongContext(t *testing.T) {
	t.Setenv("KCRYPT_MASTER_KEY", "cmd-test-master-key-0123456789abc")

	local = true
	aadContext = "db/primary"
	clientCmd.Output = "text"
	defer func() {
		local = false
		aadContext = ""
		clientCmd.Output = "json"
	}()

	compact := strings.TrimSpace(captureStdout(t, func() error {
		return encryptCmd.RunE(encryptCmd, []string{"secret"})
	}))

	aadContext = "db/replica"
	err := decryptCmd.RunE(decryptCmd, []string{compact})
	if err == nil || err.Error() != "authentication failed" {
		t.Errorf("Expected authentication failed, got %v", err)
	}
}

func TestDecryptLocalFromFields(t *testing.T) {
	t.Setenv("KCRYPT_MASTER_KEY", "cmd-test-master-key-0123456789abc")

	local = true
	aadContext = "db/primary"
	defer func() {
		local = false
		aadContext = ""
		decryptFields = types.DecryptRequest{}
	}()

	compact := strings.TrimSpace(captureStdout(t, func() error {
		clientCmd.Output = "text"
		return encryptCmd.RunE(encryptCmd, []string{"split fields"})
	}))

	var envelope types.Envelope
	if err := envelope.UnmarshalText([]byte(compact)); err != nil {
		t.Fatal(err)
	}

	decryptFields = types.DecryptRequest{
		Ciphertext: envelope.Ciphertext,
		Salt:       envelope.Salt,
		Nonce:      envelope.Nonce,
	}
	plaintext := strings.TrimSpace(captureStdout(t, func() error {
		return decryptCmd.RunE(decryptCmd, []string{})
	}))
	if plaintext != "split fields" {
		t.Errorf("Expected plaintext %q, got %q", "split fields", plaintext)
	}
}

func TestFormatEnvelope(t *testing.T) {
	envelope := types.Envelope{
		Ciphertext: "Y2lwaGVydGV4dA==",
		Salt:       "c2FsdHNhbHRzYWx0c2FsdA==",
		Nonce:      "bm9uY2Vub25jZQ==",
	}

	t.Run("text", func(t *testing.T) {
		out, err := formatEnvelope(envelope, "ctx", "", "text")
		if err != nil {
			t.Fatal(err)
		}
		if out != envelope.String() {
			t.Errorf("Expected %q, got %q", envelope.String(), out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := formatEnvelope(envelope, "ctx", "", "json")
		if err != nil {
			t.Fatal(err)
		}
		for _, field := range []string{envelope.Ciphertext, envelope.Salt, envelope.Nonce} {
			if !strings.Contains(out, field) {
				t.Errorf("Expected output to contain %q: %s", field, out)
			}
		}
	})

	t.Run("k8s", func(t *testing.T) {
		out, err := formatEnvelope(envelope, "db/primary", "db-credential", "k8s")
		if err != nil {
			t.Fatal(err)
		}
		for _, expected := range []string{
			"kind: Secret",
			"name: db-credential",
			"kcrypt.kservices.io/context: db/primary",
			envelope.Ciphertext,
		} {
			if !strings.Contains(out, expected) {
				t.Errorf("Expected manifest to contain %q:\n%s", expected, out)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := formatEnvelope(envelope, "ctx", "", "xml"); err == nil {
			t.Error("Expected an error for an unknown format")
		}
	})
}
