package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// AuthToken is the context key under which a bearer token travels to Do.
type AuthToken struct{}

func (c *client) Post(ctx context.Context, urlstr string, recv, send any) error {
	var (
		request *http.Request
		err     error
		buffer  *bytes.Buffer
	)

	buffer = new(bytes.Buffer)
	if err := json.NewEncoder(buffer).Encode(send); err != nil {
		return err
	}

	request, err = http.NewRequest("POST", urlstr, buffer)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	return c.DoWithBackoff(ctx, request, recv)
}

func (c *client) Get(ctx context.Context, urlstr string, recv interface{}) error {
	req, err := http.NewRequest("GET", urlstr, nil)
	if err != nil {
		return err
	}
	return c.DoWithBackoff(ctx, req, recv)
}

func (c *client) DoWithBackoff(ctx context.Context, req *http.Request, recv interface{}) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.RandomizationFactor = 0.1
	exp.Multiplier = 2.0
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = 15 * time.Minute

	exp.Reset()
	f := func() error {
		return c.Do(ctx, req, recv)
	}

	notify := func(err error, d time.Duration) {
		fmt.Fprintf(os.Stderr, "Retrying in %s after error: %v\n", d, err)
	}

	return backoff.RetryNotifyWithTimer(f, exp, notify, nil)
}

func (c *client) Do(ctx context.Context, req *http.Request, recv any) error {
	if token, ok := ctx.Value(AuthToken{}).(string); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var (
		response *http.Response
		err      error
		body     []byte
	)
	if response, err = c.Client.Do(req); err != nil {
		return err
	}

	defer response.Body.Close()
	if body, err = io.ReadAll(response.Body); err != nil {
		return err
	}

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil
	// Hard failures. The server will answer the retry identically so
	// give up straight away.
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return backoff.Permanent(&ErrStatusCode{response.StatusCode, body})
	default:
		return &ErrStatusCode{response.StatusCode, body}
	}

	return json.Unmarshal(body, recv)
}
