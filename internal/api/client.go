// Package api talks to the Daily Schedule Tracker backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// TokenSource supplies the bearer token for each request. An empty token
// fails the request with ErrUnauthorized before it leaves the process.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	authed  *http.Client
	anon    *http.Client
	logger  *log.Logger
}

// New builds a client for baseURL. logger may be nil.
func New(baseURL string, tokens TokenSource, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authed: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: bearer{tokens},
				Base:   http.DefaultTransport,
			},
		},
		anon:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type bearer struct {
	tokens TokenSource
}

func (b bearer) Token() (*oauth2.Token, error) {
	t := b.tokens.Token()
	if t == "" {
		return nil, ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: t, TokenType: "Bearer"}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.authed, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Printf("ERROR: %s %s request=%s: %v", method, path, requestID, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Printf("INFO: %s %s -> %d in %s request=%s",
		method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
