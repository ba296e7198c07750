// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package mailer delivers transactional email through the Brevo HTTP API.

It owns the only outbound email path in the system: one-time password
delivery for the forgot-password flow. Delivery is synchronous and never
retried here; callers decide how a failure surfaces to the client.

# Security

Provider responses (status codes, body) are wrapped into an opaque error and
logged server-side only. Handlers must not forward them to clients.
*/
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// smtpEmailPath is the Brevo v3 transactional email endpoint.
const smtpEmailPath = "/v3/smtp/email"

// requestTimeout bounds a single delivery attempt.
const requestTimeout = 10 * time.Second

// BrevoClient sends transactional email via the Brevo (ex-Sendinblue) REST API.
type BrevoClient struct {
	apiKey      string
	baseURL     string
	senderName  string
	senderEmail string
	httpClient  *http.Client
}

// NewBrevoClient constructs a client for the given API key and sender identity.
//
// baseURL normally stays at the production endpoint; tests point it at a
// local httptest server.
func NewBrevoClient(apiKey, baseURL, senderName, senderEmail string) *BrevoClient {
	return &BrevoClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		senderName:  senderName,
		senderEmail: senderEmail,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

// # Wire Types

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmailRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// # Delivery

// SendPasswordResetOTP emails the one-time code to the given address.
//
// A non-2xx provider response is an error; the body is captured for logs
// but the returned error carries no recipient-visible provider detail.
func (client *BrevoClient) SendPasswordResetOTP(ctx context.Context, toEmail, code string) error {
	payload := brevoEmailRequest{
		Sender:      brevoParty{Name: client.senderName, Email: client.senderEmail},
		To:          []brevoParty{{Email: toEmail}},
		Subject:     "Password Reset OTP",
		HTMLContent: fmt.Sprintf("<p>Your OTP is <strong>%s</strong>. It is valid for 10 minutes.</p>", code),
	}

	return client.send(ctx, payload)
}

// send posts a transactional email request to Brevo.
func (client *BrevoClient) send(ctx context.Context, payload brevoEmailRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailer: failed to encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+smtpEmailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: failed to build request: %w", err)
	}
	request.Header.Set("api-key", client.apiKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mailer: delivery request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		// Keep the provider body in the error for server-side logs only.
		providerBody, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("mailer: provider returned %d: %s", response.StatusCode, providerBody)
	}

	return nil
}
