// Copyright (c) 2026 GenUI Labs. All rights reserved.

package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genui-labs/genui-server/internal/platform/mailer"
)

/*
TestBrevoClient_SendPasswordResetOTP verifies the request shape sent to the
provider: endpoint, auth header, sender identity, recipient, and that the
code appears in the HTML body.
*/
func TestBrevoClient_SendPasswordResetOTP(t *testing.T) {
	var captured struct {
		path    string
		apiKey  string
		payload map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		captured.path = request.URL.Path
		captured.apiKey = request.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(request.Body).Decode(&captured.payload))
		writer.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := mailer.NewBrevoClient("test-key", server.URL, "GenUI", "no-reply@genui.app")

	err := client.SendPasswordResetOTP(context.Background(), "user@example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "/v3/smtp/email", captured.path)
	assert.Equal(t, "test-key", captured.apiKey)

	sender, ok := captured.payload["sender"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GenUI", sender["name"])
	assert.Equal(t, "no-reply@genui.app", sender["email"])

	recipients, ok := captured.payload["to"].([]any)
	require.True(t, ok)
	require.Len(t, recipients, 1)
	assert.Equal(t, "user@example.com", recipients[0].(map[string]any)["email"])

	assert.Equal(t, "Password Reset OTP", captured.payload["subject"])
	assert.Contains(t, captured.payload["htmlContent"], "123456")
}

/*
TestBrevoClient_ProviderRejection verifies that a non-2xx provider response
surfaces as an error.
*/
func TestBrevoClient_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"message":"Key not found"}`))
	}))
	defer server.Close()

	client := mailer.NewBrevoClient("bad-key", server.URL, "GenUI", "no-reply@genui.app")

	err := client.SendPasswordResetOTP(context.Background(), "user@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

/*
TestBrevoClient_UnreachableProvider verifies that a connection failure
surfaces as an error rather than a silent success.
*/
func TestBrevoClient_UnreachableProvider(t *testing.T) {
	// Closed server: the port is released immediately.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := mailer.NewBrevoClient("test-key", server.URL, "GenUI", "no-reply@genui.app")

	err := client.SendPasswordResetOTP(context.Background(), "user@example.com", "123456")
	assert.Error(t, err)
}
