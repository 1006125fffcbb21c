//go:build e2e

// Package e2e smoke-tests a running server end to end. Requires a live
// instance; point PIXMINT_BASE_URL at it and set IDENTITY_WEBHOOK_SECRET to
// match its configuration when signatures are enabled.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pixmint/pixmint/internal/identity"
)

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	CreditBalance int64  `json:"creditBalance"`
}

type userListResponse struct {
	Data []userResponse `json:"data"`
}

type eventAckResponse struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("PIXMINT_BASE_URL", "http://localhost:8080")

	user := createUser(t, baseURL)
	assertListed(t, baseURL, user.ID)

	updated := updateCreditBalance(t, baseURL, user.ID, 10)
	if updated.CreditBalance != 10 {
		t.Fatalf("expected credit balance 10, got %d", updated.CreditBalance)
	}
	if updated.Email != user.Email {
		t.Fatalf("partial update changed email: %q", updated.Email)
	}

	deleteUser(t, baseURL, user.ID, http.StatusOK)
	deleteUser(t, baseURL, user.ID, http.StatusNotFound)

	eventUser := deliverCreatedEvent(t, baseURL)
	deleteUser(t, baseURL, eventUser.ID, http.StatusOK)
}

func createUser(t *testing.T, baseURL string) userResponse {
	t.Helper()

	email := fmt.Sprintf("e2e-%s@example.com", ulid.Make().String())
	body, _ := json.Marshal(map[string]any{
		"email":     email,
		"firstName": "E2E",
		"lastName":  "Smoke",
	})

	resp := doRequest(t, http.MethodPost, baseURL+"/api/v1/users", body, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return user
}

func assertListed(t *testing.T, baseURL, id string) {
	t.Helper()

	resp := doRequest(t, http.MethodGet, baseURL+"/api/v1/users", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list users: expected 200, got %d", resp.StatusCode)
	}

	var list userListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	for _, u := range list.Data {
		if u.ID == id {
			return
		}
	}
	t.Fatalf("user %s missing from listing", id)
}

func updateCreditBalance(t *testing.T, baseURL, id string, balance int64) userResponse {
	t.Helper()

	body, _ := json.Marshal(map[string]any{"creditBalance": balance})
	resp := doRequest(t, http.MethodPut, baseURL+"/api/v1/users?id="+id, body, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update user: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	return user
}

func deleteUser(t *testing.T, baseURL, id string, wantStatus int) {
	t.Helper()

	resp := doRequest(t, http.MethodDelete, baseURL+"/api/v1/users?id="+id, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("delete user: expected %d, got %d", wantStatus, resp.StatusCode)
	}
}

func deliverCreatedEvent(t *testing.T, baseURL string) userResponse {
	t.Helper()

	extID := "user_" + ulid.Make().String()
	body, _ := json.Marshal(map[string]any{
		"type": "created",
		"data": map[string]any{
			"id": extID,
			"email_addresses": []map[string]string{
				{"email_address": fmt.Sprintf("event-%s@example.com", ulid.Make().String())},
			},
			"first_name": "Event",
		},
	})

	headers := map[string]string{
		identity.DeliveryIDHeader: "dlv_" + ulid.Make().String(),
	}
	if secret := os.Getenv("IDENTITY_WEBHOOK_SECRET"); secret != "" {
		headers[identity.SignatureHeader] = identity.NewVerifier(secret).Sign(body, time.Now())
	}

	resp := doRequest(t, http.MethodPost, baseURL+"/api/v1/webhooks/identity", body, headers)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deliver event: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var ack eventAckResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode event ack: %v", err)
	}
	if ack.User == nil {
		t.Fatal("expected the reconciled user in the ack")
	}
	return *ack.User
}

func doRequest(t *testing.T, method, url string, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, _ := io.ReadAll(resp.Body)
	return string(raw)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
