// Command send-test-event signs and posts a sample identity event to a
// running server. Useful for exercising the webhook gateway locally without
// a real identity provider.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pixmint/pixmint/internal/identity"
)

func main() {
	var (
		baseURL    = flag.String("base-url", envOrDefault("PIXMINT_BASE_URL", "http://localhost:8080"), "Server base URL")
		secret     = flag.String("secret", os.Getenv("IDENTITY_WEBHOOK_SECRET"), "Webhook signing secret")
		eventType  = flag.String("type", "created", "Event type: created, updated, or deleted")
		externalID = flag.String("external-id", "", "External user id (generated if empty)")
		email      = flag.String("email", "test@example.com", "Email address carried by the event")
	)
	flag.Parse()

	extID := *externalID
	if extID == "" {
		extID = "user_" + ulid.Make().String()
	}

	payload := map[string]any{
		"type": *eventType,
		"data": map[string]any{
			"id": extID,
			"email_addresses": []map[string]string{
				{"email_address": *email},
			},
			"first_name": "Test",
			"last_name":  "Event",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+"/api/v1/webhooks/identity", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.DeliveryIDHeader, "dlv_"+ulid.Make().String())
	if *secret != "" {
		req.Header.Set(identity.SignatureHeader, identity.NewVerifier(*secret).Sign(body, time.Now()))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s\n%s\n", resp.Status, extID, out)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
