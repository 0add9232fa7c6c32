package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/udhaar-app/udhaar/internal/storage"
)

// PushNotifier delivers notifications through an HTTP push gateway. It looks
// up the user's registered device token and posts a message; users without a
// token are skipped.
type PushNotifier struct {
	store    storage.Store
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewPushNotifier creates a PushNotifier for the given gateway endpoint.
func NewPushNotifier(store storage.Store, endpoint, apiKey string) *PushNotifier {
	return &PushNotifier{
		store:    store,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type pushMessage struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notify posts the notification to the gateway.
func (n *PushNotifier) Notify(ctx context.Context, userID, title, body string) error {
	user, err := n.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.NotificationToken == "" {
		return nil
	}

	payload, err := json.Marshal(pushMessage{
		Token: user.NotificationToken,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %s", resp.Status)
	}
	return nil
}
