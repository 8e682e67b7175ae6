package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Expo accepts at most this many messages per request.
const expoBatchSize = 100

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// expoPusher sends push notifications through the Expo push API.
type expoPusher struct {
	http        *http.Client
	endpoint    string
	accessToken string
}

// NewExpoPusher creates a Pusher posting to the given Expo-compatible endpoint.
func NewExpoPusher(endpoint, accessToken string, timeout time.Duration) Pusher {
	return &expoPusher{
		http:        &http.Client{Timeout: timeout},
		endpoint:    endpoint,
		accessToken: accessToken,
	}
}

// Push sends one message per token, batched. Every batch is attempted and
// the failures are returned together.
func (p *expoPusher) Push(ctx context.Context, msg PushMessage) error {
	var errs []error
	for start := 0; start < len(msg.Tokens); start += expoBatchSize {
		end := min(start+expoBatchSize, len(msg.Tokens))

		batch := make([]expoMessage, 0, end-start)
		for _, token := range msg.Tokens[start:end] {
			batch = append(batch, expoMessage{
				To:    token,
				Title: msg.Title,
				Body:  msg.Body,
				Data:  msg.Data,
				Sound: "default",
			})
		}

		if err := p.send(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *expoPusher) send(ctx context.Context, batch []expoMessage) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	res, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("push gateway error: %s: %s", res.Status, bytes.TrimSpace(msg))
	}

	var out expoResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode push response: %w", err)
	}
	var rejected []error
	for i, ticket := range out.Data {
		if ticket.Status == "error" && i < len(batch) {
			rejected = append(rejected, fmt.Errorf("push to %s rejected: %s", batch[i].To, ticket.Message))
		}
	}
	return errors.Join(rejected...)
}
