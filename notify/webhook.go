package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	webhookColor  = 0x2ecc71
	webhookFooter = "smabot | SMA crossover"
	webhookMaxLen = 4096 // discord embed description limit
)

// Webhook posts messages as a Discord embed. An empty URL disables it.
type Webhook struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

func (w *Webhook) Enabled() bool { return w.url != "" }

func (w *Webhook) Send(ctx context.Context, m Message) error {
	if !w.Enabled() {
		return nil
	}

	desc := m.Body
	if len(desc) > webhookMaxLen {
		desc = desc[:webhookMaxLen-3] + "..."
	}
	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{
			{
				"title":       m.Subject,
				"description": "```\n" + desc + "```",
				"color":       webhookColor,
				"footer":      map[string]string{"text": webhookFooter},
				"timestamp":   w.now().UTC().Format(time.RFC3339),
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status: %d", resp.StatusCode)
	}
	return nil
}
