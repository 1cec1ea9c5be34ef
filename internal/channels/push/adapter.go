// Package push publishes notifications to an ntfy-compatible server.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

const maxErrorBody = 512

type Adapter struct {
	server string
	token  string
	client *http.Client
}

// NewAdapter returns a push adapter. An empty server leaves it unconfigured;
// a nil client gets a default with a 30 second timeout.
func NewAdapter(server, token string, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{
		server: strings.TrimRight(strings.TrimSpace(server), "/"),
		token:  strings.TrimSpace(token),
		client: client,
	}
}

func (a *Adapter) Configured() bool {
	return a != nil && a.server != ""
}

type publishResponse struct {
	ID string `json:"id"`
}

func (a *Adapter) Publish(ctx context.Context, topic string, msg domain.FormattedMessage) domain.ChannelResult {
	if !a.Configured() {
		return domain.NotConfigured(domain.ChannelPush)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.NoRecipient(domain.ChannelPush, "", "no push topic")
	}

	endpoint := a.server + "/" + url.PathEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(msg.FullBody))
	if err != nil {
		return domain.FromError(domain.ChannelPush, topic, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Title", msg.Title)
	req.Header.Set("Priority", strconv.Itoa(clampPriority(msg.Priority)))
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.FromError(domain.ChannelPush, topic, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		if text == "" {
			text = resp.Status
		}
		return domain.FromError(domain.ChannelPush, topic, fmt.Errorf("push server returned %d: %s", resp.StatusCode, text))
	}

	var out publishResponse
	_ = json.Unmarshal(body, &out)
	return domain.Delivered(domain.ChannelPush, topic, out.ID)
}

func clampPriority(p int) int {
	switch {
	case p < domain.PriorityMin:
		return domain.PriorityDefault
	case p > domain.PriorityUrgent:
		return domain.PriorityUrgent
	}
	return p
}
