package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/harvest/internal/collection"
)

// HTTPSender posts messages to a JSON gateway for one channel.
type HTTPSender struct {
	channel collection.Channel
	url     string
	token   string
	region  string
	client  *http.Client
}

func NewHTTPSender(channel collection.Channel, url, token, region string) *HTTPSender {
	return &HTTPSender{
		channel: channel,
		url:     url,
		token:   token,
		region:  region,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type gatewayRequest struct {
	Channel     collection.Channel `json:"channel"`
	To          string             `json:"to"`
	Subject     string             `json:"subject,omitempty"`
	Body        string             `json:"body"`
	Priority    string             `json:"priority"`
	RequiresAck bool               `json:"requires_ack"`
	Reference   string             `json:"reference"`
}

type gatewayResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *HTTPSender) Send(ctx context.Context, t collection.Target, msg collection.Message) (collection.Outcome, error) {
	to, ok := t.Contact.Address(s.channel)
	if !ok {
		return collection.Outcome{Status: collection.AttemptSkipped}, fmt.Errorf("%w %s", collection.ErrNoAddress, s.channel)
	}

	if s.channel == collection.ChannelSMS || s.channel == collection.ChannelVoice {
		normalized, err := NormalizePhone(to, s.region)
		if err != nil {
			return collection.Outcome{Status: collection.AttemptFailed}, err
		}

		to = normalized
	}

	payload, err := json.Marshal(gatewayRequest{
		Channel:     s.channel,
		To:          to,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Priority:    string(msg.Priority),
		RequiresAck: msg.RequiresAck,
		Reference:   t.ContractNumber,
	})
	if err != nil {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return collection.Outcome{Status: collection.AttemptFailed},
			fmt.Errorf("unexpected status code %d from %s gateway: %s", resp.StatusCode, s.channel, strings.TrimSpace(string(body)))
	}

	var gr gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil && err != io.EOF {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("decoding gateway response: %w", err)
	}

	status := collection.AttemptSent
	if strings.EqualFold(gr.Status, "delivered") {
		status = collection.AttemptDelivered
	}

	return collection.Outcome{Status: status, MessageID: gr.ID}, nil
}
