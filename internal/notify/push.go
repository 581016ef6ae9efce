package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/MrJamesThe3rd/harvest/internal/collection"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PushSender hands push notifications to the mobile push fan-out over Kafka.
type PushSender struct {
	writer messageWriter
	topic  string
}

func NewPushSender(brokers []string, topic string) (*PushSender, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("push sender requires at least one broker")
	}

	return &PushSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

type pushEvent struct {
	ID             string    `json:"id"`
	AdvanceID      string    `json:"advance_id"`
	ContractNumber string    `json:"contract_number"`
	Token          string    `json:"token"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Priority       string    `json:"priority"`
	Stage          string    `json:"stage"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p *PushSender) Send(ctx context.Context, t collection.Target, msg collection.Message) (collection.Outcome, error) {
	token, ok := t.Contact.Address(collection.ChannelPush)
	if !ok {
		return collection.Outcome{Status: collection.AttemptSkipped}, fmt.Errorf("%w %s", collection.ErrNoAddress, collection.ChannelPush)
	}

	ev := pushEvent{
		ID:             uuid.NewString(),
		AdvanceID:      t.AdvanceID.String(),
		ContractNumber: t.ContractNumber,
		Token:          token,
		Title:          msg.Subject,
		Body:           msg.Body,
		Priority:       string(msg.Priority),
		Stage:          string(t.Stage),
		CreatedAt:      time.Now().UTC(),
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("encoding push event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.AdvanceID),
		Value: payload,
		Time:  ev.CreatedAt,
	}); err != nil {
		return collection.Outcome{Status: collection.AttemptFailed}, fmt.Errorf("publishing push event: %w", err)
	}

	return collection.Outcome{Status: collection.AttemptSent, MessageID: ev.ID}, nil
}

func (p *PushSender) Close() error {
	return p.writer.Close()
}
