package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer the sender uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type mailEvent struct {
	Type     string         `json:"type"`
	Template string         `json:"template"`
	Subject  string         `json:"subject"`
	Data     ActivationMail `json:"data"`
}

// KafkaSender publishes activation mails to a topic consumed by the mailer
// service.
type KafkaSender struct {
	w     messageWriter
	topic string
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (k *KafkaSender) SendActivation(ctx context.Context, m ActivationMail) error {
	data, err := json.Marshal(mailEvent{
		Type:     "activation_mail",
		Template: "activation-mail",
		Subject:  "Activate your account",
		Data:     m,
	})
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := k.w.WriteMessages(ctx, kafka.Message{Key: []byte(m.Email), Value: data}); err != nil {
		return fmt.Errorf("kafka: publish to %s failed: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaSender) Close() error {
	return k.w.Close()
}
