package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeJobSubmit   MessageType = "job.submit"
	MessageTypeJobPoll     MessageType = "job.poll"
	MessageTypeJobKill     MessageType = "job.kill"
	MessageTypeJobCallback MessageType = "job.callback"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// JobSubmitPayload — payload для команды отправки job на внешний
// process pool.
type JobSubmitPayload struct {
	TaskName    string `json:"task_name"`
	CyclePoint  string `json:"cycle_point"`
	SubmitNum   int    `json:"submit_num"`
	JobFilePath string `json:"job_file_path"`
	BatchSystem string `json:"batch_system"`
}

// JobPollPayload — payload для команды опроса статуса job.
type JobPollPayload struct {
	TaskName   string `json:"task_name"`
	CyclePoint string `json:"cycle_point"`
	BatchJobID string `json:"batch_job_id"`
}

// JobKillPayload — payload для команды отмены job.
type JobKillPayload struct {
	TaskName   string `json:"task_name"`
	CyclePoint string `json:"cycle_point"`
	BatchJobID string `json:"batch_job_id"`
}

// ProxyCallbackPayload — payload с "сырой" строкой коллбэка от
// process pool, которую разбирает internal/callback.
type ProxyCallbackPayload struct {
	TaskName   string `json:"task_name"`
	CyclePoint string `json:"cycle_point"`
	Kind       string `json:"kind"` // submit | poll | poll-message | kill
	RawLine    string `json:"raw_line"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishJobSubmit публикует команду отправки job.
// Потребитель: внешний process pool.
func (p *Publisher) PublishJobSubmit(ctx context.Context, payload JobSubmitPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobSubmit,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeySubmit, msg)
}

// PublishJobPoll публикует команду опроса статуса job.
// Потребитель: внешний process pool.
func (p *Publisher) PublishJobPoll(ctx context.Context, payload JobPollPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobPoll,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyPoll, msg)
}

// PublishJobKill публикует команду отмены job.
// Потребитель: внешний process pool.
func (p *Publisher) PublishJobKill(ctx context.Context, payload JobKillPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobKill,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyKill, msg)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}
