package queue

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	RelationshipQueue = "relationship_queue"
	TopicExchange     = "pubsub_exchange"

	MaxRetries = 10

	retryTTL         = int32(10000)
	retriesHeader    = "x-retries"
	retrySuffix      = "_retry"
	deadLetterSuffix = "_dlq"
)

// Channel is the part of *amqp091.Channel the queue helpers use.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnvString("RABBITMQ_HOST", "localhost")
	port := util.GetEnvString("RABBITMQ_PORT", "5672")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("[Queue] Failed to connect to RabbitMQ", "host", host, "port", port, "err", err)
	}

	return conn
}

// SetupQueues declares each work queue together with its dead-letter queue
// and a retry queue that hands messages back after a delay.
func SetupQueues(ch Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + deadLetterSuffix
		_, err = ch.QueueDeclare(dlqName, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + retrySuffix
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             retryTTL,
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

func PublishFIFO(ch Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.Publish("", q.Name, false, false, publishing)
}

func PublishTopic(ch Channel, topic string, data []byte) error {
	err := ch.ExchangeDeclare(
		TopicExchange,
		"topic",
		false,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.Publish(TopicExchange, topic, false, false, publishing)
}

func retries(msg amqp091.Delivery) int {
	switch v := msg.Headers[retriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// HandleProcessingError moves a failed message to the retry queue, or to the
// dead-letter queue once it has been retried MaxRetries times or when
// permanent is set. The original delivery is acked once the copy is
// published and requeued otherwise.
func HandleProcessingError(ch Channel, msg amqp091.Delivery, queueName string, permanent bool) {
	n := retries(msg)

	if permanent || n >= MaxRetries {
		dlqName := queueName + deadLetterSuffix
		logger.Warn("[Queue] Sending message to DLQ", "dlq", dlqName, "retries", n)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp091.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("[Queue] Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + retrySuffix
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retriesHeader] = int32(n + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp091.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
