package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// RecordInitializer seeds the access document for a newly created record.
// Implemented by the access service; declared here to keep the consumer free
// of a service-layer import.
type RecordInitializer interface {
	InitializeRecord(ctx context.Context, recordID, creator string) error
}

// Consumer defines the interface for event consumption
type Consumer interface {
	Start() error
	Close() error
}

// EventConsumer listens for record lifecycle events from the
// record-management service and keeps the access documents in step: every new
// record gets its creator as default owner and the site default visibility.
type EventConsumer struct {
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	queueName   string
	initializer RecordInitializer
	shutdown    chan struct{}
	wg          sync.WaitGroup
	enabled     bool
}

// Exchange configuration
type ExchangeConfig struct {
	Name       string
	Type       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Args       amqp091.Table
}

// Binding configuration
type BindingConfig struct {
	Exchange   string
	RoutingKey string
}

// NewEventConsumer creates a new event consumer
func NewEventConsumer(rabbitURI string, initializer RecordInitializer) (*EventConsumer, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event consumption is disabled")
		return &EventConsumer{
			initializer: initializer,
			shutdown:    make(chan struct{}),
			enabled:     false,
		}, nil
	}

	// Connect to RabbitMQ
	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	// Create a channel
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Set QoS/prefetch
	err = channel.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &EventConsumer{
		conn:        conn,
		channel:     channel,
		queueName:   "record-access-service-events",
		initializer: initializer,
		shutdown:    make(chan struct{}),
		enabled:     true,
	}, nil
}

// Start starts consuming events
func (c *EventConsumer) Start() error {
	if !c.enabled {
		log.Println("Event consumption is disabled, not starting consumer")
		return nil
	}

	exchanges := []ExchangeConfig{
		{
			Name:       "record-lifecycle-events",
			Type:       "topic",
			Durable:    true,
			AutoDelete: false,
			Internal:   false,
			NoWait:     false,
		},
	}

	for _, exchange := range exchanges {
		err := c.channel.ExchangeDeclare(
			exchange.Name,
			exchange.Type,
			exchange.Durable,
			exchange.AutoDelete,
			exchange.Internal,
			exchange.NoWait,
			exchange.Args,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange.Name, err)
		}
		log.Printf("Declared exchange: %s", exchange.Name)
	}

	// Declare the queue
	_, err := c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	log.Printf("Declared queue: %s", c.queueName)

	bindings := []BindingConfig{
		{Exchange: "record-lifecycle-events", RoutingKey: "record.created"},
	}

	for _, binding := range bindings {
		err := c.channel.QueueBind(
			c.queueName,        // queue name
			binding.RoutingKey, // routing key
			binding.Exchange,   // exchange
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue to exchange %s with key %s: %w",
				binding.Exchange, binding.RoutingKey, err)
		}
		log.Printf("Bound queue %s to exchange %s with routing key %s",
			c.queueName, binding.Exchange, binding.RoutingKey)
	}

	// Start consuming messages
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(msgs)
	}()

	log.Println("Event consumer started and listening for record lifecycle events")
	return nil
}

// consume handles incoming messages
func (c *EventConsumer) consume(msgs <-chan amqp091.Delivery) {
	for {
		select {
		case <-c.shutdown:
			log.Println("Stopping event consumer")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Println("Message channel closed, reconnecting...")
				time.Sleep(5 * time.Second)
				return
			}

			err := c.processMessage(msg)
			if err != nil {
				log.Printf("FAILED to process message - Exchange: %s, RoutingKey: %s, Error: %v",
					msg.Exchange, msg.RoutingKey, err)
				log.Printf("Failed message body: %s", string(msg.Body))

				// Acknowledge failed message to prevent infinite requeuing
				if ackErr := msg.Ack(false); ackErr != nil {
					log.Printf("Error acknowledging failed message: %v", ackErr)
				} else {
					log.Printf("Acknowledged and discarded failed message (routing key: %s)", msg.RoutingKey)
				}
			} else {
				if err := msg.Ack(false); err != nil {
					log.Printf("Error acknowledging successful message: %v", err)
				}
			}
		}
	}
}

func (c *EventConsumer) processMessage(msg amqp091.Delivery) error {
	routingKey := msg.RoutingKey
	exchange := msg.Exchange

	log.Printf("Processing message from exchange '%s' with routing key: %s", exchange, routingKey)

	switch routingKey {
	case "record.created":
		return c.handleRecordCreated(msg.Body)
	default:
		log.Printf("Unknown routing key: %s from exchange: %s", routingKey, exchange)
		return nil // Acknowledge the message to avoid requeuing
	}
}

func (c *EventConsumer) handleRecordCreated(body []byte) error {
	var event RecordCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal record created event: %w", err)
	}
	if event.RecordID == "" {
		return fmt.Errorf("record created event without record id")
	}

	log.Printf("Record created: %s by %s", event.RecordID, event.CreatedBy)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.initializer.InitializeRecord(ctx, event.RecordID, event.CreatedBy); err != nil {
		return fmt.Errorf("error seeding access document for record %s: %w", event.RecordID, err)
	}

	log.Printf("Seeded access document for record %s with owner %q", event.RecordID, event.CreatedBy)
	return nil
}

// Close shuts down the consumer
func (c *EventConsumer) Close() error {
	if !c.enabled {
		return nil
	}

	close(c.shutdown)
	c.wg.Wait()

	var err error
	if c.channel != nil {
		err = c.channel.Close()
	}
	if c.conn != nil {
		err = c.conn.Close()
	}
	return err
}
