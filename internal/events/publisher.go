package events

import (
	"context"
	"log"
)

type Publisher interface {
	PublishOwnerChanged(ctx context.Context, recordID, previousOwner, newOwner, changedBy string) error
	PublishCollaboratorAdded(ctx context.Context, recordID, principal, level, changedBy string) error
	PublishCollaboratorRemoved(ctx context.Context, recordID, principal, changedBy string) error
	PublishCollaboratorsUpdated(ctx context.Context, recordID, changedBy string) error
	PublishVisibilityChanged(ctx context.Context, recordID, visibility, changedBy string) error

	// Close closes the publisher and releases resources
	Close() error
}

type EventPublisher struct {
	rabbitMQ *RabbitMQClient
	enabled  bool
}

func NewEventPublisher(rabbitURI string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			rabbitMQ: nil,
			enabled:  false,
		}, nil
	}

	client, err := NewRabbitMQClient(rabbitURI)
	if err != nil {
		return nil, err
	}

	// Initialize exchanges and queues
	err = client.setupExchangesAndQueues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &EventPublisher{
		rabbitMQ: client,
		enabled:  true,
	}, nil
}

func (p *EventPublisher) publish(routingKey string, eventData []byte) error {
	return p.rabbitMQ.PublishEvent("record-events", routingKey, eventData)
}

func (p *EventPublisher) PublishOwnerChanged(ctx context.Context, recordID, previousOwner, newOwner, changedBy string) error {
	if p == nil || !p.enabled {
		log.Println("Event publishing is disabled, skipping OwnerChangedEvent")
		return nil
	}

	event := NewOwnerChangedEvent(recordID, previousOwner, newOwner, changedBy)
	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.publish(string(OwnerChanged), eventData); err != nil {
		return err
	}

	log.Printf("Published OwnerChanged event for record: %s", recordID)
	return nil
}

func (p *EventPublisher) PublishCollaboratorAdded(ctx context.Context, recordID, principal, level, changedBy string) error {
	if p == nil || !p.enabled {
		log.Println("Event publishing is disabled, skipping CollaboratorAdded event")
		return nil
	}

	event := NewCollaboratorEvent(CollaboratorAdded, recordID, principal, level, changedBy)
	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.publish(string(CollaboratorAdded), eventData); err != nil {
		return err
	}

	log.Printf("Published CollaboratorAdded event for record: %s, principal: %s", recordID, principal)
	return nil
}

func (p *EventPublisher) PublishCollaboratorRemoved(ctx context.Context, recordID, principal, changedBy string) error {
	if p == nil || !p.enabled {
		log.Println("Event publishing is disabled, skipping CollaboratorRemoved event")
		return nil
	}

	event := NewCollaboratorEvent(CollaboratorRemoved, recordID, principal, "", changedBy)
	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.publish(string(CollaboratorRemoved), eventData); err != nil {
		return err
	}

	log.Printf("Published CollaboratorRemoved event for record: %s, principal: %s", recordID, principal)
	return nil
}

func (p *EventPublisher) PublishCollaboratorsUpdated(ctx context.Context, recordID, changedBy string) error {
	if p == nil || !p.enabled {
		log.Println("Event publishing is disabled, skipping CollaboratorsUpdated event")
		return nil
	}

	event := NewCollaboratorEvent(CollaboratorsUpdated, recordID, "", "", changedBy)
	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.publish(string(CollaboratorsUpdated), eventData); err != nil {
		return err
	}

	log.Printf("Published CollaboratorsUpdated event for record: %s", recordID)
	return nil
}

func (p *EventPublisher) PublishVisibilityChanged(ctx context.Context, recordID, visibility, changedBy string) error {
	if p == nil || !p.enabled {
		log.Println("Event publishing is disabled, skipping VisibilityChanged event")
		return nil
	}

	event := NewVisibilityChangedEvent(recordID, visibility, changedBy)
	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.publish(string(VisibilityChanged), eventData); err != nil {
		return err
	}

	log.Printf("Published VisibilityChanged event for record: %s, visibility: %s", recordID, visibility)
	return nil
}

// Close releases resources
func (p *EventPublisher) Close() error {
	if p == nil || !p.enabled || p.rabbitMQ == nil {
		return nil
	}

	return p.rabbitMQ.Close()
}
