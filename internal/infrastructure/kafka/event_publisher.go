package kafka

import (
	"context"
	"fmt"

	"github.com/pulse-platform/production-service/pkg/events"
	"github.com/pulse-platform/production-service/pkg/kafka"

	"github.com/pulse-platform/production-service/internal/domain"
)

// Producer is the slice of the resilient producer the publisher needs.
type Producer interface {
	PublishEvent(ctx context.Context, topic string, event *events.PulseCloudEvent) error
}

// EventPublisher implements domain.EventPublisher on Kafka. Each
// domain event type maps to its own topic; stage transitions with a
// resolved supervisor role additionally fan out to the notification
// topic.
type EventPublisher struct {
	producer     Producer
	eventFactory *events.EventFactory
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(producer Producer, eventFactory *events.EventFactory) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
	}
}

// Publish publishes a single domain event to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	switch e := event.(type) {
	case domain.BatchCreatedEvent:
		ce := p.eventFactory.CreateBatchCreatedEvent(ctx, e.BatchID, e.BatchNumber, e.ModelCode, "", e.Quantity, e.CreatedBy)
		return p.publish(ctx, kafka.Topics.BatchEvents, ce)

	case domain.BatchApprovedEvent:
		ce := p.eventFactory.CreateBatchApprovedEvent(ctx, e.BatchID, e.BatchNumber, e.DecidedBy, e.OverallStatus, 0)
		ce.WithRecipients(events.RecipientOwnerPlusSubscribers, nil)
		return p.publish(ctx, kafka.Topics.BatchEvents, ce)

	case domain.BatchRejectedEvent:
		ce := p.eventFactory.CreateBatchRejectedEvent(ctx, e.BatchID, e.BatchNumber, e.DecidedBy, e.Reason)
		ce.WithRecipients(events.RecipientOwnerOnly, nil)
		return p.publish(ctx, kafka.Topics.BatchEvents, ce)

	case domain.StageTransitionEvent:
		ce := p.eventFactory.CreateStageTransitionEvent(ctx, e.EventType(), e.BatchNumber, e.ItemID, e.PartName, e.StageName, e.StageIndex, e.StatusLabel, e.MovedBy)
		if err := p.publish(ctx, kafka.Topics.StageEvents, ce); err != nil {
			return err
		}
		// No resolved role means no one to notify; that is not an error.
		if e.SupervisorRole == "" {
			return nil
		}
		notification := p.eventFactory.CreateStageTransitionEvent(ctx, e.EventType(), e.BatchNumber, e.ItemID, e.PartName, e.StageName, e.StageIndex, e.StatusLabel, e.MovedBy)
		notification.WithRecipients(events.RecipientSubscribersOnly, []string{e.SupervisorRole})
		return p.publish(ctx, kafka.Topics.NotificationEvents, notification)

	case domain.BatchStatusChangedEvent:
		ce := p.eventFactory.CreateBatchStatusChangedEvent(ctx, e.BatchID, e.BatchNumber, e.OldStatus, e.NewStatus)
		return p.publish(ctx, kafka.Topics.BatchEvents, ce)

	case domain.BatchNotScheduledEvent:
		ce := p.eventFactory.CreateBatchNotScheduledEvent(ctx, e.BatchID, e.BatchNumber, e.ApprovedAt, e.AgeDays)
		ce.WithRecipients(events.RecipientOwnerPlusSubscribers, nil)
		return p.publish(ctx, kafka.Topics.ReminderEvents, ce)

	default:
		ce := p.eventFactory.CreateEvent(ctx, event.EventType(), "", event)
		return p.publish(ctx, kafka.Topics.BatchEvents, ce)
	}
}

// PublishAll publishes multiple domain events to Kafka.
func (p *EventPublisher) PublishAll(ctx context.Context, domainEvents []domain.DomainEvent) error {
	for _, event := range domainEvents {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventPublisher) publish(ctx context.Context, topic string, event *events.PulseCloudEvent) error {
	if err := p.producer.PublishEvent(ctx, topic, event); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, topic, err)
	}
	return nil
}
