package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/variantcatalog/pkg/kafka"
)

// Topics consumed from the product service.
var TopicProductDeleted = pkgkafka.Topic("product", "deleted")

// ReasonProductDeleted tags combinations removed because their product went away.
const ReasonProductDeleted = "product_deleted"

// ProductDeletedData represents the payload from a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// CombinationRemover deletes the stored combinations of a product.
type CombinationRemover interface {
	DeleteForProduct(ctx context.Context, productID, reason string) (int64, error)
}

// Consumer handles product events that affect stored combinations.
type Consumer struct {
	remover CombinationRemover
	logger  *slog.Logger
}

// NewConsumer creates a new product event consumer.
func NewConsumer(remover CombinationRemover, logger *slog.Logger) *Consumer {
	return &Consumer{
		remover: remover,
		logger:  logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductDeleted drops every combination of the deleted product.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}
	if data.ID == "" {
		data.ID = event.AggregateID
	}
	if data.ID == "" {
		c.logger.WarnContext(ctx, "product.deleted event without product id",
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	n, err := c.remover.DeleteForProduct(ctx, data.ID, ReasonProductDeleted)
	if err != nil {
		return fmt.Errorf("delete combinations for product %s: %w", data.ID, err)
	}

	c.logger.InfoContext(ctx, "removed combinations of deleted product",
		slog.String("product_id", data.ID),
		slog.Int64("deleted", n),
	)
	return nil
}
