package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/domain"
	pkgkafka "github.com/utafrali/variantcatalog/pkg/kafka"
)

// Kafka topic constants for variant domain events.
var (
	TopicCombinationsGenerated   = pkgkafka.Topic("variant", "combinations.generated")
	TopicCombinationsDeleted     = pkgkafka.Topic("variant", "combinations.deleted")
	TopicCombinationStockUpdated = pkgkafka.Topic("variant", "combination.stock_updated")
)

// Aggregate type constants.
const (
	AggregateTypeProduct     = "product"
	AggregateTypeCombination = "product_combination"
)

// SourceVariantService identifies events originating from this service.
const SourceVariantService = "variant-service"

// CombinationSummary is the per-combination part of a generated event.
type CombinationSummary struct {
	ID            string               `json:"id"`
	SKU           string               `json:"sku"`
	Price         decimal.Decimal      `json:"price"`
	IsDefault     bool                 `json:"is_default"`
	VariantValues domain.VariantValues `json:"variant_values"`
}

// CombinationsGeneratedData is the payload for a combinations.generated event.
type CombinationsGeneratedData struct {
	ProductID    string               `json:"product_id"`
	Count        int                  `json:"count"`
	Combinations []CombinationSummary `json:"combinations"`
}

// CombinationsDeletedData is the payload for a combinations.deleted event.
type CombinationsDeletedData struct {
	ProductID string `json:"product_id"`
	Deleted   int64  `json:"deleted"`
	Reason    string `json:"reason"`
}

// StockUpdatedData is the payload for a combination.stock_updated event.
type StockUpdatedData struct {
	CombinationID string `json:"combination_id"`
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	InStock       bool   `json:"in_stock"`
}

// Publisher is the subset of *pkgkafka.Producer the event producer uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes variant domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the variant service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCombinationsGenerated publishes a combinations.generated event.
func (p *Producer) PublishCombinationsGenerated(ctx context.Context, productID string, combinations []domain.ProductCombination) error {
	data := CombinationsGeneratedData{
		ProductID:    productID,
		Count:        len(combinations),
		Combinations: make([]CombinationSummary, len(combinations)),
	}
	for i, c := range combinations {
		data.Combinations[i] = CombinationSummary{
			ID:            c.ID,
			SKU:           c.SKU,
			Price:         c.Price,
			IsDefault:     c.IsDefault,
			VariantValues: c.VariantValues,
		}
	}

	return p.publish(ctx, TopicCombinationsGenerated, productID, AggregateTypeProduct, data,
		slog.String("product_id", productID),
		slog.Int("count", data.Count),
	)
}

// PublishCombinationsDeleted publishes a combinations.deleted event.
func (p *Producer) PublishCombinationsDeleted(ctx context.Context, productID string, deleted int64, reason string) error {
	data := CombinationsDeletedData{ProductID: productID, Deleted: deleted, Reason: reason}

	return p.publish(ctx, TopicCombinationsDeleted, productID, AggregateTypeProduct, data,
		slog.String("product_id", productID),
		slog.Int64("deleted", deleted),
	)
}

// PublishStockUpdated publishes a combination.stock_updated event.
func (p *Producer) PublishStockUpdated(ctx context.Context, c *domain.ProductCombination) error {
	data := StockUpdatedData{
		CombinationID: c.ID,
		ProductID:     c.ProductID,
		SKU:           c.SKU,
		Quantity:      c.Quantity,
		InStock:       c.Quantity > 0,
	}

	return p.publish(ctx, TopicCombinationStockUpdated, c.ID, AggregateTypeCombination, data,
		slog.String("combination_id", c.ID),
		slog.Int("quantity", c.Quantity),
	)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any, attrs ...any) error {
	event, err := pkgkafka.NewEventFromContext(ctx, topic, aggregateID, aggregateType, SourceVariantService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published "+topic+" event", attrs...)
	return nil
}
