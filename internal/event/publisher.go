// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/pkg/kafka"
	"github.com/partsunlimited/storefront/pkg/logger"
)

// Topics for storefront events.
const (
	TopicCartUpdated      = "storefront.cart.updated"
	TopicCartCleared      = "storefront.cart.cleared"
	TopicOrderPlaced      = "storefront.order.placed"
	TopicProductAnnounced = "storefront.product.announced"
)

// Event types carried in the envelope.
const (
	TypeCartUpdated      = "cart.updated"
	TypeCartCleared      = "cart.cleared"
	TypeOrderPlaced      = "order.placed"
	TypeProductAnnounced = "product.announced"
)

const source = "storefront"

// CartUpdatedData is the payload for cart.updated events.
type CartUpdatedData struct {
	CartID    string          `json:"cart_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// CartClearedData is the payload for cart.cleared events.
type CartClearedData struct {
	CartID string `json:"cart_id"`
}

// OrderPlacedData is the payload for order.placed events.
type OrderPlacedData struct {
	OrderID   string          `json:"order_id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// ProductAnnouncedData is the payload for product.announced events,
// broadcast when a new product lands in the catalog.
type ProductAnnouncedData struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	ArtURL    string `json:"art_url"`
}

// Publisher emits storefront domain events through a Kafka producer.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher creates a new domain event publisher.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

// CartUpdated publishes a cart.updated event after an item add or remove.
func (p *Publisher) CartUpdated(ctx context.Context, cart *domain.Cart, productID string, quantity int) error {
	data := CartUpdatedData{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		ItemCount: cart.Count(),
		Total:     cart.Total(),
	}
	return p.publish(ctx, TopicCartUpdated, TypeCartUpdated, cart.ID, "cart", data)
}

// CartCleared publishes a cart.cleared event.
func (p *Publisher) CartCleared(ctx context.Context, cartID string) error {
	return p.publish(ctx, TopicCartCleared, TypeCartCleared, cartID, "cart", CartClearedData{CartID: cartID})
}

// OrderPlaced publishes an order.placed event after checkout commits.
func (p *Publisher) OrderPlaced(ctx context.Context, order *domain.Order) error {
	data := OrderPlacedData{
		OrderID:   order.ID,
		Username:  order.Username,
		Email:     order.Email,
		Total:     order.Total,
		ItemCount: len(order.Items),
		PlacedAt:  order.CreatedAt,
	}
	return p.publish(ctx, TopicOrderPlaced, TypeOrderPlaced, order.ID, "order", data)
}

// ProductAnnounced publishes a product.announced event for a new catalog product.
func (p *Publisher) ProductAnnounced(ctx context.Context, product *domain.Product) error {
	data := ProductAnnouncedData{
		ProductID: product.ID,
		Title:     product.Title,
		SKU:       product.SKU,
		ArtURL:    product.ArtURL,
	}
	return p.publish(ctx, TopicProductAnnounced, TypeProductAnnounced, product.ID, "product", data)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	return p.producer.Publish(ctx, topic, evt)
}
