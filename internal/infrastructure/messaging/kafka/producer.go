package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ProductEventProducer publishes product lifecycle events to one topic, keyed
// by product id so all events of a product land on the same partition.
type ProductEventProducer struct {
	w messageWriter
}

func NewProductEventProducer(brokers []string, topic string) *ProductEventProducer {
	return &ProductEventProducer{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           writeTimeout,
	}}
}

type productPayload struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"imageUrl"`
	IsActive      bool      `json:"isActive"`
	UserID        string    `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type eventMessage struct {
	Type       string          `json:"type"`
	ProductID  int64           `json:"productId"`
	ActorID    string          `json:"actorId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Product    *productPayload `json:"product,omitempty"`
}

func encodeEvent(e domain.ProductEvent) ([]byte, error) {
	msg := eventMessage{
		Type:       string(e.Type),
		ProductID:  e.ProductID,
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt,
	}
	if p := e.Product; p != nil {
		msg.Product = &productPayload{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			StockQuantity: p.StockQuantity,
			Category:      p.Category,
			ImageURL:      p.ImageURL,
			IsActive:      p.IsActive,
			UserID:        p.OwnerID,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return json.Marshal(msg)
}

func (p *ProductEventProducer) Publish(ctx context.Context, e domain.ProductEvent) error {
	data, err := encodeEvent(e)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatInt(e.ProductID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("kafka: write %s for product %d: %w", e.Type, e.ProductID, err)
	}
	return nil
}

func (p *ProductEventProducer) Close() error {
	return p.w.Close()
}
