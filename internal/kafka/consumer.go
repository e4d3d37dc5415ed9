package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads reservation events until ctx is done or handler fails.
// Messages that do not decode are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReservationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, ok := decodeEvent(msg.Value)
		if !ok {
			c.log.Warn("skipping undecodable reservation event", "partition", msg.Partition, "offset", msg.Offset)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (ReservationEvent, bool) {
	var event ReservationEvent
	if err := json.Unmarshal(value, &event); err != nil || event.Type == "" {
		return ReservationEvent{}, false
	}
	return event, true
}
