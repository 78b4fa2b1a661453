package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{reader: r, log: log}
}

// Start blocks reading until ctx is cancelled, handing each record to
// handler. Read errors back off for a second rather than spinning.
func (c *Consumer) Start(ctx context.Context, handler func(key string, value []byte)) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Errorw("kafka read", "err", err)
			time.Sleep(time.Second)
			continue
		}
		handler(string(m.Key), m.Value)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
