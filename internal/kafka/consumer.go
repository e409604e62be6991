package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"

	"alerting-platform/internal/config"
	"alerting-platform/internal/delivery"
	"alerting-platform/internal/logging"
	"alerting-platform/internal/models"
)

// command is what the external alert CRUD publishes when an admin saves or
// re-sends an alert.
type command struct {
	AlertID int64  `json:"alert_id"`
	Action  string `json:"action"` // "send" or "retry"
}

type Consumer struct {
	reader *kafka.Reader
	engine *delivery.Engine
	logger *logging.Logger
}

func NewConsumer(cfg config.Config, engine *delivery.Engine, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	return &Consumer{reader: reader, engine: engine, logger: logger}
}

// Start blocks reading delivery commands until ctx is cancelled or the
// reader is closed.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Infof("kafka consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Infof("kafka consumer stopped")
				return
			}
			c.logger.Errorf("read message failed: %v", err)
			continue
		}

		var cmd command
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			c.logger.Errorf("unmarshal message failed: %v", err)
			continue
		}
		if cmd.AlertID == 0 {
			c.logger.Errorf("invalid message: missing alert_id")
			continue
		}

		c.handle(ctx, cmd)
	}
}

func (c *Consumer) handle(ctx context.Context, cmd command) {
	switch cmd.Action {
	case "retry":
		report, err := c.engine.Retry(ctx, models.SystemCaller, cmd.AlertID)
		if err != nil {
			c.logger.Errorf("retry for alert %d failed: %v", cmd.AlertID, err)
			return
		}
		c.logger.Infof("retry for alert %d: %d reattempted, %d recovered", cmd.AlertID, report.Reattempted, report.Recovered)
	default:
		report, err := c.engine.Send(ctx, models.SystemCaller, cmd.AlertID)
		if err != nil {
			c.logger.Errorf("send for alert %d failed: %v", cmd.AlertID, err)
			return
		}
		c.logger.Infof("send for alert %d: %d sent, %d failed", cmd.AlertID, report.Stats.Sent, report.Stats.Failed)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
