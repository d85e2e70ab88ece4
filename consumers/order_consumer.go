package consumers

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"storefront/config"
	"storefront/middlewares"
	"storefront/rabbitmq"
)

// StartOrderConsumer consumes the order audit queue and its dead-letter queue
// until ctx is cancelled or the channel closes.
func StartOrderConsumer(ctx context.Context, ch *amqp.Channel, cfg *config.Config, logger *zap.Logger) error {
	msgs, err := ch.Consume(
		cfg.RabbitMQ.OrderQueue,
		"storefront-audit", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}

	dlqMsgs, err := ch.Consume(
		cfg.RabbitMQ.DeadLetterQueue,
		"storefront-audit-dlq",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Warn("register dead-letter consumer", zap.Error(err))
	}

	go drain(ctx, msgs, func(d amqp.Delivery) { processOrderMessage(d, logger) })
	if dlqMsgs != nil {
		go drain(ctx, dlqMsgs, func(d amqp.Delivery) { processDeadLetterMessage(d, logger) })
	}
	return nil
}

func drain(ctx context.Context, msgs <-chan amqp.Delivery, handle func(amqp.Delivery)) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			handle(d)
		}
	}
}

func processOrderMessage(msg amqp.Delivery, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic in order event", zap.Any("panic", r))
			_ = msg.Nack(false, false)
		}
	}()

	ev, err := rabbitmq.DecodeEvent(msg.Body)
	if err != nil {
		logger.Warn("invalid order event", zap.ByteString("body", msg.Body), zap.Error(err))
		// reject without requeue so it lands in the dead-letter queue
		if err := msg.Nack(false, false); err != nil {
			logger.Warn("nack order event", zap.Error(err))
		}
		return
	}

	fields := []zap.Field{
		zap.String("type", ev.Type),
		zap.Int64("order_id", ev.OrderID),
		zap.String("status", string(ev.Status)),
		zap.Time("occurred", ev.Occurred),
	}
	if ev.PrevStatus != "" {
		fields = append(fields, zap.String("prev_status", string(ev.PrevStatus)))
	}
	logger.Info("order audit", fields...)
	middlewares.RecordOrderEvent(ev.Type)

	if err := msg.Ack(false); err != nil {
		logger.Warn("ack order event", zap.Error(err))
	}
}

func processDeadLetterMessage(msg amqp.Delivery, logger *zap.Logger) {
	logger.Warn("dead-lettered order event", zap.ByteString("body", msg.Body))
	middlewares.RecordOrderEvent("dead_letter")
	if err := msg.Ack(false); err != nil {
		logger.Warn("ack dead letter", zap.Error(err))
	}
}
