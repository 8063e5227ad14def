package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/idempotency"
)

const (
	CorrelationIDMetadataKey  = "correlation_id"
	IdempotencyKeyMetadataKey = "idempotency_key"
)

// CorrelationIDMiddleware restores the request's correlation id and
// idempotency key, so follow-up events of a handler carry them on.
func CorrelationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get(CorrelationIDMetadataKey)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = log.ToContext(ctx,
			logrus.WithFields(logrus.Fields{
				"correlation_id": correlationID,
				"message_uuid":   msg.UUID,
			}),
		)
		if key := msg.Metadata.Get(IdempotencyKeyMetadataKey); key != "" {
			ctx = idempotency.WithKey(ctx, key+":"+message.HandlerNameFromCtx(msg.Context()))
		}

		msg.SetContext(ctx)

		return next(msg)
	}
}

func LoggingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		log.FromContext(msg.Context()).
			WithField("payload", string(msg.Payload)).
			WithField("metadata", msg.Metadata).
			Info("Handling a message")

		messages, err := next(msg)

		if err != nil {
			log.FromContext(msg.Context()).
				WithField("payload", string(msg.Payload)).
				WithField("error", err).
				Error("Message handling error")
		}

		return messages, err
	}
}

func TracingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))

		ctx, span := otel.Tracer("").Start(
			ctx,
			fmt.Sprintf("topic: %s, handler: %s", message.SubscribeTopicFromCtx(ctx), message.HandlerNameFromCtx(ctx)),
			trace.WithAttributes(
				attribute.String("topic", message.SubscribeTopicFromCtx(ctx)),
				attribute.String("handler", message.HandlerNameFromCtx(ctx)),
			),
		)
		defer span.End()

		msg.SetContext(ctx)

		msgs, err := next(msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return msgs, err
	}
}

// SkipPermanentErrorsMiddleware acks messages that can never succeed:
// malformed payloads and domain rejections. Collaborator failures are retried.
func SkipPermanentErrorsMiddleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err == nil || !isPermanent(err) {
			return msgs, err
		}

		log.FromContext(msg.Context()).
			WithField("error", err).
			Warn("Skipping message that cannot be handled")
		return nil, nil
	}
}

func isPermanent(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return true
	}

	kind := resale.KindOf(err)
	return kind != resale.KindUnknown && kind != resale.KindUnavailable
}

var (
	messagesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_processed_total",
		Help: "Total number of messages processed",
	}, []string{"topic", "handler"})
	messagesProcessingFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_processing_failed_total",
		Help: "Total number of messages processing failures",
	}, []string{"topic", "handler"})

	messagesProcessingDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "messages_processing_duration_seconds",
		Help:       "Duration of message processing in seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"topic", "handler"})
)

func MetricsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())
		handler := message.HandlerNameFromCtx(msg.Context())

		start := time.Now()

		msgs, err := next(msg)

		messagesProcessingDuration.WithLabelValues(topic, handler).Observe(time.Since(start).Seconds())
		messagesProcessedTotal.WithLabelValues(topic, handler).Inc()
		if err != nil {
			messagesProcessingFailedTotal.WithLabelValues(topic, handler).Inc()
		}

		return msgs, err
	}
}
