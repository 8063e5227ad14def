package events_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
	"fairtickets/internal/interfaces/message/events"
	"fairtickets/internal/interfaces/message/events/mocks"
)

type topicRecorder struct {
	topics []string
}

func (r *topicRecorder) Publish(topic string, _ ...*message.Message) error {
	r.topics = append(r.topics, topic)
	return nil
}

func (r *topicRecorder) Close() error { return nil }

func TestEventBus_Topics(t *testing.T) {
	pub := &topicRecorder{}
	bus, err := events.NewEventBus(pub, watermill.NopLogger{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, entities.TicketRedeemed_v1{Header: entities.NewEventHeader()}))
	require.NoError(t, bus.Publish(ctx, entities.RedemptionRejected_v1{Header: entities.NewEventHeader()}))

	assert.Equal(t, []string{
		events.EventsTopic,
		"internal-events.svc-fairtickets.RedemptionRejected_v1",
	}, pub.topics)

	err = bus.Publish(ctx, struct{}{})
	assert.Error(t, err)
}

func TestVoidListingOnRedeemedHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	voider := mocks.NewMockListingVoider(ctrl)
	voider.EXPECT().Void(gomock.Any(), "evt-1", uint64(3)).Return(nil)

	h := events.NewHandler(voider).VoidListingOnRedeemedHandler()
	err := h.Handle(context.Background(), &entities.TicketRedeemed_v1{EventID: "evt-1", TokenID: 3})
	require.NoError(t, err)
}

func TestDoubleRedemptionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := events.NewHandler(mocks.NewMockListingVoider(ctrl)).DoubleRedemptionHandler()

	err := h.Handle(context.Background(), &entities.RedemptionRejected_v1{EventID: "evt-1", TokenID: 3})
	assert.NoError(t, err)
}

func TestSkipPermanentErrorsMiddleware(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantSkip bool
	}{
		{name: "domain rejection", err: fmt.Errorf("void: %w", resale.ErrListingNotFound), wantSkip: true},
		{name: "collaborator failure", err: fmt.Errorf("%w: timeout", resale.ErrPaymentsUnavailable), wantSkip: false},
		{name: "unknown failure", err: errors.New("connection reset"), wantSkip: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := events.SkipPermanentErrorsMiddleware(func(*message.Message) ([]*message.Message, error) {
				return nil, tc.err
			})

			_, err := h(message.NewMessage("1", nil))
			if tc.wantSkip {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestSkipPermanentErrorsMiddleware_MalformedPayload(t *testing.T) {
	marshaler := events.Marshaler()
	h := events.SkipPermanentErrorsMiddleware(func(msg *message.Message) ([]*message.Message, error) {
		var event entities.TicketRedeemed_v1
		return nil, marshaler.Unmarshal(msg, &event)
	})

	_, err := h(message.NewMessage("1", []byte("{not json")))
	assert.NoError(t, err)
}
