package message_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/entities"
	fmessage "fairtickets/internal/interfaces/message"
	"fairtickets/internal/interfaces/message/events"
	"fairtickets/internal/interfaces/message/events/mocks"
)

type eventLog struct {
	mu     sync.Mutex
	events []entities.DatalakeEvent
}

func (l *eventLog) SaveEvent(_ context.Context, event entities.DatalakeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for _, e := range l.events {
		names = append(names, e.EventName)
	}
	return names
}

func TestRouter_VoidsListingOfRedeemedTicket(t *testing.T) {
	logger := watermill.NopLogger{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)

	ctrl := gomock.NewController(t)
	voider := mocks.NewMockListingVoider(ctrl)
	voided := make(chan struct{})
	voider.EXPECT().
		Void(gomock.Any(), "evt-1", uint64(7)).
		DoAndReturn(func(context.Context, string, uint64) error {
			close(voided)
			return nil
		})

	repo := &eventLog{}
	router, err := fmessage.NewRouter(logger, fmessage.RouterConfig{
		NewSubscriber: events.ChannelSubscribers(pubSub),
		Publisher:     pubSub,
		EventsRepo:    repo,
		RetryInterval: time.Millisecond,
	}, events.NewHandler(voider))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	bus, err := events.NewEventBus(pubSub, logger)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, entities.TicketRedeemed_v1{
		Header:     entities.NewEventHeader(),
		EventID:    "evt-1",
		TokenID:    7,
		Owner:      "alice",
		RedeemedAt: time.Now().UTC(),
	}))

	select {
	case <-voided:
	case <-time.After(5 * time.Second):
		t.Fatal("listing was not voided")
	}

	assert.Eventually(t, func() bool {
		return len(repo.names()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"TicketRedeemed_v1"}, repo.names())
}
