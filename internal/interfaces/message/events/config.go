package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"fairtickets/internal/entities"
)

// SubscriberConstructor returns a subscriber reading as consumerGroup.
type SubscriberConstructor func(consumerGroup string) (message.Subscriber, error)

func RedisSubscribers(redisClient *redis.Client, logger watermill.LoggerAdapter) SubscriberConstructor {
	return func(consumerGroup string) (message.Subscriber, error) {
		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: "svc-fairtickets." + consumerGroup,
		}, logger)
	}
}

// ChannelSubscribers shares one in-process pub/sub; every subscription gets
// its own copy of each message.
func ChannelSubscribers(pubSub *gochannel.GoChannel) SubscriberConstructor {
	return func(string) (message.Subscriber, error) {
		return pubSub, nil
	}
}

func NewEventProcessorConfig(
	newSubscriber SubscriberConstructor,
	watermillLogger watermill.LoggerAdapter,
) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			handlerEvent := params.EventHandler.NewEvent()
			event, ok := handlerEvent.(entities.Event)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entities.Event", handlerEvent)
			}

			if event.IsInternal() {
				return internalTopicPrefix + params.EventName, nil
			}
			return PublicTopic(params.EventName), nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return newSubscriber(params.HandlerName)
		},
		Marshaler: marshaler,
		Logger:    watermillLogger,
	}
}
