package messaging

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	batchSize    = 10
	receiveDelay = 2 * time.Second
)

// Handler processes one message body
type Handler func(ctx context.Context, body []byte) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not retryable. The message is dead-lettered instead of abandoned.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// receiver is the subset of *azservicebus.Receiver the consumer uses
type receiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	AbandonMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.AbandonMessageOptions) error
	DeadLetterMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.DeadLetterOptions) error
	Close(ctx context.Context) error
}

// Consumer receives messages from an Azure Service Bus queue
type Consumer struct {
	client *azservicebus.Client
}

// NewConsumer creates a consumer from a connection string
func NewConsumer(connStr string) (*Consumer, error) {
	if connStr == "" {
		return nil, errors.New("Azure Service Bus connection string is empty")
	}
	client, err := azservicebus.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}
	return &Consumer{client: client}, nil
}

// Run receives and handles messages from queueName until ctx is cancelled
func (c *Consumer) Run(ctx context.Context, queueName string, handler Handler) error {
	r, err := c.client.NewReceiverForQueue(queueName, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create receiver for queue %s", queueName)
	}
	log.Info().Str("queue", queueName).Msg("starting consumer")
	return consume(ctx, r, handler)
}

// Close closes the underlying client
func (c *Consumer) Close() error {
	return c.client.Close(context.Background())
}

func consume(ctx context.Context, r receiver, handler Handler) error {
	defer func() {
		if err := r.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error closing receiver")
		}
	}()

	for {
		messages, err := r.ReceiveMessages(ctx, batchSize, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to receive messages")
		}

		if len(messages) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveDelay):
			}
			continue
		}

		for _, message := range messages {
			settle(ctx, r, message, handler)
		}
	}
}

func settle(ctx context.Context, r receiver, message *azservicebus.ReceivedMessage, handler Handler) {
	err := handler(ctx, message.Body)
	switch {
	case err == nil:
		if err := r.CompleteMessage(context.Background(), message, nil); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(CompleteMessage) failed")
		}
	case IsPermanent(err):
		log.Warn().Err(err).Str("message_id", message.MessageID).Msg("dead-lettering message")
		reason := "unprocessable"
		description := err.Error()
		if err := r.DeadLetterMessage(context.Background(), message, &azservicebus.DeadLetterOptions{
			Reason:           &reason,
			ErrorDescription: &description,
		}); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(DeadLetterMessage) failed")
		}
	default:
		log.Error().Err(err).Str("message_id", message.MessageID).Msg("error processing message")
		if err := r.AbandonMessage(context.Background(), message, nil); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(AbandonMessage) failed")
		}
	}
}
