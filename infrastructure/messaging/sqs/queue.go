package sqs

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	methodSendMessage    = "messaging.sqs.sendMessage"
	methodReceiveMessage = "messaging.sqs.receiveMessage"
	methodDeleteMessage  = "messaging.sqs.deleteMessage"
	methodResolveQueue   = "messaging.sqs.resolveQueueUrl"
)

var (
	// ErrNoMessageID is the cause when a send is acknowledged without an id
	ErrNoMessageID = stderrors.New("No message id response")
	// ErrNoMessages is the cause when a poll returns nothing
	ErrNoMessages = stderrors.New("No message response")
)

// Receive defaults applied to zero-valued options
const (
	DefaultVisibilityTimeout int32 = 20
	DefaultWaitTimeSeconds   int32 = 10
	DefaultMaxMessages       int32 = 1
)

// DefaultReceiveOptions returns the queue's polling defaults
func DefaultReceiveOptions() ports.ReceiveOptions {
	return ports.ReceiveOptions{
		VisibilityTimeout: DefaultVisibilityTimeout,
		WaitTimeSeconds:   DefaultWaitTimeSeconds,
		MaxMessages:       DefaultMaxMessages,
	}
}

// SQSAPI is the slice of the SQS client the queue uses
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
}

var _ SQSAPI = (*sqs.Client)(nil)

// Queue implements ports.MessageQueue with JSON bodies
type Queue[T any] struct {
	client   SQSAPI
	queue    string
	defaults ports.ReceiveOptions
	logger   *zap.Logger

	skipUndecodable bool

	mu  sync.Mutex
	url string
}

// NewQueue creates a queue adapter. queue is either a queue URL or a
// queue name; names are resolved on first use.
func NewQueue[T any](client SQSAPI, queue string, defaults ports.ReceiveOptions, logger *zap.Logger) *Queue[T] {
	q := &Queue[T]{
		client:   client,
		queue:    queue,
		defaults: withDefaults(defaults, DefaultReceiveOptions()),
		logger:   logger,
	}
	if isQueueURL(queue) {
		q.url = queue
	}
	return q
}

// SkipUndecodable makes Receive hand back messages whose body does not
// decode with a nil Body and DecodeErr set, instead of failing the batch
func (q *Queue[T]) SkipUndecodable() *Queue[T] {
	q.skipUndecodable = true
	return q
}

// Send serializes body and enqueues it
func (q *Queue[T]) Send(ctx context.Context, body T) (string, error) {
	url, err := q.queueURL(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", errors.Raise(err, methodSendMessage, errors.ClassInternal)
	}

	result, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return "", q.fail(methodSendMessage, err)
	}

	if aws.ToString(result.MessageId) == "" {
		return "", errors.NewInternalError(methodSendMessage, ErrNoMessageID.Error()).WithCause(ErrNoMessageID)
	}

	q.logger.Debug("Message sent",
		zap.String("queue", url),
		zap.String("messageID", aws.ToString(result.MessageId)),
	)
	return aws.ToString(result.MessageId), nil
}

// Receive long-polls the queue. An empty poll is reported as an INTERNAL
// error wrapping ErrNoMessages.
func (q *Queue[T]) Receive(ctx context.Context, opts ports.ReceiveOptions) ([]ports.QueueMessage[T], error) {
	url, err := q.queueURL(ctx)
	if err != nil {
		return nil, err
	}
	opts = withDefaults(opts, q.defaults)

	result, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(url),
		MaxNumberOfMessages:         opts.MaxMessages,
		VisibilityTimeout:           opts.VisibilityTimeout,
		WaitTimeSeconds:             opts.WaitTimeSeconds,
		MessageAttributeNames:       []string{"All"},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameAll},
	})
	if err != nil {
		return nil, q.fail(methodReceiveMessage, err)
	}

	if len(result.Messages) == 0 {
		return nil, errors.NewInternalError(methodReceiveMessage, ErrNoMessages.Error()).WithCause(ErrNoMessages)
	}

	messages := make([]ports.QueueMessage[T], 0, len(result.Messages))
	for _, m := range result.Messages {
		msg := ports.QueueMessage[T]{
			MessageID:     aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Attributes:    m.Attributes,
		}
		if m.Body != nil {
			var body T
			if err := json.Unmarshal([]byte(*m.Body), &body); err != nil {
				if !q.skipUndecodable {
					return nil, errors.Raise(err, methodReceiveMessage, errors.ClassInternal)
				}
				q.logger.Warn("Undecodable message body",
					zap.String("queue", q.queue),
					zap.String("messageId", msg.MessageID),
					zap.Error(err),
				)
				msg.DecodeErr = err
			} else {
				msg.Body = &body
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteMessage acknowledges the message and reports delivery metadata
func (q *Queue[T]) DeleteMessage(ctx context.Context, receiptHandle string) (ports.DeleteResult, error) {
	url, err := q.queueURL(ctx)
	if err != nil {
		return ports.DeleteResult{}, err
	}

	result, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return ports.DeleteResult{Error: true}, q.fail(methodDeleteMessage, err)
	}

	out := ports.DeleteResult{}
	if attempts, ok := retry.GetAttemptResults(result.ResultMetadata); ok && len(attempts.Results) > 0 {
		out.RetryCount = len(attempts.Results) - 1
	}
	if requestID, ok := awsmiddleware.GetRequestIDMetadata(result.ResultMetadata); ok {
		out.RequestID = requestID
	}
	return out, nil
}

// queueURL resolves and caches the URL for a queue configured by name
func (q *Queue[T]) queueURL(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.url != "" {
		return q.url, nil
	}

	result, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(q.queue)})
	if err != nil {
		return "", q.fail(methodResolveQueue, err)
	}
	q.url = aws.ToString(result.QueueUrl)
	return q.url, nil
}

// fail classifies a backend failure. Service errors carrying a code are
// reported as "<code>: <message>"; anything else keeps its own message.
func (q *Queue[T]) fail(method string, err error) error {
	q.logger.Error("Queue operation failed",
		zap.String("method", method),
		zap.String("queue", q.queue),
		zap.Error(err),
	)

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		appErr := errors.NewInternalError(method, fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())).WithCause(err)
		appErr.Name = apiErr.ErrorCode()
		return appErr
	}
	return errors.Raise(err, method, errors.ClassInternal)
}

func withDefaults(opts, defaults ports.ReceiveOptions) ports.ReceiveOptions {
	if opts.VisibilityTimeout == 0 {
		opts.VisibilityTimeout = defaults.VisibilityTimeout
	}
	if opts.WaitTimeSeconds == 0 {
		opts.WaitTimeSeconds = defaults.WaitTimeSeconds
	}
	if opts.MaxMessages == 0 {
		opts.MaxMessages = defaults.MaxMessages
	}
	return opts
}

func isQueueURL(queue string) bool {
	return strings.HasPrefix(queue, "https://") || strings.HasPrefix(queue, "http://")
}

// IsEmptyPoll reports whether err is a Receive that found no messages
func IsEmptyPoll(err error) bool {
	return stderrors.Is(err, ErrNoMessages)
}
