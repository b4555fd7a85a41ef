package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	sqsiface.SQSAPI

	receiveIn  *sqs.ReceiveMessageInput
	receiveOut *sqs.ReceiveMessageOutput
	receiveErr error

	deleteIn  *sqs.DeleteMessageInput
	deleteErr error

	sendOut *sqs.SendMessageOutput
	sendErr error
}

func (m *mockSQS) ReceiveMessageWithContext(ctx aws.Context, input *sqs.ReceiveMessageInput, opts ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	m.receiveIn = input
	if m.receiveErr != nil {
		return nil, m.receiveErr
	}
	return m.receiveOut, nil
}

func (m *mockSQS) DeleteMessageWithContext(ctx aws.Context, input *sqs.DeleteMessageInput, opts ...request.Option) (*sqs.DeleteMessageOutput, error) {
	m.deleteIn = input
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func (m *mockSQS) SendMessageWithContext(ctx aws.Context, input *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.sendOut, nil
}

func TestReceiveMapsMessages(t *testing.T) {
	mock := &mockSQS{
		receiveOut: &sqs.ReceiveMessageOutput{
			Messages: []*sqs.Message{
				{
					MessageId:     aws.String("m1"),
					Body:          aws.String("first"),
					ReceiptHandle: aws.String("rh1"),
				},
				{
					MessageId:     aws.String("m2"),
					Body:          aws.String("second"),
					ReceiptHandle: aws.String("rh2"),
				},
			},
		},
	}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	messages, err := q.Receive(context.Background(), 5*time.Second)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, &Message{ID: "m1", Body: "first", ReceiptHandle: "rh1"}, messages[0])
	assert.Equal(t, &Message{ID: "m2", Body: "second", ReceiptHandle: "rh2"}, messages[1])
	assert.Equal(t, int64(5), aws.Int64Value(mock.receiveIn.WaitTimeSeconds))
	assert.Equal(t, int64(maxMessagesPerReceive), aws.Int64Value(mock.receiveIn.MaxNumberOfMessages))
}

func TestReceiveCapsWaitTime(t *testing.T) {
	mock := &mockSQS{receiveOut: &sqs.ReceiveMessageOutput{}}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	_, err := q.Receive(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(20), aws.Int64Value(mock.receiveIn.WaitTimeSeconds))
}

func TestReceiveEmptyIsNotAnError(t *testing.T) {
	mock := &mockSQS{receiveOut: &sqs.ReceiveMessageOutput{}}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	messages, err := q.Receive(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAcknowledgeTreatsStaleReceiptAsNoOp(t *testing.T) {
	for _, code := range []string{sqs.ErrCodeReceiptHandleIsInvalid, "InvalidParameterValue"} {
		mock := &mockSQS{deleteErr: awserr.New(code, "expired", nil)}
		q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

		err := q.Acknowledge(context.Background(), &Message{ID: "m1", ReceiptHandle: "rh1"})
		assert.NoError(t, err, "code %s must be benign", code)
	}
}

func TestAcknowledgePropagatesOtherErrors(t *testing.T) {
	mock := &mockSQS{deleteErr: awserr.New("InternalError", "boom", nil)}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	err := q.Acknowledge(context.Background(), &Message{ID: "m1", ReceiptHandle: "rh1"})
	assert.Error(t, err)
}

func TestAcknowledgeUsesReceiptHandle(t *testing.T) {
	mock := &mockSQS{}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	require.NoError(t, q.Acknowledge(context.Background(), &Message{ID: "m1", ReceiptHandle: "rh1"}))
	assert.Equal(t, "rh1", aws.StringValue(mock.deleteIn.ReceiptHandle))
	assert.Equal(t, q.QueueURL, aws.StringValue(mock.deleteIn.QueueUrl))
}

func TestSendReturnsMessageID(t *testing.T) {
	mock := &mockSQS{sendOut: &sqs.SendMessageOutput{MessageId: aws.String("m42")}}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	id, err := q.Send(context.Background(), "payload")
	require.NoError(t, err)
	assert.Equal(t, "m42", id)
}

func TestSendPropagatesErrors(t *testing.T) {
	mock := &mockSQS{sendErr: errors.New("network down")}
	q := &AWSQueue{QueueURL: "https://example.test/q", queue: mock}

	_, err := q.Send(context.Background(), "payload")
	assert.Error(t, err)
}
