package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/fjordlane/sqs-consumer/chassis/logging"

	staticcreds "github.com/fjordlane/sqs-consumer/chassis/credentials"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// SQS returns at most ten messages per receive call.
const maxMessagesPerReceive = 10

// AWSQueue implementation
type AWSQueue struct {
	QueueURL string
	queue    sqsiface.SQSAPI
}

// InitAWSQueue builds an SQS client and resolves the queue by name.
// Credentials come from the static key pair when one is given, otherwise
// from the shared credentials file/profile.
func InitAWSQueue(cfg Config) (Client, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = staticcreds.New(cfg.AccessKey, cfg.SecretKey)
	} else {
		creds = credentials.NewSharedCredentials(cfg.CredentialsFile, cfg.CredentialsProfile)
	}
	ssn, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: creds,
		MaxRetries:  aws.Int(cfg.Retries),
	})
	if err != nil {
		return nil, err
	}
	cli := sqs.New(ssn)
	resp, err := cli.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(cfg.Name),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == sqs.ErrCodeQueueDoesNotExist {
			return nil, fmt.Errorf("%w: %s", ErrQueueNotFound, cfg.Name)
		}
		return nil, err
	}
	log.WithFields(log.Fields{
		"event": "resolve_queue",
		"queue": "aws_sqs",
	}).Debug(aws.StringValue(resp.QueueUrl))
	return &AWSQueue{
		queue:    cli,
		QueueURL: aws.StringValue(resp.QueueUrl),
	}, nil
}

// Send ...
func (q *AWSQueue) Send(ctx context.Context, body string) (string, error) {
	msg := &sqs.SendMessageInput{
		MessageBody: aws.String(body),
		QueueUrl:    aws.String(q.QueueURL),
	}
	sendResponse, err := q.queue.SendMessageWithContext(ctx, msg)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"event": "send_message",
		"queue": "aws_sqs",
	}).Debug(aws.StringValue(sendResponse.MessageId))
	return aws.StringValue(sendResponse.MessageId), nil
}

// Receive ...
func (q *AWSQueue) Receive(ctx context.Context, wait time.Duration) ([]*Message, error) {
	if wait > MaxWaitTime {
		wait = MaxWaitTime
	}
	receiveRequest := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.QueueURL),
		MaxNumberOfMessages: aws.Int64(maxMessagesPerReceive),
		WaitTimeSeconds:     aws.Int64(int64(wait / time.Second)),
	}
	receiveResponse, err := q.queue.ReceiveMessageWithContext(ctx, receiveRequest)
	if err != nil {
		return nil, err
	}
	messages := make([]*Message, 0, len(receiveResponse.Messages))
	for _, m := range receiveResponse.Messages {
		messages = append(messages, &Message{
			ID:            aws.StringValue(m.MessageId),
			Body:          aws.StringValue(m.Body),
			ReceiptHandle: aws.StringValue(m.ReceiptHandle),
		})
	}
	log.WithFields(log.Fields{
		"event": "receive_message",
		"queue": "aws_sqs",
	}).Debug(len(messages), " messages")
	return messages, nil
}

// Acknowledge ...
func (q *AWSQueue) Acknowledge(ctx context.Context, msg *Message) error {
	deleteRequest := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.QueueURL),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	}
	_, err := q.queue.DeleteMessageWithContext(ctx, deleteRequest)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && staleReceipt(aerr.Code()) {
			// The delivery was already acknowledged or its handle expired.
			log.WithFields(log.Fields{
				"event": "stale_receipt",
				"queue": "aws_sqs",
			}).Debug(msg.ID)
			return nil
		}
		return err
	}
	log.WithFields(log.Fields{
		"event": "delete_message",
		"queue": "aws_sqs",
	}).Debug(msg.ID)
	return nil
}

func staleReceipt(code string) bool {
	return code == sqs.ErrCodeReceiptHandleIsInvalid || code == "InvalidParameterValue"
}
