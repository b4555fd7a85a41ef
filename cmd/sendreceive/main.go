package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	log "github.com/fjordlane/sqs-consumer/chassis/logging"

	"github.com/fjordlane/sqs-consumer/chassis/config"
	"github.com/fjordlane/sqs-consumer/chassis/protocol"
	"github.com/fjordlane/sqs-consumer/chassis/queue"
)

var (
	cfgPath   string
	accessKey string
	secretKey string
	region    string
	queueName string
	text      string
)

func main() {
	cmd := &cobra.Command{
		Use:   "sendreceive",
		Short: "Send one message to an SQS queue and short-poll it back",
		RunE:  run,
	}
	cmd.Flags().StringVarP(&accessKey, "access-key", "a", "", "AWS access key ID")
	cmd.Flags().StringVarP(&secretKey, "secret-key", "s", "", "AWS secret access key")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region")
	cmd.Flags().StringVarP(&queueName, "queue", "q", "", "SQS queue name")
	cmd.Flags().StringVar(&text, "text", "Test SQS send and receive.", "message text to send")
	cmd.Flags().StringVar(&cfgPath, "config", "", "yaml config path (defaults to $CFG_PATH)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	appCfg, err := config.Read(cfgPath)
	if err != nil {
		return err
	}
	queueCfg := mergeQueueConfig(appCfg)
	if queueCfg.Region == "" || queueCfg.Name == "" {
		return errors.New("region and queue name are required")
	}
	cmd.SilenceUsage = true

	log.Init("sendreceive", appCfg.Consumer.LogLevel)
	cli, err := queue.InitAWSQueue(queueCfg)
	if err != nil {
		log.WithFields(log.Fields{
			"event": "init_queue_failed",
		}).Error(err)
		return err
	}
	ctx := context.Background()

	event := &protocol.Event{Source: "sendreceive", Text: text}
	body, err := event.JSON()
	if err != nil {
		return err
	}
	messageID, err := cli.Send(ctx, body)
	if err != nil {
		log.WithFields(log.Fields{
			"event": "send_failed",
		}).Error(err)
		return err
	}
	log.WithFields(log.Fields{
		"event":     "message_sent",
		"messageID": messageID,
	}).Info("message sent")

	// Short poll: a zero wait returns immediately and may well come back
	// empty even though the message was just sent. The queue is distributed;
	// an empty batch never means the message is lost.
	messages, err := cli.Receive(ctx, 0)
	if err != nil {
		log.WithFields(log.Fields{
			"event": "receive_failed",
		}).Error(err)
		return err
	}
	for _, msg := range messages {
		received := &protocol.Event{}
		if err := received.FromJSON(msg.Body); err != nil {
			log.WithFields(log.Fields{
				"event":     "received_broken_message",
				"messageID": msg.ID,
			}).Error(err)
			continue
		}
		log.WithFields(log.Fields{
			"event":     "receive_message",
			"messageID": msg.ID,
		}).Info(received)
		if err := cli.Acknowledge(ctx, msg); err != nil {
			log.WithFields(log.Fields{
				"event":     "ack_message_failed",
				"messageID": msg.ID,
			}).Error(err)
		}
	}
	log.WithFields(log.Fields{
		"event": "example_completed",
	}).Info(len(messages), " messages received")
	return nil
}

func mergeQueueConfig(appCfg *config.AppConfig) queue.Config {
	return queue.Config{
		Name:               pick(queueName, appCfg.Queue.Name),
		Region:             pick(region, appCfg.AWS.Region),
		AccessKey:          pick(accessKey, appCfg.AWS.AccessKey),
		SecretKey:          pick(secretKey, appCfg.AWS.SecretKey),
		CredentialsFile:    appCfg.AWS.CredentialsFile,
		CredentialsProfile: appCfg.AWS.CredentialsProfile,
		Retries:            appCfg.AWS.Retries,
	}
}

func pick(flagValue, fileValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return fileValue
}
