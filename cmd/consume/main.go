package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	log "github.com/fjordlane/sqs-consumer/chassis/logging"

	"github.com/fjordlane/sqs-consumer/chassis/config"
	"github.com/fjordlane/sqs-consumer/chassis/monkey"
	"github.com/fjordlane/sqs-consumer/chassis/protocol"
	"github.com/fjordlane/sqs-consumer/chassis/queue"
	"github.com/fjordlane/sqs-consumer/chassis/storage"
	"github.com/fjordlane/sqs-consumer/consumer"
)

const (
	defaultMetricsAddr = ":2112"
	defaultWorkers     = 20
)

var (
	cfgPath   string
	accessKey string
	secretKey string
	region    string
	queueName string
	waitTime  int
	workers   int
	dsn       string
)

func main() {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume an SQS queue with a worker pool until interrupted",
		RunE:  run,
	}
	cmd.Flags().StringVarP(&accessKey, "access-key", "a", "", "AWS access key ID")
	cmd.Flags().StringVarP(&secretKey, "secret-key", "s", "", "AWS secret access key")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region")
	cmd.Flags().StringVarP(&queueName, "queue", "q", "", "SQS queue name")
	cmd.Flags().IntVarP(&waitTime, "wait-time", "t", 20, "seconds to keep each poll open (max 20)")
	cmd.Flags().IntVarP(&workers, "workers", "w", defaultWorkers, "number of handler workers")
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres DSN for message deduplication (optional)")
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
	if waitTime < 0 {
		return errors.New("wait-time must not be negative")
	}
	if !cmd.Flags().Changed("workers") && appCfg.Consumer.Workers > 0 {
		workers = appCfg.Consumer.Workers
	}
	if dsn == "" {
		dsn = appCfg.Storage.DSN
	}
	cmd.SilenceUsage = true

	log.Init("consume", appCfg.Consumer.LogLevel)
	cli, err := queue.InitAWSQueue(queueCfg)
	if err != nil {
		log.WithFields(log.Fields{
			"event": "init_queue_failed",
		}).Error(err)
		return err
	}

	var dedup storage.Deduplicator
	if dsn != "" {
		dedup, err = storage.InitPGDeduplicator(storage.Config{DSN: dsn})
		if err != nil {
			log.WithFields(log.Fields{
				"event": "init_storage_failed",
			}).Error(err)
			return err
		}
	}

	pool := consumer.NewPool(consumer.Config{
		Queue:    cli,
		Handler:  newHandler(dedup),
		WaitTime: time.Duration(waitTime) * time.Second,
	}, workers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	var group sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	group.Add(1)
	go func() {
		defer group.Done()
		if err := pool.Run(ctx); err != nil {
			log.WithFields(log.Fields{
				"event": "consumer_failed",
			}).Error(err)
		}
	}()

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	metricsAddr := appCfg.Consumer.MetricsAddr
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddr
	}
	srv := &http.Server{
		Addr:    metricsAddr,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen: ", err)
		}
	}()

	log.WithFields(log.Fields{
		"event": "start_service",
	}).Info("starting ", workers, " workers")
	<-done
	log.WithFields(log.Fields{
		"event": "ctx_cancel",
	}).Info("received syscall")
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error("server shutdown failed: ", err)
	}
	group.Wait()
	return nil
}

// newHandler builds the pool handler. With a deduplicator the handler skips
// message IDs it already processed, which is how duplicate deliveries of the
// same logical message stay harmless. The monkey makes a fraction of
// handlings fail so the queue's redelivery can be watched live.
func newHandler(dedup storage.Deduplicator) consumer.Handler {
	return func(ctx context.Context, msg *queue.Message) error {
		event := &protocol.Event{}
		if err := event.FromJSON(msg.Body); err != nil {
			log.WithFields(log.Fields{
				"event":     "received_broken_message",
				"messageID": msg.ID,
			}).Error(err)
			return nil
		}
		if err := monkey.RandomizeError(nil); err != nil {
			return err
		}
		if dedup != nil {
			seen, err := dedup.Seen(ctx, msg.ID)
			if err != nil {
				return err
			}
			if seen {
				log.WithFields(log.Fields{
					"event":     "duplicate_delivery",
					"messageID": msg.ID,
				}).Warn("already handled, skipping")
				return nil
			}
		}
		log.WithFields(log.Fields{
			"event":     "receive_message",
			"messageID": msg.ID,
		}).Info(event)
		return nil
	}
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
