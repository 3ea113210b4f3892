package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/charnet/internal/config"
	"github.com/OFFIS-RIT/charnet/internal/queue"
	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/logger/console"

	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Defaults for jobs; messages override paths and options.
	cfg := config.FromEnv()
	cfg.Storage = config.StorageS3

	// Init s3 client
	client, err := storage.NewS3Client(ctx, storage.S3ClientParamsFromEnv())
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.RelationshipQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// prefetch=1: one job at a time per worker
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.RelationshipQueue,
		queue.RelationshipQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.RelationshipQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.RelationshipQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.RelationshipQueue)
					stop()
					return
				}
				handleMessage(ctx, cfg, client, ch, consumerCh, msg)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleMessage(
	ctx context.Context,
	cfg config.Config,
	client storage.ObjectAPI,
	ch *amqp.Channel,
	consumerCh *amqp.Channel,
	msg amqp.Delivery,
) {
	startTime := time.Now()
	logger.Info("Received message", "queue", queue.RelationshipQueue)

	err := queue.ProcessRelationshipMessage(ctx, cfg, client, ch, string(msg.Body))
	if err != nil {
		logger.Error("Error processing message", "queue", queue.RelationshipQueue, "err", err)
		queue.HandleProcessingError(consumerCh, msg, queue.RelationshipQueue, queue.IsPermanent(err))
	} else {
		if err := msg.Ack(false); err != nil {
			logger.Error("Failed to ack message", "err", err)
		}
		logger.Info("Message processed successfully", "queue", queue.RelationshipQueue)
	}

	processingDuration := time.Since(startTime)
	hours := int(processingDuration.Hours())
	minutes := int(processingDuration.Minutes()) % 60
	seconds := int(processingDuration.Seconds()) % 60
	logger.Info(
		"Processing time",
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)
	logger.Info("Waiting for next message")
}
