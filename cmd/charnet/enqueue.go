package main

import (
	"fmt"

	"github.com/OFFIS-RIT/charnet/internal/config"
	"github.com/OFFIS-RIT/charnet/internal/queue"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/logger/console"

	"github.com/spf13/cobra"
)

func newEnqueueCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue",
		Short: "Send the run to the relationship worker instead of running it here",
		Long: `Publishes the configured run as a job on the relationship queue. Paths are
object keys in the worker's bucket; the worker writes the tables there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug: cfg.Debug,
			}))

			conn := queue.Init()
			defer conn.Close()

			ch, err := conn.Channel()
			if err != nil {
				return fmt.Errorf("failed to open channel: %w", err)
			}
			defer ch.Close()

			jobID, err := enqueue(ch, *cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), jobID)
			return nil
		},
	}
}

// enqueue validates cfg like a local run would and publishes it as a job.
func enqueue(ch queue.Channel, cfg config.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return queue.EnqueueRelationshipJob(ch, queue.JobFromConfig(cfg))
}
