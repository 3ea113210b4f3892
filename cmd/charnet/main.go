package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/charnet/internal/config"
	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/graph"
	"github.com/OFFIS-RIT/charnet/pkg/loader"
	ioloader "github.com/OFFIS-RIT/charnet/pkg/loader/io"
	s3loader "github.com/OFFIS-RIT/charnet/pkg/loader/s3"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/logger/console"
	"github.com/OFFIS-RIT/charnet/pkg/store"
	filestore "github.com/OFFIS-RIT/charnet/pkg/store/file"
	s3store "github.com/OFFIS-RIT/charnet/pkg/store/s3"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
)

func main() {
	util.LoadEnv()
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("Run failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "charnet",
		Short: "Build a character co-occurrence network from a text",
		Long: `Reads a narrative text, a name dictionary and a synonym table, counts how
often each character is mentioned and how often two characters share a
paragraph, and writes Gephi-compatible node and edge tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Env values arrive unescaped from FromEnv.
			if cmd.Flags().Changed("delimiter") {
				cfg.ParagraphDelimiter = config.UnescapeDelimiter(cfg.ParagraphDelimiter)
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfg.TextPath, "text", cfg.TextPath, "input text path")
	f.StringVar(&cfg.DictPath, "dict", cfg.DictPath, "name dictionary path")
	f.StringVar(&cfg.SynonymPath, "synonyms", cfg.SynonymPath, "synonym table path")
	f.StringVar(&cfg.NodePath, "nodes", cfg.NodePath, "node table output path")
	f.StringVar(&cfg.EdgePath, "edges", cfg.EdgePath, "edge table output path")
	f.IntVar(&cfg.MinEdgeWeight, "min-weight", cfg.MinEdgeWeight, "keep edges with a weight strictly above this")
	f.StringVar(&cfg.WriteMode, "mode", cfg.WriteMode, "write mode: overwrite or append")
	f.StringVar(&cfg.NameTag, "name-tag", cfg.NameTag, "only accept dictionary lines with this part-of-speech tag")
	f.BoolVar(&cfg.StrictSynonyms, "strict", cfg.StrictSynonyms, "abort on malformed synonym lines")
	f.StringVar(&cfg.ParagraphDelimiter, "delimiter", cfg.ParagraphDelimiter, `paragraph delimiter, escapes like \n are allowed`)
	f.StringVar(&cfg.LineEnding, "line-ending", cfg.LineEnding, "table line ending: crlf or lf")
	f.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "paragraphs tokenized in parallel")
	f.StringVar(&cfg.Storage, "storage", cfg.Storage, "input and output location: file or s3")
	f.StringVar(&cfg.Bucket, "bucket", cfg.Bucket, "bucket used with s3 storage")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	cmd.AddCommand(newEnqueueCmd(&cfg))

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg.Debug,
	})
	logger.Init(consoleLogger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	logger.Info("[Graph] Starting run", "run_id", runID, "storage", cfg.Storage, "mode", cfg.WriteMode)

	client, err := graph.NewGraphClient(cfg.GraphClientParams())
	if err != nil {
		return err
	}

	var l loader.TextFileLoader
	var storeClient store.GraphStorage
	switch cfg.Storage {
	case config.StorageS3:
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientParamsFromEnv())
		if err != nil {
			return err
		}
		l = s3loader.NewS3TextFileLoaderWithClient(cfg.Bucket, s3Client)
		storeClient = s3store.NewS3GraphStorageWithClient(s3Client, s3store.NewS3GraphStorageParams{
			Bucket:       cfg.Bucket,
			NodeKey:      cfg.NodePath,
			EdgeKey:      cfg.EdgePath,
			TableOptions: cfg.TableOptions(),
		})
	default:
		l = ioloader.NewIOTextFileLoader()
		storeClient = filestore.NewFileGraphStorage(filestore.NewFileGraphStorageParams{
			NodePath:     cfg.NodePath,
			EdgePath:     cfg.EdgePath,
			TableOptions: cfg.TableOptions(),
		})
	}

	input := graph.GraphInput{
		Text:       loader.NewTextFile(cfg.TextPath, l),
		Dictionary: loader.NewTextFile(cfg.DictPath, l),
		Synonyms:   loader.NewTextFile(cfg.SynonymPath, l),
	}
	_, stats, err := client.ProcessGraph(ctx, input, storeClient)
	if err != nil {
		return err
	}

	logger.Info("[Graph] Tables written", "run_id", runID, "nodes", cfg.NodePath, "edges", cfg.EdgePath, "node_rows", stats.DistinctNames, "edge_rows", stats.EdgesKept)
	return nil
}
