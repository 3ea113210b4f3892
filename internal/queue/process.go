package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/charnet/internal/config"
	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/graph"
	"github.com/OFFIS-RIT/charnet/pkg/loader"
	"github.com/OFFIS-RIT/charnet/pkg/loader/s3"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/names"
	"github.com/OFFIS-RIT/charnet/pkg/store"
	s3store "github.com/OFFIS-RIT/charnet/pkg/store/s3"

	"github.com/go-playground/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	TopicRelationshipDone   = "relationship.done"
	TopicRelationshipFailed = "relationship.failed"
)

// ErrInvalidMessage marks a message that can never succeed; the worker
// dead-letters it without retrying.
var ErrInvalidMessage = errors.New("invalid relationship message")

// RelationshipJobMsg asks the worker to build a graph from objects in the
// configured bucket. Unset options fall back to the worker configuration.
type RelationshipJobMsg struct {
	JobID         string `json:"job_id"`
	TextKey       string `json:"text_key" validate:"required"`
	DictKey       string `json:"dict_key" validate:"required"`
	SynonymKey    string `json:"synonym_key" validate:"required"`
	NodeKey       string `json:"node_key" validate:"required"`
	EdgeKey       string `json:"edge_key" validate:"required"`
	MinEdgeWeight *int   `json:"min_edge_weight,omitempty" validate:"omitempty,min=0"`
	WriteMode     string `json:"write_mode,omitempty" validate:"omitempty,oneof=overwrite append"`
	NameTag       string `json:"name_tag,omitempty"`
	Strict        *bool  `json:"strict,omitempty"`
}

// RelationshipResultMsg is published on the topic exchange when a job ends.
type RelationshipResultMsg struct {
	JobID   string        `json:"job_id"`
	Status  string        `json:"status"`
	NodeKey string        `json:"node_key,omitempty"`
	EdgeKey string        `json:"edge_key,omitempty"`
	Stats   *common.Stats `json:"stats,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool {
	var entryErr *names.MalformedEntryError
	return errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, loader.ErrMissingInputFile) ||
		errors.As(err, &entryErr)
}

// prepare validates the message and assigns a job id when it has none.
func (m *RelationshipJobMsg) prepare() error {
	if err := validator.New().Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.JobID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate job id: %w", err)
		}
		m.JobID = id
	}
	return nil
}

func parseRelationshipMessage(msg string) (*RelationshipJobMsg, error) {
	data := new(RelationshipJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := data.prepare(); err != nil {
		return nil, err
	}
	return data, nil
}

// JobFromConfig describes a run configured through env and flags as a
// queue job. Paths become object keys in the worker's bucket.
func JobFromConfig(cfg config.Config) RelationshipJobMsg {
	minWeight := cfg.MinEdgeWeight
	strict := cfg.StrictSynonyms
	return RelationshipJobMsg{
		TextKey:       cfg.TextPath,
		DictKey:       cfg.DictPath,
		SynonymKey:    cfg.SynonymPath,
		NodeKey:       cfg.NodePath,
		EdgeKey:       cfg.EdgePath,
		MinEdgeWeight: &minWeight,
		WriteMode:     cfg.WriteMode,
		NameTag:       cfg.NameTag,
		Strict:        &strict,
	}
}

// EnqueueRelationshipJob validates job and publishes it to
// RelationshipQueue. It returns the job id, generated when job has none.
func EnqueueRelationshipJob(ch Channel, job RelationshipJobMsg) (string, error) {
	if err := job.prepare(); err != nil {
		return "", err
	}

	b, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}
	if err := PublishFIFO(ch, RelationshipQueue, b); err != nil {
		return "", fmt.Errorf("failed to publish job %s: %w", job.JobID, err)
	}

	logger.Info("[Queue] Relationship job enqueued", "job_id", job.JobID, "text", job.TextKey)
	return job.JobID, nil
}

// jobConfig applies the overrides of a message to the worker configuration.
func jobConfig(cfg config.Config, data *RelationshipJobMsg) config.Config {
	cfg.TextPath = data.TextKey
	cfg.DictPath = data.DictKey
	cfg.SynonymPath = data.SynonymKey
	cfg.NodePath = data.NodeKey
	cfg.EdgePath = data.EdgeKey
	if data.MinEdgeWeight != nil {
		cfg.MinEdgeWeight = *data.MinEdgeWeight
	}
	if data.WriteMode != "" {
		cfg.WriteMode = data.WriteMode
	}
	if data.NameTag != "" {
		cfg.NameTag = data.NameTag
	}
	if data.Strict != nil {
		cfg.StrictSynonyms = *data.Strict
	}
	return cfg
}

// ProcessRelationshipMessage runs one graph job. Inputs are read from and
// tables written to cfg.Bucket. The outcome is published on the topic
// exchange whether or not the job succeeded.
func ProcessRelationshipMessage(
	ctx context.Context,
	cfg config.Config,
	objects storage.ObjectAPI,
	ch Channel,
	msg string,
) (err error) {
	data, err := parseRelationshipMessage(msg)
	if err != nil {
		return err
	}

	result := RelationshipResultMsg{
		JobID:   data.JobID,
		Status:  "done",
		NodeKey: data.NodeKey,
		EdgeKey: data.EdgeKey,
	}
	defer func() {
		topic := TopicRelationshipDone
		if err != nil {
			topic = TopicRelationshipFailed
			result.Status = "failed"
			result.Error = err.Error()
		}
		b, mErr := json.Marshal(result)
		if mErr != nil {
			logger.Warn("[Queue] Failed to encode result", "job_id", data.JobID, "err", mErr)
			return
		}
		if pErr := PublishTopic(ch, topic, b); pErr != nil {
			logger.Warn("[Queue] Failed to publish result", "job_id", data.JobID, "topic", topic, "err", pErr)
		}
	}()

	jobCfg := jobConfig(cfg, data)
	if err = jobCfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	logger.Info("[Queue] Processing relationship job", "job_id", data.JobID, "text", data.TextKey)

	client, err := graph.NewGraphClient(jobCfg.GraphClientParams())
	if err != nil {
		return err
	}

	l := s3.NewS3TextFileLoaderWithClient(jobCfg.Bucket, objects)
	input := graph.GraphInput{
		Text:       loader.NewTextFile(jobCfg.TextPath, l),
		Dictionary: loader.NewTextFile(jobCfg.DictPath, l),
		Synonyms:   loader.NewTextFile(jobCfg.SynonymPath, l),
	}
	var storeClient store.GraphStorage = s3store.NewS3GraphStorageWithClient(objects, s3store.NewS3GraphStorageParams{
		Bucket:       jobCfg.Bucket,
		NodeKey:      jobCfg.NodePath,
		EdgeKey:      jobCfg.EdgePath,
		TableOptions: jobCfg.TableOptions(),
	})

	_, stats, err := client.ProcessGraph(ctx, input, storeClient)
	if err != nil {
		return fmt.Errorf("job %s: %w", data.JobID, err)
	}
	result.Stats = &stats

	logger.Info("[Queue] Relationship job completed", "job_id", data.JobID, "nodes", stats.DistinctNames, "edges", stats.EdgesKept)
	return nil
}
