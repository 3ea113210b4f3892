package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/charnet/internal/config"
	"github.com/OFFIS-RIT/charnet/internal/storage"
	"github.com/OFFIS-RIT/charnet/pkg/loader"

	"github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	declared  []string
	published []published
	err       error
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp091.Queue{Name: name}, nil
}

func (c *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func TestSetupQueues(t *testing.T) {
	ch := &fakeChannel{}
	if err := SetupQueues(ch, []string{RelationshipQueue}); err != nil {
		t.Fatal(err)
	}
	want := []string{"relationship_queue", "relationship_queue_dlq", "relationship_queue_retry"}
	if len(ch.declared) != len(want) {
		t.Fatalf("unexpected queues: got %v, want %v", ch.declared, want)
	}
	for i := range want {
		if ch.declared[i] != want[i] {
			t.Fatalf("unexpected queues: got %v, want %v", ch.declared, want)
		}
	}
}

func TestHandleProcessingError(t *testing.T) {
	tests := []struct {
		name      string
		headers   amqp091.Table
		permanent bool
		wantKey   string
		wantTries int32
	}{
		{name: "first failure", wantKey: "relationship_queue_retry", wantTries: 1},
		{name: "retried", headers: amqp091.Table{"x-retries": int32(3)}, wantKey: "relationship_queue_retry", wantTries: 4},
		{name: "exhausted", headers: amqp091.Table{"x-retries": int32(MaxRetries)}, wantKey: "relationship_queue_dlq", wantTries: MaxRetries},
		{name: "permanent", permanent: true, wantKey: "relationship_queue_dlq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			ack := &fakeAcknowledger{}
			msg := amqp091.Delivery{Acknowledger: ack, Headers: tt.headers, Body: []byte("{}")}

			HandleProcessingError(ch, msg, RelationshipQueue, tt.permanent)

			if len(ch.published) != 1 || ch.published[0].key != tt.wantKey {
				t.Fatalf("unexpected publish: got %+v, want key %q", ch.published, tt.wantKey)
			}
			if ack.acked != 1 {
				t.Fatalf("expected original message to be acked, got %d acks", ack.acked)
			}
			if tt.wantTries > 0 {
				if got := ch.published[0].msg.Headers["x-retries"]; got != tt.wantTries {
					t.Fatalf("unexpected retries header: got %v, want %d", got, tt.wantTries)
				}
			}
		})
	}
}

func TestHandleProcessingErrorRequeuesOnPublishFailure(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	ack := &fakeAcknowledger{}

	HandleProcessingError(ch, amqp091.Delivery{Acknowledger: ack}, RelationshipQueue, false)

	if ack.nacked != 1 || !ack.requeue || ack.acked != 0 {
		t.Fatalf("expected nack with requeue, got %+v", ack)
	}
}

func workerConfig() config.Config {
	return config.Config{
		MinEdgeWeight:      3,
		WriteMode:          "overwrite",
		ParagraphDelimiter: "\n\n",
		LineEnding:         "lf",
		Parallel:           2,
		Storage:            config.StorageS3,
		Bucket:             "novels",
	}
}

func TestProcessRelationshipMessage(t *testing.T) {
	objects := storage.NewMemoryObjectStore()
	objects.Put("novels", "in/text.txt", []byte("A and B talked.\r\n\r\nB and C talked."))
	objects.Put("novels", "in/dict.txt", []byte("A\nB\nC\n"))
	objects.Put("novels", "in/synonyms.txt", []byte(""))
	ch := &fakeChannel{}

	msg := `{"job_id":"job-1","text_key":"in/text.txt","dict_key":"in/dict.txt","synonym_key":"in/synonyms.txt",` +
		`"node_key":"out/node.csv","edge_key":"out/edge.csv","min_edge_weight":0}`
	if err := ProcessRelationshipMessage(context.Background(), workerConfig(), objects, ch, msg); err != nil {
		t.Fatal(err)
	}

	nodes, ok := objects.Object("novels", "out/node.csv")
	if !ok || string(nodes) != "Id,Label,Weight\nA,A,1\nB,B,2\nC,C,1\n" {
		t.Fatalf("unexpected node table: got %q", nodes)
	}
	edges, _ := objects.Object("novels", "out/edge.csv")
	if string(edges) != "Source,Target,Weight\nA,B,1\nB,A,1\nB,C,1\nC,B,1\n" {
		t.Fatalf("unexpected edge table: got %q", edges)
	}

	if len(ch.published) != 1 || ch.published[0].key != TopicRelationshipDone {
		t.Fatalf("expected one done event, got %+v", ch.published)
	}
	var result RelationshipResultMsg
	if err := json.Unmarshal(ch.published[0].msg.Body, &result); err != nil {
		t.Fatal(err)
	}
	if result.JobID != "job-1" || result.Stats == nil || result.Stats.EdgesKept != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestProcessRelationshipMessageMissingInput(t *testing.T) {
	ch := &fakeChannel{}
	msg := `{"text_key":"in/text.txt","dict_key":"in/dict.txt","synonym_key":"in/synonyms.txt","node_key":"n.csv","edge_key":"e.csv"}`

	err := ProcessRelationshipMessage(context.Background(), workerConfig(), storage.NewMemoryObjectStore(), ch, msg)
	if !errors.Is(err, loader.ErrMissingInputFile) {
		t.Fatalf("expected ErrMissingInputFile, got %v", err)
	}
	if !IsPermanent(err) {
		t.Fatal("missing input must not be retried")
	}

	if len(ch.published) != 1 || ch.published[0].key != TopicRelationshipFailed {
		t.Fatalf("expected one failed event, got %+v", ch.published)
	}
	var result RelationshipResultMsg
	if err := json.Unmarshal(ch.published[0].msg.Body, &result); err != nil {
		t.Fatal(err)
	}
	if result.JobID == "" {
		t.Fatal("expected a generated job id")
	}
}

func TestProcessRelationshipMessageInvalid(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{name: "not json", msg: "index please"},
		{name: "missing keys", msg: `{"text_key":"t.txt"}`},
		{name: "bad mode", msg: `{"text_key":"t","dict_key":"d","synonym_key":"s","node_key":"n","edge_key":"e","write_mode":"a+"}`},
		{name: "negative weight", msg: `{"text_key":"t","dict_key":"d","synonym_key":"s","node_key":"n","edge_key":"e","min_edge_weight":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProcessRelationshipMessage(context.Background(), workerConfig(), storage.NewMemoryObjectStore(), &fakeChannel{}, tt.msg)
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage, got %v", err)
			}
			if !IsPermanent(err) {
				t.Fatal("invalid messages must not be retried")
			}
		})
	}
}

func TestEnqueueRelationshipJob(t *testing.T) {
	cfg := workerConfig()
	cfg.TextPath = "in/text.txt"
	cfg.DictPath = "in/dict.txt"
	cfg.SynonymPath = "in/synonyms.txt"
	cfg.NodePath = "out/node.csv"
	cfg.EdgePath = "out/edge.csv"
	cfg.MinEdgeWeight = 0
	ch := &fakeChannel{}

	jobID, err := EnqueueRelationshipJob(ch, JobFromConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if jobID == "" {
		t.Fatal("expected a generated job id")
	}
	if len(ch.published) != 1 || ch.published[0].exchange != "" || ch.published[0].key != RelationshipQueue {
		t.Fatalf("unexpected publish: got %+v", ch.published)
	}
	if ch.published[0].msg.DeliveryMode != amqp091.Persistent {
		t.Fatal("jobs must be published as persistent messages")
	}

	// The worker accepts what the producer sends.
	objects := storage.NewMemoryObjectStore()
	objects.Put("novels", "in/text.txt", []byte("A and B talked.\n\nB and C talked."))
	objects.Put("novels", "in/dict.txt", []byte("A\nB\nC\n"))
	objects.Put("novels", "in/synonyms.txt", nil)
	events := &fakeChannel{}
	if err := ProcessRelationshipMessage(context.Background(), workerConfig(), objects, events, string(ch.published[0].msg.Body)); err != nil {
		t.Fatal(err)
	}

	var result RelationshipResultMsg
	if err := json.Unmarshal(events.published[0].msg.Body, &result); err != nil {
		t.Fatal(err)
	}
	if result.JobID != jobID || result.Stats == nil || result.Stats.EdgesKept != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestEnqueueRelationshipJobRejectsInvalid(t *testing.T) {
	ch := &fakeChannel{}

	_, err := EnqueueRelationshipJob(ch, RelationshipJobMsg{TextKey: "in/text.txt"})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if len(ch.published) != 0 {
		t.Fatal("invalid jobs must not be published")
	}
}
