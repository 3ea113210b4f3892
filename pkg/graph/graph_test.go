package graph

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/loader"
	"github.com/OFFIS-RIT/charnet/pkg/names"
	"github.com/OFFIS-RIT/charnet/pkg/tokenizer"
)

type recordingStore struct {
	saved []*common.Graph
	err   error
}

func (s *recordingStore) SaveGraph(ctx context.Context, graph *common.Graph) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, graph)
	return nil
}

func newTestClient(t *testing.T, minWeight int) *GraphClient {
	t.Helper()
	client, err := NewGraphClient(NewGraphClientParams{
		ParallelParagraphs: 2,
		MinEdgeWeight:      &minWeight,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func newInput(files loader.MemoryLoader) GraphInput {
	return GraphInput{
		Text:       loader.NewTextFile("text.txt", files),
		Dictionary: loader.NewTextFile("dict.txt", files),
		Synonyms:   loader.NewTextFile("synonyms.txt", files),
	}
}

func TestProcessGraphEndToEnd(t *testing.T) {
	files := loader.MemoryLoader{
		"text.txt":     []byte("A and B talked.\r\n\r\nB and C talked."),
		"dict.txt":     []byte("A\nB\nC\n"),
		"synonyms.txt": []byte(""),
	}
	st := &recordingStore{}

	graph, stats, err := newTestClient(t, 0).ProcessGraph(context.Background(), newInput(files), st)
	if err != nil {
		t.Fatal(err)
	}

	wantNodes := []common.Node{
		{ID: "A", Label: "A", Weight: 1},
		{ID: "B", Label: "B", Weight: 2},
		{ID: "C", Label: "C", Weight: 1},
	}
	if !reflect.DeepEqual(graph.Nodes, wantNodes) {
		t.Fatalf("unexpected nodes: got %v, want %v", graph.Nodes, wantNodes)
	}
	wantEdges := []common.Edge{
		{Source: "A", Target: "B", Weight: 1},
		{Source: "B", Target: "A", Weight: 1},
		{Source: "B", Target: "C", Weight: 1},
		{Source: "C", Target: "B", Weight: 1},
	}
	if !reflect.DeepEqual(graph.Edges, wantEdges) {
		t.Fatalf("unexpected edges: got %v, want %v", graph.Edges, wantEdges)
	}

	if len(st.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(st.saved))
	}
	want := common.Stats{Paragraphs: 2, ParagraphsWithNames: 2, DistinctNames: 3, Mentions: 4, Pairs: 4, EdgesKept: 4}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v, want %+v", stats, want)
	}
}

func TestProcessGraphResolvesSynonyms(t *testing.T) {
	files := loader.MemoryLoader{
		"text.txt":     []byte("Bob met A.\n\nB left."),
		"dict.txt":     []byte("A\nB\nBob\n"),
		"synonyms.txt": []byte("Bob B\n"),
	}

	client := newTestClient(t, 0)
	in, err := client.loadInputs(context.Background(), newInput(files))
	if err != nil {
		t.Fatal(err)
	}
	ext, err := client.BuildGraph(context.Background(), in.text, in.dict, in.synonyms)
	if err != nil {
		t.Fatal(err)
	}

	if got := ext.Counter.Get("B"); got != 2 {
		t.Fatalf("unexpected count for B: got %d, want 2", got)
	}
	if ext.Counter.Get("Bob") != 0 || ext.Relationships.HasNode("Bob") {
		t.Fatal("alias must never become a node")
	}
	if got := ext.Relationships.Weight("B", "A"); got != 1 {
		t.Fatalf("unexpected weight B->A: got %d, want 1", got)
	}
}

func TestProcessGraphThreshold(t *testing.T) {
	// A and B share four paragraphs, B and C three.
	paragraphs := []string{"A B", "A B", "A B", "A B", "B C", "B C", "B C"}
	files := loader.MemoryLoader{
		"text.txt":     []byte(strings.Join(paragraphs, "\n\n")),
		"dict.txt":     []byte("A\nB\nC\n"),
		"synonyms.txt": nil,
	}

	graph, _, err := newTestClient(t, DefaultMinEdgeWeight).ProcessGraph(context.Background(), newInput(files), &recordingStore{})
	if err != nil {
		t.Fatal(err)
	}

	want := []common.Edge{
		{Source: "A", Target: "B", Weight: 4},
		{Source: "B", Target: "A", Weight: 4},
	}
	if !reflect.DeepEqual(graph.Edges, want) {
		t.Fatalf("unexpected edges: got %v, want %v", graph.Edges, want)
	}
}

func TestProcessGraphMissingInput(t *testing.T) {
	files := loader.MemoryLoader{
		"text.txt": []byte("A"),
		"dict.txt": []byte("A\n"),
	}
	st := &recordingStore{}

	_, _, err := newTestClient(t, 0).ProcessGraph(context.Background(), newInput(files), st)
	if !errors.Is(err, loader.ErrMissingInputFile) {
		t.Fatalf("expected ErrMissingInputFile, got %v", err)
	}
	if len(st.saved) != 0 {
		t.Fatal("nothing may be saved after a failed load")
	}
}

func TestProcessGraphStrictSynonyms(t *testing.T) {
	files := loader.MemoryLoader{
		"text.txt":     []byte("A"),
		"dict.txt":     []byte("A\n"),
		"synonyms.txt": []byte("Bob B\nbroken\n"),
	}
	client, err := NewGraphClient(NewGraphClientParams{StrictSynonyms: true})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = client.ProcessGraph(context.Background(), newInput(files), &recordingStore{})
	var entryErr *names.MalformedEntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("expected MalformedEntryError, got %v", err)
	}
	if entryErr.Line != 2 {
		t.Fatalf("unexpected line: got %d, want 2", entryErr.Line)
	}
}

func TestProcessGraphStoreFailure(t *testing.T) {
	files := loader.MemoryLoader{
		"text.txt":     []byte("A"),
		"dict.txt":     []byte("A\n"),
		"synonyms.txt": nil,
	}
	storeErr := errors.New("disk full")

	_, _, err := newTestClient(t, 0).ProcessGraph(context.Background(), newInput(files), &recordingStore{err: storeErr})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestBuildGraphIsDeterministic(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch i % 3 {
		case 0:
			sb.WriteString("Ann saw Ben")
		case 1:
			sb.WriteString("Cid and Ann")
		default:
			sb.WriteString("nobody here")
		}
	}
	dict := names.NewDictionary("Ann", "Ben", "Cid")

	var first []common.Edge
	for _, parallel := range []int{1, 3, 8} {
		client, err := NewGraphClient(NewGraphClientParams{ParallelParagraphs: parallel})
		if err != nil {
			t.Fatal(err)
		}
		ext, err := client.BuildGraph(context.Background(), sb.String(), dict, nil)
		if err != nil {
			t.Fatal(err)
		}
		edges := ExportEdges(ext.Relationships, 0)
		if first == nil {
			first = edges
			continue
		}
		if !reflect.DeepEqual(edges, first) {
			t.Fatalf("parallel=%d changed the result: got %v, want %v", parallel, edges, first)
		}
	}
}

func TestBuildGraphFactoryError(t *testing.T) {
	factoryErr := errors.New("no tokenizer")
	client, err := NewGraphClient(NewGraphClientParams{
		TokenizerFactory: func([]string) (tokenizer.Tokenizer, error) { return nil, factoryErr },
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.BuildGraph(context.Background(), "A", names.NewDictionary("A"), nil)
	if !errors.Is(err, factoryErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestBuildGraphCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, 0).BuildGraph(ctx, "A\n\nB", names.NewDictionary("A", "B"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewGraphClientMinEdgeWeight(t *testing.T) {
	zero, negative := 0, -1

	tests := []struct {
		name    string
		weight  *int
		want    int
		wantErr bool
	}{
		{name: "unset uses default", weight: nil, want: DefaultMinEdgeWeight},
		{name: "zero keeps every edge", weight: &zero, want: 0},
		{name: "negative rejected", weight: &negative, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewGraphClient(NewGraphClientParams{MinEdgeWeight: tt.weight})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for negative min edge weight")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if client.minEdgeWeight != tt.want {
				t.Fatalf("unexpected min edge weight: got %d, want %d", client.minEdgeWeight, tt.want)
			}
		})
	}
}
