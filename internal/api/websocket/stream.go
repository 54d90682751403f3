// Package websocket provides the trace stream for the ontology query API:
// a live feed of the nodes a single query's Traversal Engine visits, for
// observability/debugging of the BFS. It never changes the
// YES/NO/DONT_KNOW semantics of the query it observes.
package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// FrameType distinguishes trace stream message kinds.
type FrameType string

const (
	// FrameVisit reports a single entity the traversal dequeued.
	FrameVisit FrameType = "visit"
	// FrameComplete reports the query's final result.
	FrameComplete FrameType = "complete"
	// FrameError reports a fatal streaming error.
	FrameError FrameType = "error"
)

// Frame is a single message in the trace stream protocol.
type Frame struct {
	Type      FrameType `json:"type"`
	Entity    string    `json:"entity,omitempty"`
	Depth     int       `json:"depth,omitempty"`
	EdgeType  string    `json:"accepted_edge_type,omitempty"`
	Result    string    `json:"result,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TraceStream writes BFS visitation frames to a single WebSocket
// connection for the duration of one query, thread-safe for the
// traversal goroutine to call concurrently with connection teardown.
type TraceStream struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	logger    *slog.Logger
	writeWait time.Duration
	closed    bool
}

// Config holds TraceStream construction settings.
type Config struct {
	Conn      *websocket.Conn
	Logger    *slog.Logger
	WriteWait time.Duration
}

// NewTraceStream creates a TraceStream over an upgraded connection.
func NewTraceStream(cfg Config) *TraceStream {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteWait == 0 {
		cfg.WriteWait = 10 * time.Second
	}
	return &TraceStream{conn: cfg.Conn, logger: cfg.Logger, writeWait: cfg.WriteWait}
}

// Visit satisfies reasoning.VisitFunc: it streams one frame per entity the
// Traversal Engine dequeues during a single query's execution.
func (ts *TraceStream) Visit(entity graph.Entity, depth int, edgeType graph.EdgeType) {
	_ = ts.write(Frame{
		Type:      FrameVisit,
		Entity:    entity,
		Depth:     depth,
		EdgeType:  string(edgeType),
		Timestamp: time.Now(),
	})
}

// Complete sends the final frame carrying the query's result and closes
// the stream to further writes.
func (ts *TraceStream) Complete(result string) error {
	err := ts.write(Frame{Type: FrameComplete, Result: result, Timestamp: time.Now()})
	ts.mu.Lock()
	ts.closed = true
	ts.mu.Unlock()
	return err
}

// Error sends a fatal error frame and closes the stream.
func (ts *TraceStream) Error(message string) error {
	err := ts.write(Frame{Type: FrameError, Message: message, Timestamp: time.Now()})
	ts.mu.Lock()
	ts.closed = true
	ts.mu.Unlock()
	return err
}

func (ts *TraceStream) write(frame Frame) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.closed {
		return fmt.Errorf("websocket: trace stream is closed")
	}
	if err := ts.conn.SetWriteDeadline(time.Now().Add(ts.writeWait)); err != nil {
		return fmt.Errorf("websocket: failed to set write deadline: %w", err)
	}
	if err := ts.conn.WriteJSON(frame); err != nil {
		ts.logger.Error("failed to write trace frame",
			slog.Any("error", err), slog.String("frame_type", string(frame.Type)))
		return fmt.Errorf("websocket: failed to write frame: %w", err)
	}
	return nil
}

// StreamQuery runs a single traced query, streaming a visitation frame per
// entity run's traversal dequeues via onVisit, then a final frame
// reporting its result. Blocks until run returns or ctx is cancelled.
func StreamQuery(ctx context.Context, ts *TraceStream, run func(onVisit func(graph.Entity, int, graph.EdgeType)) string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		result := run(ts.Visit)
		_ = ts.Complete(result)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		_ = ts.Error("query cancelled")
	}
}
