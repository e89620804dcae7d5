// Package session accepts WebSocket clients and runs each one against its own
// workflow instances and conversation state. Sessions share nothing but the
// vector store behind the workflows.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"ragserve/internal/workflow"
)

// inboundMessage is one client request. Query may embed source references to
// ingest before the question is answered.
type inboundMessage struct {
	Query string `json:"query"`
}

// outboundMessage is one server reply.
type outboundMessage struct {
	Message string `json:"message"`
}

// Session is one client's long-lived connection. It owns its conversation
// state through the query workflow and is torn down when the connection drops.
type Session struct {
	id     string
	conn   *websocket.Conn
	ingest *workflow.IngestWorkflow
	query  *workflow.QueryWorkflow
	logger *slog.Logger

	// gorilla/websocket forbids concurrent writes on one connection.
	writeMu sync.Mutex
}

func newSession(id string, conn *websocket.Conn, ingest *workflow.IngestWorkflow, query *workflow.QueryWorkflow, logger *slog.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		ingest: ingest,
		query:  query,
		logger: logger.With("session_id", id),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// run consumes inbound messages until the connection drops or ctx is
// cancelled. Processing errors are reported to the client without closing the
// channel; only a genuine disconnect ends the loop.
func (s *Session) run(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if isExpectedClose(err) {
				s.logger.Info("session disconnected")
			} else {
				s.logger.Warn("session read failed", "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send("Error: could not parse message, expected a JSON object with a \"query\" field.")
			continue
		}
		if strings.TrimSpace(msg.Query) == "" {
			s.send("Error: message is missing a \"query\" field.")
			continue
		}

		s.handle(ctx, msg.Query)
	}
}

// handle ingests any embedded source references, then answers the remaining
// question if one is left.
func (s *Session) handle(ctx context.Context, query string) {
	refs, question := ExtractSourceRefs(query)

	var ingested, failed int
	for _, ref := range refs {
		if _, err := s.ingest.Ingest(ctx, ref, ref); err != nil {
			s.logger.Warn("ingestion failed", "source", ref, "error", err)
			failed++
			continue
		}
		ingested++
	}

	if question == "" {
		s.send(ingestSummary(ingested, failed))
		return
	}

	resp := s.query.Query(ctx, question)
	s.logger.Info("query handled", "status", resp.Status)
	s.send(resp.Message)
}

func ingestSummary(ingested, failed int) string {
	switch {
	case ingested == 0 && failed == 0:
		return "Error: message is missing a \"query\" field."
	case failed == 0:
		return fmt.Sprintf("Ingested %d source(s). Ask me anything about them.", ingested)
	case ingested == 0:
		return fmt.Sprintf("Could not ingest %d source(s).", failed)
	default:
		return fmt.Sprintf("Ingested %d source(s); %d failed.", ingested, failed)
	}
}

// send writes one outbound message, serializing concurrent writers.
func (s *Session) send(message string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(outboundMessage{Message: message}); err != nil {
		s.logger.Warn("session write failed", "error", err)
	}
}

func (s *Session) close() {
	s.conn.Close()
}

func isExpectedClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent)
}
