package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/df07/go-collision-demos/pkg/sim"
)

// FrameUpdate is a single snapshot sent via SSE
type FrameUpdate struct {
	sim.Snapshot
	ElapsedMs int64 `json:"elapsed_ms"`
}

// handleSimulate runs a demo for a fixed number of ticks and streams every frame via SSE
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	req, err := s.parseDemoRequest(r)
	if err != nil {
		_ = s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	demo, err := sim.New(req.Demo, nil)
	if err != nil {
		_ = s.sendSSEError(w, err.Error())
		return
	}

	logger := s.log.With(log.String("stream", "sse"), log.String("demo", demo.Name()))
	runner := sim.NewRunner(demo, sim.RunnerOptions{
		MaxTicks: req.Ticks,
		Paused:   req.Paused,
		Logger:   logger,
	})

	// Use request context to detect client disconnection
	ctx := r.Context()
	start := time.Now()

	err = runner.Run(ctx, func(snap sim.Snapshot) error {
		return s.sendSSEFrame(w, FrameUpdate{Snapshot: snap, ElapsedMs: time.Since(start).Milliseconds()})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("Client disconnected")
			return
		}
		logger.Warn("Stream failed", log.Error(err))
		_ = s.sendSSEError(w, fmt.Sprintf("Simulation error: %v", err))
		return
	}

	_ = s.sendSSEEvent(w, "complete", "Simulation completed")
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEFrame sends a frame via SSE
func (s *Server) sendSSEFrame(w http.ResponseWriter, update FrameUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "frame", string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
