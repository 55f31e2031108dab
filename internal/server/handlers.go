package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
	"git.home.luguber.info/inful/deckforge/internal/stream"
)

// generateRequest is the wire form of a generation request.
type generateRequest struct {
	Topic     string `json:"topic"`
	Theme     string `json:"theme"`
	NumSlides int    `json:"num_slides"`
}

func decodeGenerateRequest(r *http.Request) (pipeline.Request, error) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return pipeline.Request{}, dferrors.ValidationError("invalid request body: " + err.Error())
	}
	req := pipeline.Request{Topic: body.Topic, ThemeKey: body.Theme, NumSlides: body.NumSlides}
	return req.Normalize()
}

// startRun launches the pipeline detached from the HTTP request's
// context and fans its events out through the broker and event store.
// Subscribers for runID must already be registered; the run proceeds
// whether or not anyone is listening.
func (s *Server) startRun(runID string, req pipeline.Request) {
	events := s.orch.Run(context.Background(), runID, req)

	go func() {
		for ev := range events {
			if err := s.store.Append(context.Background(), ev); err != nil {
				s.logger.Warn("event persist failed", "run_id", runID, "error", err)
			}
			s.broker.Publish(ev)
		}
	}()
}

// handleGenerateStream runs a generation and streams its events over
// SSE. The subscription is taken before the run starts, so the start
// event is never missed. Heartbeat frames keep the connection alive
// through long stages; they belong to this connection only and are not
// part of the run's persisted sequence.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}

	runID := uuid.NewString()
	sub, unsubscribe := s.broker.Subscribe(runID)
	defer unsubscribe()

	s.startRun(runID, req)

	sw := stream.NewSSEWriter(w)
	sw.Init()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			// Client went away; the run keeps going without us.
			return
		case <-ticker.C:
			if err := sw.WriteEvent(pipeline.HeartbeatEvent(runID)); err != nil {
				return
			}
		case ev, ok := <-sub.Events:
			if !ok {
				if sub.Dropped() {
					s.logger.Warn("subscriber fell behind, disconnected", "run_id", runID)
				}
				return
			}
			if err := sw.WriteEvent(ev); err != nil {
				return
			}
			if ev.Terminal() {
				return
			}
		}
	}
}

// generateResponse is the blocking endpoint's reply.
type generateResponse struct {
	Success     bool       `json:"success"`
	RunID       string     `json:"run_id"`
	Deck        *deck.Deck `json:"ppt_data,omitempty"`
	Filename    string     `json:"filename,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// handleGenerate runs a generation to completion and replies with the
// final document in one JSON body.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}

	runID := uuid.NewString()
	var terminal pipeline.Event
	for ev := range s.orch.Run(context.Background(), runID, req) {
		if err := s.store.Append(r.Context(), ev); err != nil {
			s.logger.Warn("event persist failed", "run_id", runID, "error", err)
		}
		if ev.Terminal() {
			terminal = ev
		}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := generateResponse{RunID: runID}
	switch terminal.Type {
	case pipeline.EventCompleted:
		resp.Success = true
		resp.Deck = terminal.Deck
		resp.Filename = terminal.Filename
		resp.DownloadURL = terminal.URL
		w.WriteHeader(http.StatusOK)
	default:
		resp.Error = terminal.Message
		w.WriteHeader(http.StatusBadGateway)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleThemes lists the built-in theme presets.
func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"themes":  deck.ThemePresets,
		"default": deck.DefaultThemeKey,
	})
}

// handleLLMInfo reports which model and endpoint back the pipeline.
func (s *Server) handleLLMInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.modelInfo)
}

// handleDownload serves a generated artifact by filename. Only bare
// filenames inside the output directory are reachable.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil || filename == "" || filename != filepath.Base(filename) {
		s.errors.WriteErrorResponse(w, r, dferrors.ValidationError("invalid filename"))
		return
	}

	path := filepath.Join(s.outputDir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.errors.WriteErrorResponse(w, r, dferrors.NotFoundError("artifact not found: "+filename))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

// handleRunEvents replays a run's persisted event sequence in emission
// order.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		s.errors.WriteErrorResponse(w, r, dferrors.ValidationError("missing run id"))
		return
	}

	events, err := s.store.ByRunID(r.Context(), runID)
	if err != nil {
		s.errors.WriteErrorResponse(w, r, err)
		return
	}
	if len(events) == 0 {
		s.errors.WriteErrorResponse(w, r, dferrors.NotFoundError("no events for run "+runID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"run_id": runID,
		"events": events,
	})
}
