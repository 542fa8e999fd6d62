package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/n0madic/go-oaiadapter/internal/codec"
	"github.com/n0madic/go-oaiadapter/internal/pipeline"
	"github.com/n0madic/go-oaiadapter/internal/types"
)

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	req, ok := readChatRequest(w, r)
	if !ok {
		return
	}
	s.Pipeline.Execute(r.Context(), w, req, pipeline.RouteChat)
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	req, ok := readChatRequest(w, r)
	if !ok {
		return
	}
	s.Pipeline.Execute(r.Context(), w, req, pipeline.RouteResponses)
}

// handlePreview returns the upstream request a chat body would produce
// without sending it. ?route=responses previews the responses route.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := readChatRequest(w, r)
	if !ok {
		return
	}
	route := pipeline.RouteChat
	if r.URL.Query().Get("route") == pipeline.RouteResponses {
		route = pipeline.RouteResponses
	}
	codec.WriteJSON(w, http.StatusOK, s.Pipeline.Preview(req, route))
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	codec.WriteJSON(w, http.StatusOK, types.ModelList{
		Object: "list",
		Data:   s.Registry.GetModels(r.Context()),
	})
}

// handleLimits reports the last rate limit headers seen from the upstream.
func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	snap := s.Limits.Latest()
	if snap == nil {
		codec.WriteJSON(w, http.StatusOK, map[string]any{})
		return
	}
	codec.WriteJSON(w, http.StatusOK, snap)
}

// --- Helpers ---

func readChatRequest(w http.ResponseWriter, r *http.Request) (*types.ChatRequest, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			codec.WriteOpenAIError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		codec.WriteOpenAIError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		codec.WriteOpenAIError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	return &req, true
}
