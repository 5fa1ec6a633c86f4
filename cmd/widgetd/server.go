package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nexushq/widget-go/internal/client"
	"github.com/nexushq/widget-go/internal/logger"
	"github.com/nexushq/widget-go/internal/store"
	"github.com/nexushq/widget-go/internal/widget"
)

// server bridges HTTP requests from the embedded page to the widget
// instance. Every mutating endpoint answers with the fresh view-model
// so the page re-renders from a single source of truth.
type server struct {
	manager *widget.Manager
}

func newServer(m *widget.Manager) *server {
	return &server{manager: m}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("GET /widget/state", s.handleState)
	mux.HandleFunc("POST /widget/send", s.handleSend)
	mux.HandleFunc("POST /widget/react", s.handleReact)
	mux.HandleFunc("POST /widget/clear", s.handleClear)
	mux.HandleFunc("POST /widget/compose", s.handleCompose)
	mux.HandleFunc("POST /widget/starter", s.handleStarter)
	mux.HandleFunc("POST /widget/email", s.handleEmail)
	mux.HandleFunc("POST /widget/agree", s.handleAgree)
	mux.HandleFunc("POST /widget/cta", s.handleCTA)
	mux.HandleFunc("POST /widget/toggle", s.handleToggle)
	return mux
}

func (s *server) widget(w http.ResponseWriter) *widget.Widget {
	inst := s.manager.Current()
	if inst == nil {
		http.Error(w, "no widget instance", http.StatusServiceUnavailable)
		return nil
	}
	return inst
}

func (s *server) writeModel(w http.ResponseWriter, inst *widget.Widget) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(inst.Snapshot()); err != nil {
		logger.L.Error("view-model encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, widgetPageHTML)
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	if inst := s.widget(w); inst != nil {
		s.writeModel(w, inst)
	}
}

func (s *server) handleSend(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}
	switch err := inst.Send(r.Context(), body.Message); {
	case errors.Is(err, widget.ErrPrivacyRequired):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, widget.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to process message")
	default:
		s.writeModel(w, inst)
	}
}

func (s *server) handleReact(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		ID       int64  `json:"id"`
		Reaction string `json:"reaction"` // like or dislike
	}
	if !decode(w, r, &body) {
		return
	}
	reaction := store.Reaction(body.Reaction)
	if reaction != store.ReactionLike && reaction != store.ReactionDislike {
		writeError(w, http.StatusBadRequest, "reaction must be like or dislike")
		return
	}
	switch err := inst.React(r.Context(), body.ID, reaction); {
	case errors.Is(err, store.ErrNotEligible), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, widget.ErrReactionPending):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to save reaction")
	default:
		s.writeModel(w, inst)
	}
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	inst.Clear(r.Context())
	s.writeModel(w, inst)
}

func (s *server) handleCompose(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		FollowUp string `json:"follow_up"`
		Topic    string `json:"topic"`
	}
	if !decode(w, r, &body) {
		return
	}
	switch {
	case body.FollowUp != "":
		inst.ComposeFollowUp(body.FollowUp)
	case body.Topic != "":
		inst.ComposeTopic(body.Topic)
	default:
		writeError(w, http.StatusBadRequest, "follow_up or topic required")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"input": inst.Input()})
}

func (s *server) handleStarter(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		Question string `json:"question"`
	}
	if !decode(w, r, &body) {
		return
	}
	switch err := inst.ClickStarter(r.Context(), body.Question); {
	case errors.Is(err, widget.ErrPrivacyRequired):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, widget.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to process message")
	default:
		s.writeModel(w, inst)
	}
}

func (s *server) handleEmail(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}
	confirmation, err := inst.SubmitEmail(r.Context(), body.Name, body.Email, body.Message)
	var verr *client.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, "failed to send email")
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"confirmation": confirmation})
	}
}

func (s *server) handleAgree(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	if err := inst.Agree(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record agreement")
		return
	}
	s.writeModel(w, inst)
}

func (s *server) handleCTA(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	var body struct {
		Label string `json:"label"`
	}
	if !decode(w, r, &body) {
		return
	}
	inst.RecordCTA(r.Context(), body.Label)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	inst := s.widget(w)
	if inst == nil {
		return
	}
	inst.Toggle()
	s.writeModel(w, inst)
}
