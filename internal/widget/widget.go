// Package widget binds the conversation store, transport layer, privacy
// gate and renderer into one widget instance. The instance is an
// explicit handle owned by the host application; there is no global
// singleton.
package widget

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nexushq/widget-go/internal/client"
	"github.com/nexushq/widget-go/internal/config"
	"github.com/nexushq/widget-go/internal/history"
	"github.com/nexushq/widget-go/internal/logger"
	"github.com/nexushq/widget-go/internal/privacy"
	"github.com/nexushq/widget-go/internal/store"
	"github.com/nexushq/widget-go/internal/view"
)

// Backend is the subset of the transport client the widget drives.
// Kept minimal so tests can mock it.
type Backend interface {
	SendMessage(ctx context.Context, text, sessionID, indexName string) (client.ChatReply, error)
	ClearSession(ctx context.Context, sessionID string) error
	SaveReaction(ctx context.Context, sessionID, messageID string, reaction *bool) error
	SendEmail(ctx context.Context, name, email, message string) (string, error)
	FetchSettings(ctx context.Context) (client.Settings, error)
	FetchStarterQuestions(ctx context.Context) (client.StarterQuestions, error)
	FetchStaffDetails(ctx context.Context) (client.StaffDetails, error)
	ResolveWidgetKey(ctx context.Context, webURL string) (string, error)
	SetWidgetKey(key string)
	WidgetKey() string
}

// Tracker is the analytics surface the widget drives.
type Tracker interface {
	ClientIP(ctx context.Context) string
	RecordSessionStart(ctx context.Context, ip string)
	RecordButtonClick(ctx context.Context, label string)
	SessionID() string
}

// Widget is one chat widget instance.
type Widget struct {
	mu      sync.Mutex
	cfg     config.Config
	store   *store.Store
	backend Backend
	tracker Tracker
	gate    *privacy.Gate
	log     *history.Log // nil when transcript logging is off

	sessionID string

	open        bool
	loading     bool
	input       string
	showStarter bool
	starters    []string
	reacting    map[int64]bool
	destroyed   bool
}

// New constructs a widget from an already-merged configuration
// (defaults + file + caller overrides). Remote enrichment runs
// separately via Resolve so construction never fails.
func New(cfg config.Config, backend Backend, tracker Tracker) *Widget {
	if cfg.Widget.SessionID == "" {
		cfg.Widget.SessionID = fmt.Sprintf("widget_%s", uuid.NewString())
	}
	w := &Widget{
		cfg:         cfg,
		store:       store.New(cfg.Widget.WelcomeMessage),
		backend:     backend,
		tracker:     tracker,
		gate:        privacy.New(cfg.Widget.PrivacyImplicit),
		sessionID:   cfg.Widget.SessionID,
		open:        cfg.Widget.AutoOpen,
		showStarter: true,
		reacting:    make(map[int64]bool),
	}
	if cfg.History.Enabled {
		w.log = history.Open(cfg.History.DBPath)
	}
	return w
}

// SessionID returns the chat session identifier.
func (w *Widget) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

// Config returns a copy of the resolved configuration.
func (w *Widget) Config() config.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Store exposes the conversation store, mainly for tests.
func (w *Widget) Store() *store.Store { return w.store }

// Open shows the chat panel.
func (w *Widget) Open() {
	w.mu.Lock()
	w.open = true
	w.mu.Unlock()
}

// Close hides the chat panel.
func (w *Widget) Close() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}

// Toggle flips the panel and reports the new state.
func (w *Widget) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = !w.open
	return w.open
}

// Agree opens the privacy gate. One-way for the session.
func (w *Widget) Agree(ctx context.Context) error {
	return w.gate.Agree(ctx)
}

// Input returns the composed-but-unsent input field content.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// SetInput replaces the input field content.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	w.mu.Unlock()
}

// ComposeFollowUp puts a suggested follow-up question into the input
// field. Nothing is sent and no network call occurs.
func (w *Widget) ComposeFollowUp(question string) {
	w.SetInput(question)
}

// ComposeTopic puts a topic prompt into the input field.
func (w *Widget) ComposeTopic(topic string) {
	w.SetInput(fmt.Sprintf("Tell me about %s", topic))
}

// Send exchanges one user turn with the backend. While a send is in
// flight further sends are rejected and the store gains nothing; a send
// before privacy agreement performs no network call at all. The bot
// reply (or a synthesized error turn) is appended when the exchange
// resolves, unless the store was cleared in the meantime.
func (w *Widget) Send(ctx context.Context, text string) error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return ErrDestroyed
	}
	if !w.gate.Agreed() {
		w.mu.Unlock()
		return ErrPrivacyRequired
	}
	if w.loading {
		w.mu.Unlock()
		return ErrBusy
	}
	if text == "" {
		w.mu.Unlock()
		return nil
	}
	gen := w.store.Generation()
	userMsg := w.store.Append(store.Message{Text: text, Sender: store.SenderUser})
	w.loading = true
	w.input = ""
	sessionID := w.sessionID
	indexName := w.cfg.Widget.IndexName
	w.mu.Unlock()

	w.record(sessionID, userMsg)

	reply, err := w.backend.SendMessage(ctx, text, sessionID, indexName)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false

	if w.store.Generation() != gen {
		// The conversation was cleared while the request was in
		// flight; the response belongs to a dead store.
		logger.L.Debug("discarding stale chat response", "session_id", sessionID)
		return nil
	}

	if err != nil {
		logger.L.Error("chat exchange failed", "session_id", sessionID, "error", err)
		errMsg := w.store.Append(store.Message{
			Text:    "Sorry, I encountered an error. Please try again.",
			Sender:  store.SenderBot,
			IsError: true,
		})
		w.record(sessionID, errMsg)
		return nil
	}

	if reply.SessionID != "" {
		w.sessionID = reply.SessionID
	}
	botMsg := w.store.Append(store.Message{
		Text:             reply.Text,
		Sender:           store.SenderBot,
		RemoteMessageID:  reply.RemoteMessageID,
		SessionID:        w.sessionID,
		FollowUpQuestion: reply.FollowUpQuestion,
		SuggestedTopics:  reply.SuggestedTopics,
	})
	w.record(w.sessionID, botMsg)
	return nil
}

// SendProgrammatic sends text on behalf of the host page, bypassing the
// input field.
func (w *Widget) SendProgrammatic(ctx context.Context, text string) error {
	return w.Send(ctx, text)
}

// ClickStarter sends a starter question and permanently hides the
// starter prompts for the remainder of the session (until Clear).
func (w *Widget) ClickStarter(ctx context.Context, question string) error {
	w.mu.Lock()
	if w.loading {
		w.mu.Unlock()
		return ErrBusy
	}
	w.mu.Unlock()

	if err := w.Send(ctx, question); err != nil {
		return err
	}
	w.mu.Lock()
	w.showStarter = false
	w.mu.Unlock()
	return nil
}

// React toggles a like/dislike on the message with the given id. The
// local state changes optimistically; a failed save rolls it back.
// Only one save per message may be in flight at a time.
func (w *Widget) React(ctx context.Context, id int64, reaction store.Reaction) error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return ErrDestroyed
	}
	if w.reacting[id] {
		w.mu.Unlock()
		return ErrReactionPending
	}

	prev, ok := w.store.Get(id)
	if !ok {
		w.mu.Unlock()
		return store.ErrNotFound
	}
	applied, err := w.store.UpdateReaction(id, reaction)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.reacting[id] = true
	sessionID := prev.SessionID
	if sessionID == "" {
		sessionID = w.sessionID
	}
	w.mu.Unlock()

	saveErr := w.backend.SaveReaction(ctx, sessionID, prev.RemoteMessageID, reactionWire(applied))

	w.mu.Lock()
	delete(w.reacting, id)
	w.mu.Unlock()

	if saveErr != nil {
		// Silent failure: revert the optimistic change, log, show
		// nothing beyond the reverted controls.
		logger.L.Warn("reaction save failed; rolling back", "message_id", prev.RemoteMessageID, "error", saveErr)
		w.store.SetReaction(id, prev.UserReaction)
	}
	return nil
}

// reactionWire maps the tri-state reaction onto the wire encoding.
func reactionWire(r store.Reaction) *bool {
	switch r {
	case store.ReactionLike:
		v := true
		return &v
	case store.ReactionDislike:
		v := false
		return &v
	default:
		return nil
	}
}

// Clear replaces the conversation with a fresh welcome message and
// re-enables the starter prompts. The backend session clear runs after
// the local reset and its result is ignored; clearing never waits on
// the network to take effect locally.
func (w *Widget) Clear(ctx context.Context) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	welcome := w.cfg.Widget.WelcomeMessage
	sessionID := w.sessionID
	w.store.Clear(welcome)
	w.loading = false
	w.input = ""
	w.showStarter = true
	w.mu.Unlock()

	if err := w.backend.ClearSession(ctx, sessionID); err != nil {
		logger.L.Warn("backend session clear failed", "session_id", sessionID, "error", err)
	}
}

// SubmitEmail validates and submits the lead-capture form, returning
// the service's confirmation text.
func (w *Widget) SubmitEmail(ctx context.Context, name, email, message string) (string, error) {
	return w.backend.SendEmail(ctx, name, email, message)
}

// RecordCTA attributes a call-to-action click. Disabled (a no-op) until
// session tracking established a tracking id.
func (w *Widget) RecordCTA(ctx context.Context, label string) {
	if w.tracker == nil || w.tracker.SessionID() == "" {
		return
	}
	w.tracker.RecordButtonClick(ctx, label)
}

// UpdateConfig merges caller overrides into the live configuration.
func (w *Widget) UpdateConfig(o *config.Config) {
	w.mu.Lock()
	w.cfg.Merge(o)
	w.mu.Unlock()
}

// Destroy tears the instance down. Subsequent sends fail with
// ErrDestroyed.
func (w *Widget) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return
	}
	w.destroyed = true
	if w.log != nil {
		if err := w.log.Close(); err != nil {
			logger.L.Warn("transcript close failed", "error", err)
		}
	}
}

// Snapshot renders the current view-model.
func (w *Widget) Snapshot() view.Model {
	w.mu.Lock()
	flags := view.Flags{
		Open:                 w.open,
		Loading:              w.loading,
		PrivacyAgreed:        w.gate.Agreed(),
		ShowStarterQuestions: w.showStarter,
		StarterQuestions:     w.starters,
		TrackingEnabled:      w.tracker != nil && w.tracker.SessionID() != "",
	}
	cfg := w.cfg.Widget
	w.mu.Unlock()
	return view.Render(w.store.Messages(), flags, cfg)
}

func (w *Widget) record(sessionID string, msg store.Message) {
	if w.log == nil {
		return
	}
	w.log.Record(sessionID, msg)
}
