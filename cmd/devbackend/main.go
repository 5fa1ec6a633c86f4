// Command devbackend runs a local stand-in for every remote service the
// widget talks to: chat, reactions, settings, starter questions, staff
// details, widget-key registration, email and session analytics. Point
// all backend base URLs at it for offline development.
//
// With OPENAI_API_KEY set replies come from a chat completion model;
// without it the backend answers with canned text so the widget stays
// fully usable offline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/nexushq/widget-go/internal/logger"
)

const systemPrompt = "You are a friendly assistant for a small clinic. " +
	"Answer briefly and helpfully. Never give medical advice."

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	IndexName string `json:"index_name"`
}

type chatResponse struct {
	Response         string   `json:"response"`
	MessageID        string   `json:"message_id"`
	SessionID        string   `json:"session_id"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
	SuggestedTopics  []string `json:"suggested_topics,omitempty"`
}

type reactionRequest struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Reaction  *bool  `json:"reaction"`
}

type backend struct {
	llm   *openai.Client
	model string

	mu        sync.Mutex
	sessions  map[string][]openai.ChatCompletionMessage
	reactions map[string]*bool
}

func newBackend() *backend {
	b := &backend{
		model:     os.Getenv("OPENAI_MODEL"),
		sessions:  make(map[string][]openai.ChatCompletionMessage),
		reactions: make(map[string]*bool),
	}
	if b.model == "" {
		b.model = openai.GPT4oMini
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg := openai.DefaultConfig(key)
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			cfg.BaseURL = base
		}
		b.llm = openai.NewClientWithConfig(cfg)
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("response encode failed", "error", err)
	}
}

func (b *backend) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "widget_" + uuid.NewString()
	}

	b.mu.Lock()
	history := b.sessions[req.SessionID]
	b.mu.Unlock()

	reply := b.reply(r, req.Message, history)

	b.mu.Lock()
	b.sessions[req.SessionID] = append(history,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, chatResponse{
		Response:         reply,
		MessageID:        uuid.NewString(),
		SessionID:        req.SessionID,
		FollowUpQuestion: "Would you like to know about our opening hours?",
		SuggestedTopics:  []string{"services", "fees", "appointments"},
	})
}

func (b *backend) reply(r *http.Request, message string, history []openai.ChatCompletionMessage) string {
	if b.llm == nil {
		return fmt.Sprintf(
			"Thanks for asking about %q. This is a local development reply; "+
				"set OPENAI_API_KEY to get model answers.", message)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := b.llm.CreateChatCompletion(r.Context(), openai.ChatCompletionRequest{
		Model:    b.model,
		Messages: messages,
	})
	if err != nil || len(resp.Choices) == 0 {
		logger.L.Warn("chat completion failed", "error", err)
		return "Sorry, I could not come up with an answer just now."
	}
	return resp.Choices[0].Message.Content
}

func (b *backend) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (b *backend) handleReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MessageID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	b.mu.Lock()
	b.reactions[req.MessageID] = req.Reaction
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (b *backend) handleSendMail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string `json:"Name"`
		ContactPersonEmail string `json:"ContactPersonEmail"`
		Message            string `json:"Message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	logger.L.Info("email received", "from", req.ContactPersonEmail, "name", req.Name)
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "Email sent successfully")
}

func (b *backend) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ClinicName":       "Riverside Dental",
		"BrandColour":      "#4f8cff",
		"BookNowShow":      "True",
		"BookNowLabel":     "Book Now",
		"BookNowUrl":       "https://example.com/book",
		"SendAnEmailShow":  "True",
		"SendAnEmailLabel": "Send us an Email",
		"PrivacyNoticeUrl": "https://example.com/privacy",
	})
}

func (b *backend) handleStarterQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"q1": "What services do you offer?",
		"q2": "How much does a check-up cost?",
		"q3": "How do I book an appointment?",
	})
}

func (b *backend) handleStaffDetails(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"DoctorFirstName": "Sam",
	})
}

func (b *backend) handleWidgetKey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "dev-widget-key")
}

func (b *backend) handleSessionInsert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, uuid.NewString())
}

func (b *backend) handleClickInsert(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (b *backend) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", b.handleChat)
	mux.HandleFunc("DELETE /session/{id}/clear", b.handleClearSession)
	mux.HandleFunc("POST /chat/reaction", b.handleReaction)
	mux.HandleFunc("POST /SendMail", b.handleSendMail)
	mux.HandleFunc("GET /Settings/Get", b.handleSettings)
	mux.HandleFunc("GET /StarterQuestions/Get", b.handleStarterQuestions)
	mux.HandleFunc("GET /Staff/GetDoctorDetails", b.handleStaffDetails)
	mux.HandleFunc("GET /Register/GetWidgetKeyByWebUrl", b.handleWidgetKey)
	mux.HandleFunc("POST /UserChatSession/Insert", b.handleSessionInsert)
	mux.HandleFunc("POST /BookNowClicks/Insert", b.handleClickInsert)
	return mux
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	b := newBackend()
	mode := "canned"
	if b.llm != nil {
		mode = "openai"
	}
	logger.L.Info("dev backend listening", "addr", *addr, "mode", mode)
	if err := http.ListenAndServe(*addr, b.routes()); err != nil {
		logger.L.Error("server exited", "error", err)
		os.Exit(1)
	}
}
