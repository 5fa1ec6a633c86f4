// Package client wraps the remote services the widget consumes. Each
// function is a single request/response exchange: no retries, one
// bounded timeout, a typed failure. Tenant-scoped calls carry the
// x-widget-key header once a widget key is known.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nexushq/widget-go/internal/config"
)

const widgetKeyHeader = "x-widget-key"

// Client talks to the chat, settings, email, starter-question, staff,
// registration and analytics services.
type Client struct {
	cfg  config.BackendConfig
	http *http.Client

	mu        sync.RWMutex
	widgetKey string
}

// New creates a Client. A zero timeout in cfg falls back to 30s; a hung
// request must never leave the widget loading forever.
func New(cfg config.BackendConfig, widgetKey string) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		widgetKey: widgetKey,
	}
}

// SetWidgetKey updates the tenant key attached to subsequent calls.
func (c *Client) SetWidgetKey(key string) {
	c.mu.Lock()
	c.widgetKey = key
	c.mu.Unlock()
}

// WidgetKey returns the current tenant key, empty when unresolved.
func (c *Client) WidgetKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.widgetKey
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if key := c.WidgetKey(); key != "" {
		req.Header.Set(widgetKeyHeader, key)
	}
	return req, nil
}

// do executes the request and enforces the 2xx contract. The body is
// returned raw; callers decode it themselves because two of the
// services answer plain text under a text/plain content type.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return body, nil
}

// SendMessage exchanges one user turn for the bot reply.
func (c *Client) SendMessage(ctx context.Context, text, sessionID, indexName string) (ChatReply, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.ChatBaseURL+"/chat", chatRequest{
		Message:   text,
		SessionID: sessionID,
		IndexName: indexName,
	})
	if err != nil {
		return ChatReply{}, err
	}
	body, err := c.do("chat", req)
	if err != nil {
		return ChatReply{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ChatReply{}, &NetworkError{Op: "chat", Err: err}
	}
	text = parsed.Response
	if text == "" {
		text = parsed.Message
	}
	return ChatReply{
		Text:             text,
		RemoteMessageID:  parsed.MessageID,
		SessionID:        parsed.SessionID,
		FollowUpQuestion: parsed.FollowUpQuestion,
		SuggestedTopics:  parsed.SuggestedTopics,
	}, nil
}

// ClearSession asks the backend to drop its conversation context.
// Best-effort; the caller never blocks local clearing on this.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	rawURL := fmt.Sprintf("%s/session/%s/clear", c.cfg.ChatBaseURL, url.PathEscape(sessionID))
	req, err := c.newRequest(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return err
	}
	_, err = c.do("clear session", req)
	return err
}

// SaveReaction records a like/dislike/cleared reaction against a bot
// turn. reaction: true like, false dislike, nil cleared.
func (c *Client) SaveReaction(ctx context.Context, sessionID, messageID string, reaction *bool) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.ChatBaseURL+"/chat/reaction", reactionRequest{
		SessionID: sessionID,
		MessageID: messageID,
		Reaction:  reaction,
	})
	if err != nil {
		return err
	}
	_, err = c.do("save reaction", req)
	return err
}

// SendEmail submits the lead-capture form. All three fields are
// required and checked here, before any network traffic.
func (c *Client) SendEmail(ctx context.Context, name, email, message string) (string, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return "", &ValidationError{Field: "name"}
	case strings.TrimSpace(email) == "":
		return "", &ValidationError{Field: "email"}
	case strings.TrimSpace(message) == "":
		return "", &ValidationError{Field: "message"}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.EmailBaseURL+"/SendMail", emailRequest{
		Name:               name,
		ContactPersonEmail: email,
		Message:            message,
	})
	if err != nil {
		return "", err
	}
	body, err := c.do("send email", req)
	if err != nil {
		return "", err
	}
	// The mail service confirms in plain text.
	return strings.TrimSpace(string(body)), nil
}

// FetchSettings loads the tenant branding object.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.SettingsBaseURL+"/Get", nil)
	if err != nil {
		return Settings{}, err
	}
	body, err := c.do("fetch settings", req)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	// Served with a text/plain content type but the body is JSON.
	if err := json.Unmarshal(body, &s); err != nil {
		return Settings{}, &NetworkError{Op: "fetch settings", Err: err}
	}
	return s, nil
}

// FetchStarterQuestions loads the tenant's starter prompts.
func (c *Client) FetchStarterQuestions(ctx context.Context) (StarterQuestions, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.StarterBaseURL+"/Get", nil)
	if err != nil {
		return StarterQuestions{}, err
	}
	body, err := c.do("fetch starter questions", req)
	if err != nil {
		return StarterQuestions{}, err
	}
	var q StarterQuestions
	if err := json.Unmarshal(body, &q); err != nil {
		return StarterQuestions{}, &NetworkError{Op: "fetch starter questions", Err: err}
	}
	return q, nil
}

// FetchStaffDetails loads the staff record used for a personalized
// welcome message.
func (c *Client) FetchStaffDetails(ctx context.Context) (StaffDetails, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.StaffBaseURL+"/GetDoctorDetails", nil)
	if err != nil {
		return StaffDetails{}, err
	}
	body, err := c.do("fetch staff details", req)
	if err != nil {
		return StaffDetails{}, err
	}
	var d StaffDetails
	if err := json.Unmarshal(body, &d); err != nil {
		return StaffDetails{}, &NetworkError{Op: "fetch staff details", Err: err}
	}
	return d, nil
}

// ResolveWidgetKey looks up the tenant key registered for the host page
// URL. The registration service answers in plain text.
func (c *Client) ResolveWidgetKey(ctx context.Context, webURL string) (string, error) {
	rawURL := fmt.Sprintf("%s/GetWidgetKeyByWebUrl?webUrl=%s", c.cfg.RegistrationBaseURL, url.QueryEscape(webURL))
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	body, err := c.do("resolve widget key", req)
	if err != nil {
		return "", err
	}
	key := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if key == "" {
		return "", &NetworkError{Op: "resolve widget key", Err: fmt.Errorf("empty key for %s", webURL)}
	}
	return key, nil
}
