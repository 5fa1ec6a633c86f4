// Package analytics records widget sessions and call-to-action clicks.
// Every call here is best-effort: failures are logged and swallowed,
// never surfaced to the user, because analytics is not essential to the
// chat function.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nexushq/widget-go/internal/logger"
)

// fallbackIP is reported when every lookup service fails.
const fallbackIP = "127.0.0.1"

// ipServices are tried in order; the first success wins.
var ipServices = []string{
	"https://api.ipify.org?format=json",
	"https://ipapi.co/json/",
}

// Tracker talks to the session-tracking service. A Tracker with an
// empty base URL is valid and does nothing.
type Tracker struct {
	base      string
	widgetKey func() string
	http      *http.Client

	mu        sync.Mutex
	sessionID string // tracking id, distinct from the chat session id
}

// New creates a Tracker. widgetKey is read per call so the tenant key
// resolved during enrichment is picked up without rewiring.
func New(base string, timeout time.Duration, widgetKey func() string) *Tracker {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Tracker{
		base:      strings.TrimRight(base, "/"),
		widgetKey: widgetKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// SessionID returns the tracking id, empty until RecordSessionStart
// succeeds. Without it, click recording stays disabled.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// ClientIP asks the lookup services for the caller's public address.
// It never fails; when every service is down it returns a loopback
// placeholder so session tracking can still proceed.
func (t *Tracker) ClientIP(ctx context.Context) string {
	for _, svc := range ipServices {
		ip, err := t.lookupIP(ctx, svc)
		if err != nil {
			logger.L.Debug("ip lookup failed", "service", svc, "error", err)
			continue
		}
		if ip != "" {
			return ip
		}
	}
	return fallbackIP
}

func (t *Tracker) lookupIP(ctx context.Context, svc string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var parsed struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.IP, nil
}

// RecordSessionStart registers a widget session and stores the tracking
// id for subsequent click recording. Failure is logged only.
func (t *Tracker) RecordSessionStart(ctx context.Context, ip string) {
	if t.base == "" {
		return
	}
	body := map[string]string{
		"IPAddress":        ip,
		"SessionStartTime": time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := t.post(ctx, t.base+"/UserChatSession/Insert", body)
	if err != nil {
		logger.L.Warn("session tracking insert failed", "error", err)
		return
	}
	id := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	t.mu.Lock()
	t.sessionID = id
	t.mu.Unlock()
	logger.L.Debug("session tracking started", "tracking_id", id)
}

// RecordButtonClick attributes a call-to-action click to the tracked
// session. A no-op when no tracking id was established.
func (t *Tracker) RecordButtonClick(ctx context.Context, label string) {
	sessionID := t.SessionID()
	if t.base == "" || sessionID == "" {
		return
	}
	body := map[string]string{
		"UserChatSessionId": sessionID,
		"Click":             label,
		"Timestamp":         time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := t.post(ctx, t.base+"/BookNowClicks/Insert", body); err != nil {
		logger.L.Warn("click tracking insert failed", "label", label, "error", err)
	}
}

func (t *Tracker) post(ctx context.Context, rawURL string, body map[string]string) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewBuffer(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.widgetKey != nil {
		if key := t.widgetKey(); key != "" {
			req.Header.Set("x-widget-key", key)
		}
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
