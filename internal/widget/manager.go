package widget

import (
	"sync"

	"github.com/nexushq/widget-go/internal/analytics"
	"github.com/nexushq/widget-go/internal/client"
	"github.com/nexushq/widget-go/internal/config"
)

// Manager owns at most one live widget instance, mirroring the
// host-page contract where starting a new widget disposes the previous
// one.
type Manager struct {
	mu      sync.Mutex
	current *Widget
}

// NewManager returns an empty manager.
func NewManager() *Manager { return &Manager{} }

// Start constructs a widget from cfg with the real transport client and
// tracker, disposing any previously started instance, and returns the
// new handle. Remote enrichment is the caller's step (widget.Resolve)
// so Start itself never blocks on the network.
func (m *Manager) Start(cfg config.Config) *Widget {
	c := client.New(cfg.Backend, cfg.Widget.WidgetKey)
	t := analytics.New(cfg.Backend.SessionBaseURL, cfg.Backend.Timeout, c.WidgetKey)
	return m.StartWith(cfg, c, t)
}

// StartWith is Start with explicit collaborators, used by tests.
func (m *Manager) StartWith(cfg config.Config, backend Backend, tracker Tracker) *Widget {
	w := New(cfg, backend, tracker)
	m.mu.Lock()
	prev := m.current
	m.current = w
	m.mu.Unlock()
	if prev != nil {
		prev.Destroy()
	}
	return w
}

// Current returns the live instance, nil before the first Start.
func (m *Manager) Current() *Widget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Stop destroys the live instance, if any.
func (m *Manager) Stop() {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()
	if prev != nil {
		prev.Destroy()
	}
}
