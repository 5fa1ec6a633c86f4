package widget

import (
	"context"
	"fmt"

	"github.com/nexushq/widget-go/internal/client"
	"github.com/nexushq/widget-go/internal/logger"
)

// builtinStarters is the fixed trio shown when the starter-question
// fetch fails and the configuration asks for the placeholder policy.
var builtinStarters = []string{
	"What services do you offer?",
	"What are your fees?",
	"How do I get started?",
}

// Resolve runs the remote enrichment phase: widget-key resolution, then
// tenant settings, then starter questions, then staff details, then the
// analytics session start. Each step overwrites only the fields it owns
// and each failure is logged and skipped; the widget always stays
// usable with whatever configuration the earlier phases established.
func (w *Widget) Resolve(ctx context.Context) {
	w.resolveWidgetKey(ctx)
	w.applySettings(ctx)
	w.loadStarterQuestions(ctx)
	w.personalizeWelcome(ctx)
	w.startTracking(ctx)
}

func (w *Widget) resolveWidgetKey(ctx context.Context) {
	w.mu.Lock()
	hostURL := w.cfg.Backend.HostURL
	regBase := w.cfg.Backend.RegistrationBaseURL
	have := w.cfg.Widget.WidgetKey
	w.mu.Unlock()

	if have != "" {
		w.backend.SetWidgetKey(have)
		return
	}
	if regBase == "" || hostURL == "" {
		return
	}

	key, err := w.backend.ResolveWidgetKey(ctx, hostURL)
	if err != nil {
		// Degrades personalization only; chat still works untenanted.
		logger.L.Warn("widget key resolution failed", "host_url", hostURL, "error", err)
		return
	}
	w.mu.Lock()
	w.cfg.Widget.WidgetKey = key
	w.mu.Unlock()
	w.backend.SetWidgetKey(key)
}

func (w *Widget) applySettings(ctx context.Context) {
	w.mu.Lock()
	base := w.cfg.Backend.SettingsBaseURL
	w.mu.Unlock()
	if base == "" {
		return
	}

	s, err := w.backend.FetchSettings(ctx)
	if err != nil {
		cerr := &client.ConfigurationError{Source: "settings", Err: err}
		logger.L.Warn("settings enrichment failed; keeping defaults", "error", cerr)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	cfg := &w.cfg.Widget
	if s.ClinicName != "" {
		cfg.ClinicName = s.ClinicName
	}
	cfg.LogoURL = s.LogoURL
	cfg.PrivacyNoticeURL = s.PrivacyNoticeURL
	cfg.BookNowURL = s.BookNowURL
	if s.BookNowLabel != "" {
		cfg.BookNowText = s.BookNowLabel
	}
	if s.BookNowShow != "" {
		v := s.BookNowShow == "True"
		cfg.BookNowShow = &v
	}
	if s.SendEmailLabel != "" {
		cfg.SendEmailText = s.SendEmailLabel
	}
	if s.SendEmailShow != "" {
		v := s.SendEmailShow == "True"
		cfg.SendEmailShow = &v
	}
	if s.BrandColour != "" {
		cfg.BrandColour = s.BrandColour
	} else {
		cfg.BrandColour = "#667eea"
	}
}

func (w *Widget) loadStarterQuestions(ctx context.Context) {
	w.mu.Lock()
	base := w.cfg.Backend.StarterBaseURL
	fallback := w.cfg.Widget.StarterFallback
	w.mu.Unlock()
	if base == "" {
		return
	}

	q, err := w.backend.FetchStarterQuestions(ctx)
	if err != nil {
		logger.L.Warn("starter question fetch failed", "policy", fallback, "error", err)
		if fallback == "builtin" {
			w.mu.Lock()
			w.starters = builtinStarters
			w.mu.Unlock()
		}
		// "hide" policy: leave starters empty, the affordance never
		// renders.
		return
	}
	w.mu.Lock()
	w.starters = q.List()
	w.mu.Unlock()
}

func (w *Widget) personalizeWelcome(ctx context.Context) {
	w.mu.Lock()
	base := w.cfg.Backend.StaffBaseURL
	w.mu.Unlock()
	if base == "" {
		return
	}

	d, err := w.backend.FetchStaffDetails(ctx)
	if err != nil {
		logger.L.Warn("staff detail fetch failed", "error", err)
		return
	}
	name := d.FirstName()
	if name == "" {
		return
	}

	welcome := fmt.Sprintf("Hi! I'm %s's assistant. Ask me about our services, fees, or how to get started.", name)
	w.mu.Lock()
	w.cfg.Widget.WelcomeMessage = welcome
	w.mu.Unlock()
	// Only rewrites the greeting while the conversation is untouched.
	w.store.ReplaceWelcome(welcome)
}

func (w *Widget) startTracking(ctx context.Context) {
	if w.tracker == nil {
		return
	}
	ip := w.tracker.ClientIP(ctx)
	w.tracker.RecordSessionStart(ctx, ip)
}
