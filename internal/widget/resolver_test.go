package widget

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexushq/widget-go/internal/client"
	"github.com/nexushq/widget-go/internal/config"
)

// resolveBackend extends the base mock with enrichment responses.
type resolveBackend struct {
	mockBackend
	settings     client.Settings
	settingsErr  error
	starters     client.StarterQuestions
	startersErr  error
	staff        client.StaffDetails
	staffErr     error
	widgetKey2   string
	widgetKeyErr error
}

func (m *resolveBackend) FetchSettings(ctx context.Context) (client.Settings, error) {
	return m.settings, m.settingsErr
}

func (m *resolveBackend) FetchStarterQuestions(ctx context.Context) (client.StarterQuestions, error) {
	return m.starters, m.startersErr
}

func (m *resolveBackend) FetchStaffDetails(ctx context.Context) (client.StaffDetails, error) {
	return m.staff, m.staffErr
}

func (m *resolveBackend) ResolveWidgetKey(ctx context.Context, webURL string) (string, error) {
	return m.widgetKey2, m.widgetKeyErr
}

func resolveConfig() config.Config {
	cfg := agreedConfig()
	cfg.Backend.RegistrationBaseURL = "http://reg"
	cfg.Backend.SettingsBaseURL = "http://settings"
	cfg.Backend.StarterBaseURL = "http://starter"
	cfg.Backend.StaffBaseURL = "http://staff"
	cfg.Backend.HostURL = "https://clinic.example.com/"
	return cfg
}

func TestResolveAppliesSettings(t *testing.T) {
	backend := &resolveBackend{
		widgetKey2: "key-1",
		settings: client.Settings{
			ClinicName:     "Riverside Dental",
			BrandColour:    "#4f8cff",
			BookNowShow:    "False",
			BookNowLabel:   "Book Now",
			SendEmailShow:  "True",
			SendEmailLabel: "Email us",
		},
		starters: client.StarterQuestions{Q1: "first", Q2: "second"},
		staffErr: errors.New("unavailable"),
	}
	w := New(resolveConfig(), backend, nil)
	w.Resolve(context.Background())

	cfg := w.Config().Widget
	require.Equal(t, "key-1", cfg.WidgetKey)
	require.Equal(t, "key-1", backend.WidgetKey())
	require.Equal(t, "Riverside Dental", cfg.ClinicName)
	require.Equal(t, "#4f8cff", cfg.BrandColour)
	require.False(t, cfg.ShowBookNow())
	require.True(t, cfg.ShowSendEmail())
	require.Equal(t, "Email us", cfg.SendEmailText)

	require.Equal(t, []string{"first", "second"}, w.Snapshot().StarterQuestions)
}

func TestResolveSettingsFailureKeepsDefaults(t *testing.T) {
	backend := &resolveBackend{
		settingsErr:  errors.New("service down"),
		startersErr:  errors.New("service down"),
		staffErr:     errors.New("service down"),
		widgetKeyErr: errors.New("service down"),
	}
	cfg := resolveConfig()
	w := New(cfg, backend, nil)
	w.Resolve(context.Background())

	require.Equal(t, cfg.Widget.ClinicName, w.Config().Widget.ClinicName)
	require.Equal(t, cfg.Widget.BrandColour, w.Config().Widget.BrandColour)
	require.Empty(t, w.Config().Widget.WidgetKey)
}

func TestResolveBrandColourFallback(t *testing.T) {
	// A successful settings fetch without a colour applies the stock one.
	backend := &resolveBackend{settings: client.Settings{ClinicName: "X"}}
	w := New(resolveConfig(), backend, nil)
	w.Resolve(context.Background())
	require.Equal(t, "#667eea", w.Config().Widget.BrandColour)
}

func TestResolveStarterFallbackPolicies(t *testing.T) {
	// Default policy hides the affordance on fetch failure.
	backend := &resolveBackend{startersErr: errors.New("service down")}
	w := New(resolveConfig(), backend, nil)
	w.Resolve(context.Background())
	require.Empty(t, w.Snapshot().StarterQuestions)

	// The builtin policy shows the fixed trio instead.
	cfg := resolveConfig()
	cfg.Widget.StarterFallback = "builtin"
	w = New(cfg, backend, nil)
	w.Resolve(context.Background())
	require.Equal(t, builtinStarters, w.Snapshot().StarterQuestions)
}

func TestResolvePersonalizesUntouchedWelcome(t *testing.T) {
	backend := &resolveBackend{staff: client.StaffDetails{DoctorFirstName: "Sam"}}
	w := New(resolveConfig(), backend, nil)
	w.Resolve(context.Background())

	msgs := w.Store().Messages()
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0].Text, "Sam's assistant")
}

func TestResolveLeavesActiveConversationAlone(t *testing.T) {
	backend := &resolveBackend{staff: client.StaffDetails{DoctorFirstName: "Sam"}}
	w := New(resolveConfig(), backend, nil)
	require.NoError(t, w.Send(context.Background(), "hello"))

	w.Resolve(context.Background())
	require.NotContains(t, w.Store().Messages()[0].Text, "Sam")
	// The next clear seeds the personalized greeting.
	w.Clear(context.Background())
	require.Contains(t, w.Store().Messages()[0].Text, "Sam's assistant")
}

func TestResolveConfiguredKeySkipsLookup(t *testing.T) {
	backend := &resolveBackend{widgetKeyErr: errors.New("must not be called")}
	cfg := resolveConfig()
	cfg.Widget.WidgetKey = "preconfigured"
	w := New(cfg, backend, nil)
	w.Resolve(context.Background())
	require.Equal(t, "preconfigured", backend.WidgetKey())
	require.Equal(t, "preconfigured", w.Config().Widget.WidgetKey)
}

func TestResolveStartsTracking(t *testing.T) {
	tracker := &mockTracker{}
	w := New(resolveConfig(), &resolveBackend{}, tracker)
	w.Resolve(context.Background())
	require.True(t, tracker.started)
	require.Equal(t, "track-1", tracker.SessionID())
}
