package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full widget configuration. It is resolved in three
// phases: built-in defaults, then the optional config file plus caller
// overrides, then remote enrichment (settings endpoint, widget key,
// starter questions). Later phases win, field by field.
type Config struct {
	Widget   WidgetConfig  `mapstructure:"widget"`
	Backend  BackendConfig `mapstructure:"backend"`
	History  HistoryConfig `mapstructure:"history"`
	Server   ServerConfig  `mapstructure:"server"`
	LogLevel string        `mapstructure:"log_level"`
}

// WidgetConfig holds the presentation and behavior settings of one
// widget instance.
type WidgetConfig struct {
	Position          string `mapstructure:"position"` // bottom-right, bottom-left, top-right, top-left
	Theme             string `mapstructure:"theme"`
	AutoOpen          bool   `mapstructure:"auto_open"`
	WelcomeMessage    string `mapstructure:"welcome_message"`
	ClinicName        string `mapstructure:"clinic_name"`
	LogoURL           string `mapstructure:"logo_url"`
	BrandColour       string `mapstructure:"brand_colour"`
	PrivacyNoticeText string `mapstructure:"privacy_notice_text"`
	PrivacyNoticeURL  string `mapstructure:"privacy_notice_url"`
	PrivacyImplicit   bool   `mapstructure:"privacy_implicit"`
	BookNowText       string `mapstructure:"book_now_text"`
	BookNowURL        string `mapstructure:"book_now_url"`
	// The visibility flags are tri-state: nil means unset, and unset
	// renders the button. A pointer lets an override or config file
	// hide a button the defaults show.
	BookNowShow   *bool  `mapstructure:"book_now_show"`
	SendEmailText string `mapstructure:"send_email_text"`
	SendEmailShow *bool  `mapstructure:"send_email_show"`
	SessionID     string `mapstructure:"session_id"`
	WidgetKey     string `mapstructure:"widget_key"`
	IndexName     string `mapstructure:"index_name"`
	// StarterFallback controls what happens when the starter-question
	// fetch fails: "hide" drops the affordance, "builtin" shows a fixed
	// trio.
	StarterFallback string `mapstructure:"starter_fallback"`
}

// ShowBookNow reports whether the booking button renders.
func (c WidgetConfig) ShowBookNow() bool {
	return c.BookNowShow == nil || *c.BookNowShow
}

// ShowSendEmail reports whether the email button renders.
func (c WidgetConfig) ShowSendEmail() bool {
	return c.SendEmailShow == nil || *c.SendEmailShow
}

// BackendConfig holds the base URLs of the remote services and the
// shared request timeout.
type BackendConfig struct {
	ChatBaseURL         string        `mapstructure:"chat_base_url"`
	EmailBaseURL        string        `mapstructure:"email_base_url"`
	SettingsBaseURL     string        `mapstructure:"settings_base_url"`
	StarterBaseURL      string        `mapstructure:"starter_base_url"`
	StaffBaseURL        string        `mapstructure:"staff_base_url"`
	RegistrationBaseURL string        `mapstructure:"registration_base_url"`
	SessionBaseURL      string        `mapstructure:"session_base_url"`
	HostURL             string        `mapstructure:"host_url"` // page URL used to resolve the widget key
	Timeout             time.Duration `mapstructure:"timeout"`
}

// HistoryConfig holds the optional local transcript log settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// ServerConfig holds the widget host HTTP settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Defaults returns the built-in configuration, phase one of resolution.
// Values mirror the widget's stock appearance.
func Defaults() Config {
	return Config{
		Widget: WidgetConfig{
			Position:          "bottom-right",
			Theme:             "default",
			WelcomeMessage:    "Hi! Ask me about our services, fees, or how to get started.",
			ClinicName:        "Clinic Name",
			BrandColour:       "rgb(173, 216, 230)",
			PrivacyNoticeText: "I'm an educational assistant. I don't provide medical advice or diagnosis.",
			BookNowText:       "book now",
			SendEmailText:     "Send an email",
			IndexName:         "default",
			StarterFallback:   "hide",
		},
		Backend: BackendConfig{
			Timeout: 30 * time.Second,
		},
		History: HistoryConfig{
			DBPath: "transcript.db",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		LogLevel: "info",
	}
}

// Load resolves phases one and two: defaults overlaid with the yaml
// config file. The file is optional; a missing file leaves the defaults
// untouched. CONFIG_PATH points at an explicit file, otherwise
// config.yaml in the working directory is used.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	cfg := Defaults()
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if os.IsNotExist(err) {
				return &cfg, nil
			}
			return nil, err
		}
		return &cfg, nil
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge applies caller-supplied overrides on top of c. Only set fields
// of the override are applied: non-empty strings, non-nil visibility
// pointers, and true for the plain boolean toggles (AutoOpen,
// PrivacyImplicit), which an override cannot switch back off.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	mergeWidget(&c.Widget, &o.Widget)
	mergeBackend(&c.Backend, &o.Backend)
	if o.History.Enabled {
		c.History.Enabled = true
	}
	if o.History.DBPath != "" {
		c.History.DBPath = o.History.DBPath
	}
	if o.Server.Host != "" {
		c.Server.Host = o.Server.Host
	}
	if o.Server.Port != "" {
		c.Server.Port = o.Server.Port
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

func mergeWidget(dst, src *WidgetConfig) {
	if src.Position != "" {
		dst.Position = src.Position
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.AutoOpen {
		dst.AutoOpen = true
	}
	if src.WelcomeMessage != "" {
		dst.WelcomeMessage = src.WelcomeMessage
	}
	if src.ClinicName != "" {
		dst.ClinicName = src.ClinicName
	}
	if src.LogoURL != "" {
		dst.LogoURL = src.LogoURL
	}
	if src.BrandColour != "" {
		dst.BrandColour = src.BrandColour
	}
	if src.PrivacyNoticeText != "" {
		dst.PrivacyNoticeText = src.PrivacyNoticeText
	}
	if src.PrivacyNoticeURL != "" {
		dst.PrivacyNoticeURL = src.PrivacyNoticeURL
	}
	if src.PrivacyImplicit {
		dst.PrivacyImplicit = true
	}
	if src.BookNowText != "" {
		dst.BookNowText = src.BookNowText
	}
	if src.BookNowURL != "" {
		dst.BookNowURL = src.BookNowURL
	}
	if src.BookNowShow != nil {
		dst.BookNowShow = src.BookNowShow
	}
	if src.SendEmailText != "" {
		dst.SendEmailText = src.SendEmailText
	}
	if src.SendEmailShow != nil {
		dst.SendEmailShow = src.SendEmailShow
	}
	if src.SessionID != "" {
		dst.SessionID = src.SessionID
	}
	if src.WidgetKey != "" {
		dst.WidgetKey = src.WidgetKey
	}
	if src.IndexName != "" {
		dst.IndexName = src.IndexName
	}
	if src.StarterFallback != "" {
		dst.StarterFallback = src.StarterFallback
	}
}

func mergeBackend(dst, src *BackendConfig) {
	if src.ChatBaseURL != "" {
		dst.ChatBaseURL = src.ChatBaseURL
	}
	if src.EmailBaseURL != "" {
		dst.EmailBaseURL = src.EmailBaseURL
	}
	if src.SettingsBaseURL != "" {
		dst.SettingsBaseURL = src.SettingsBaseURL
	}
	if src.StarterBaseURL != "" {
		dst.StarterBaseURL = src.StarterBaseURL
	}
	if src.StaffBaseURL != "" {
		dst.StaffBaseURL = src.StaffBaseURL
	}
	if src.RegistrationBaseURL != "" {
		dst.RegistrationBaseURL = src.RegistrationBaseURL
	}
	if src.SessionBaseURL != "" {
		dst.SessionBaseURL = src.SessionBaseURL
	}
	if src.HostURL != "" {
		dst.HostURL = src.HostURL
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}
