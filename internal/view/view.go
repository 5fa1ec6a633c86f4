// Package view turns the conversation store, transient UI flags and the
// configuration into a view-model. Render is a pure function: the host
// (embedded page, test, or any other frontend) draws exactly what the
// model says and nothing else.
package view

import (
	"github.com/nexushq/widget-go/internal/config"
	"github.com/nexushq/widget-go/internal/store"
)

// Flags is the transient UI state that is not part of the store.
type Flags struct {
	Open                 bool
	Loading              bool
	PrivacyAgreed        bool
	ShowStarterQuestions bool
	StarterQuestions     []string
	TrackingEnabled      bool
}

// MessageView is one rendered turn.
type MessageView struct {
	ID               int64    `json:"id"`
	Text             string   `json:"text"`
	Sender           string   `json:"sender"`
	Time             string   `json:"time"`
	IsError          bool     `json:"is_error"`
	ShowReactions    bool     `json:"show_reactions"`
	ReactionsEnabled bool     `json:"reactions_enabled"`
	Reaction         string   `json:"reaction,omitempty"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
	SuggestedTopics  []string `json:"suggested_topics,omitempty"`
}

// Action is a call-to-action button below the conversation.
type Action struct {
	Label   string `json:"label"`
	Kind    string `json:"kind"` // book_now or send_email
	URL     string `json:"url,omitempty"`
	Enabled bool   `json:"enabled"`
}

// PrivacyNotice is rendered while the gate is closed.
type PrivacyNotice struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Model is the complete widget view.
type Model struct {
	Open             bool           `json:"open"`
	ClinicName       string         `json:"clinic_name"`
	LogoURL          string         `json:"logo_url,omitempty"`
	BrandColour      string         `json:"brand_colour"`
	Position         string         `json:"position"`
	Messages         []MessageView  `json:"messages"`
	Typing           bool           `json:"typing"`
	StarterQuestions []string       `json:"starter_questions,omitempty"`
	Privacy          *PrivacyNotice `json:"privacy,omitempty"`
	Actions          []Action       `json:"actions,omitempty"`
}

// Render builds the view-model. Affordance rules, in order per message:
// error styling, reaction controls (visible on the latest eligible bot
// turn or any turn that already carries a reaction, enabled only on the
// latest), follow-up and topic suggestions (latest eligible only),
// timestamp. After the list: typing indicator while loading, then up to
// three starter prompts while they are still enabled.
func Render(msgs []store.Message, flags Flags, cfg config.WidgetConfig) Model {
	latestID := int64(-1)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == store.SenderBot && !msgs[i].IsError {
			latestID = msgs[i].ID
			break
		}
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		isLatest := m.ID == latestID
		canReact := isLatest && m.RemoteMessageID != ""
		mv := MessageView{
			ID:               m.ID,
			Text:             m.Text,
			Sender:           string(m.Sender),
			Time:             m.Timestamp.Format("15:04"),
			IsError:          m.IsError,
			ShowReactions:    canReact || m.UserReaction != store.ReactionNone,
			ReactionsEnabled: canReact,
			Reaction:         string(m.UserReaction),
		}
		if isLatest && !m.IsError {
			mv.FollowUpQuestion = m.FollowUpQuestion
			if len(m.SuggestedTopics) > 0 {
				mv.SuggestedTopics = m.SuggestedTopics
			}
		}
		views = append(views, mv)
	}

	model := Model{
		Open:        flags.Open,
		ClinicName:  cfg.ClinicName,
		LogoURL:     cfg.LogoURL,
		BrandColour: cfg.BrandColour,
		Position:    cfg.Position,
		Messages:    views,
		Typing:      flags.Loading,
	}

	if flags.ShowStarterQuestions && len(flags.StarterQuestions) > 0 {
		n := len(flags.StarterQuestions)
		if n > 3 {
			n = 3
		}
		model.StarterQuestions = flags.StarterQuestions[:n]
	}

	if !flags.PrivacyAgreed {
		model.Privacy = &PrivacyNotice{
			Text: cfg.PrivacyNoticeText,
			URL:  cfg.PrivacyNoticeURL,
		}
	}

	if cfg.ShowBookNow() {
		model.Actions = append(model.Actions, Action{
			Label:   cfg.BookNowText,
			Kind:    "book_now",
			URL:     cfg.BookNowURL,
			Enabled: flags.TrackingEnabled,
		})
	}
	if cfg.ShowSendEmail() {
		model.Actions = append(model.Actions, Action{
			Label:   cfg.SendEmailText,
			Kind:    "send_email",
			Enabled: true,
		})
	}

	return model
}
