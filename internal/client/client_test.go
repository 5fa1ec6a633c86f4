package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexushq/widget-go/internal/config"
)

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "key-123", r.Header.Get("x-widget-key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "hello", req.Message)
		require.Equal(t, "widget_abc", req.SessionID)
		require.Equal(t, "default", req.IndexName)

		json.NewEncoder(w).Encode(chatResponse{
			Response:         "hi there",
			MessageID:        "remote-1",
			SessionID:        "widget_abc",
			FollowUpQuestion: "anything else?",
			SuggestedTopics:  []string{"fees"},
		})
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "key-123")
	reply, err := c.SendMessage(context.Background(), "hello", "widget_abc", "default")
	require.NoError(t, err)
	require.Equal(t, "hi there", reply.Text)
	require.Equal(t, "remote-1", reply.RemoteMessageID)
	require.Equal(t, "widget_abc", reply.SessionID)
	require.Equal(t, "anything else?", reply.FollowUpQuestion)
	require.Equal(t, []string{"fees"}, reply.SuggestedTopics)
}

func TestSendMessageFallsBackToMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": "legacy reply", "message_id": "remote-2"}`)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "")
	reply, err := c.SendMessage(context.Background(), "hello", "s", "i")
	require.NoError(t, err)
	require.Equal(t, "legacy reply", reply.Text)
}

func TestSendMessageNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "")
	_, err := c.SendMessage(context.Background(), "hello", "s", "i")
	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, http.StatusInternalServerError, nerr.Status)
}

func TestClearSessionEscapesSessionID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.EscapedPath()
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "")
	require.NoError(t, c.ClearSession(context.Background(), "widget/odd id"))
	require.Equal(t, "/session/widget%2Fodd%20id/clear", gotPath)
}

func TestSaveReactionWireValues(t *testing.T) {
	cases := []struct {
		name     string
		reaction *bool
		wantJSON string
	}{
		{"like", boolPtr(true), `true`},
		{"dislike", boolPtr(false), `false`},
		{"cleared", nil, `null`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/chat/reaction", r.URL.Path)
				var raw map[string]json.RawMessage
				require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
				require.JSONEq(t, tc.wantJSON, string(raw["reaction"]))
				fmt.Fprint(w, `{}`)
			}))
			defer srv.Close()

			c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "")
			require.NoError(t, c.SaveReaction(context.Background(), "s", "m", tc.reaction))
		})
	}
}

func TestSendEmailValidation(t *testing.T) {
	c := New(config.BackendConfig{}, "")

	_, err := c.SendEmail(context.Background(), "", "a@b.c", "hi")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)

	_, err = c.SendEmail(context.Background(), "Ann", "  ", "hi")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "email", verr.Field)

	_, err = c.SendEmail(context.Background(), "Ann", "a@b.c", "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "message", verr.Field)
}

func TestSendEmailPlainTextConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/SendMail", r.URL.Path)
		var req emailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Ann", req.Name)
		require.Equal(t, "a@b.c", req.ContactPersonEmail)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "Email sent successfully\n")
	}))
	defer srv.Close()

	c := New(config.BackendConfig{EmailBaseURL: srv.URL}, "")
	confirmation, err := c.SendEmail(context.Background(), "Ann", "a@b.c", "hello")
	require.NoError(t, err)
	require.Equal(t, "Email sent successfully", confirmation)
}

func TestFetchSettingsDecodesJSONUnderTextPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Get", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, `{"ClinicName":"Riverside Dental","BookNowShow":"True","BrandColour":"#4f8cff","SendAnEmailShow":"False"}`)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{SettingsBaseURL: srv.URL}, "")
	s, err := c.FetchSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Riverside Dental", s.ClinicName)
	require.Equal(t, "True", s.BookNowShow)
	require.Equal(t, "False", s.SendEmailShow)
	require.Equal(t, "#4f8cff", s.BrandColour)
}

func TestFetchStarterQuestionsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"q1":"first","q2":"","q3":"third"}`)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{StarterBaseURL: srv.URL}, "")
	q, err := c.FetchStarterQuestions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"first", "third"}, q.List())
}

func TestFetchStaffDetailsFirstName(t *testing.T) {
	require.Equal(t, "Sam", StaffDetails{DoctorFirstName: "Sam", StaffFirstName: "Alex"}.FirstName())
	require.Equal(t, "Alex", StaffDetails{StaffFirstName: "Alex"}.FirstName())
	require.Equal(t, "", StaffDetails{}.FirstName())
}

func TestResolveWidgetKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/GetWidgetKeyByWebUrl", r.URL.Path)
		require.Equal(t, "https://clinic.example.com/", r.URL.Query().Get("webUrl"))
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, `"key-xyz"`)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{RegistrationBaseURL: srv.URL}, "")
	key, err := c.ResolveWidgetKey(context.Background(), "https://clinic.example.com/")
	require.NoError(t, err)
	require.Equal(t, "key-xyz", key)
}

func TestResolveWidgetKeyEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "  ")
	}))
	defer srv.Close()

	c := New(config.BackendConfig{RegistrationBaseURL: srv.URL}, "")
	_, err := c.ResolveWidgetKey(context.Background(), "https://clinic.example.com/")
	require.Error(t, err)
}

func TestSetWidgetKeyAttachesHeaderLater(t *testing.T) {
	var gotKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = append(gotKeys, r.Header.Get("x-widget-key"))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatBaseURL: srv.URL}, "")
	require.NoError(t, c.SaveReaction(context.Background(), "s", "m", nil))
	c.SetWidgetKey("late-key")
	require.NoError(t, c.SaveReaction(context.Background(), "s", "m", nil))
	require.Equal(t, []string{"", "late-key"}, gotKeys)
}

func boolPtr(v bool) *bool { return &v }
