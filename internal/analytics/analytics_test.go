package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordSessionStartStoresTrackingID(t *testing.T) {
	var gotBody map[string]string
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/UserChatSession/Insert", r.URL.Path)
		gotKey = r.Header.Get("x-widget-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, `"track-42"`)
	}))
	defer srv.Close()

	tr := New(srv.URL, 0, func() string { return "key-1" })
	require.Empty(t, tr.SessionID())

	tr.RecordSessionStart(context.Background(), "203.0.113.9")
	require.Equal(t, "track-42", tr.SessionID())
	require.Equal(t, "key-1", gotKey)
	require.Equal(t, "203.0.113.9", gotBody["IPAddress"])
	require.NotEmpty(t, gotBody["SessionStartTime"])
}

func TestRecordSessionStartFailureLeavesNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := New(srv.URL, 0, nil)
	tr.RecordSessionStart(context.Background(), "203.0.113.9")
	require.Empty(t, tr.SessionID())
}

func TestRecordButtonClick(t *testing.T) {
	var paths []string
	var clickBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/BookNowClicks/Insert" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&clickBody))
		}
		fmt.Fprint(w, "track-1")
	}))
	defer srv.Close()

	tr := New(srv.URL, 0, nil)

	// Without a tracking session clicks are dropped.
	tr.RecordButtonClick(context.Background(), "book now")
	require.Empty(t, paths)

	tr.RecordSessionStart(context.Background(), "203.0.113.9")
	tr.RecordButtonClick(context.Background(), "book now")
	require.Equal(t, []string{"/UserChatSession/Insert", "/BookNowClicks/Insert"}, paths)
	require.Equal(t, "track-1", clickBody["UserChatSessionId"])
	require.Equal(t, "book now", clickBody["Click"])
}

func TestSessionIDSafeUnderConcurrentStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "track-7")
	}))
	defer srv.Close()

	// Session start runs on the enrichment goroutine while handlers
	// read the tracking id; the race detector must stay quiet.
	tr := New(srv.URL, 0, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			tr.RecordSessionStart(context.Background(), "203.0.113.9")
		}
	}()
	for i := 0; i < 50; i++ {
		tr.SessionID()
		tr.RecordButtonClick(context.Background(), "book now")
	}
	<-done
	require.Equal(t, "track-7", tr.SessionID())
}

func TestEmptyBaseIsInert(t *testing.T) {
	tr := New("", 0, nil)
	tr.RecordSessionStart(context.Background(), "203.0.113.9")
	tr.RecordButtonClick(context.Background(), "book now")
	require.Empty(t, tr.SessionID())
}

func TestClientIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ip": "203.0.113.9"}`)
	}))
	defer srv.Close()

	orig := ipServices
	defer func() { ipServices = orig }()

	ipServices = []string{srv.URL}
	tr := New("", 0, nil)
	require.Equal(t, "203.0.113.9", tr.ClientIP(context.Background()))

	// All services down falls back to loopback instead of failing.
	srv.Close()
	require.Equal(t, fallbackIP, tr.ClientIP(context.Background()))
}
