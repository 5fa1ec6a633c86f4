package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nexushq/widget-go/internal/store"
)

func TestRecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	l := Open(path)
	defer l.Close()

	now := time.Now()
	l.Record("widget_a", store.Message{Sender: store.SenderUser, Text: "hello", Timestamp: now})
	l.Record("widget_a", store.Message{Sender: store.SenderBot, Text: "hi!", UserReaction: store.ReactionLike, Timestamp: now})
	l.Record("widget_b", store.Message{Sender: store.SenderUser, Text: "other session", Timestamp: now})

	entries := l.List("widget_a")
	require.Len(t, entries, 2)
	require.Equal(t, "user", entries[0].Sender)
	require.Equal(t, "hello", entries[0].Text)
	require.Equal(t, "bot", entries[1].Sender)
	require.Equal(t, "like", entries[1].Reaction)

	require.Len(t, l.List("widget_b"), 1)
	require.Empty(t, l.List("widget_unknown"))
}

func TestBrokenDatabaseFallsBackToMemory(t *testing.T) {
	// A directory path cannot be opened as a database file.
	l := Open(t.TempDir())
	defer l.Close()

	l.Record("widget_a", store.Message{Sender: store.SenderUser, Text: "still logged"})

	entries := l.List("widget_a")
	require.Len(t, entries, 1)
	require.Equal(t, "still logged", entries[0].Text)
}

func TestOpenDefaultsPath(t *testing.T) {
	l := Open("")
	require.Equal(t, "transcript.db", l.path)
}
