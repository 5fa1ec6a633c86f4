// Package history provides an optional SQLite transcript log for widget
// conversations. The database is opened lazily and created on first
// use; if opening or writing fails the log degrades to an in-memory
// copy. The log is write-only from the widget's point of view: nothing
// is ever read back into the conversation store, which stays purely
// in-memory per session.
package history

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/nexushq/widget-go/internal/logger"
	"github.com/nexushq/widget-go/internal/store"
)

// Entry is one logged turn.
type Entry struct {
	ID        int64
	SessionID string
	Sender    string
	Text      string
	Reaction  string
	CreatedAt time.Time
}

// Log is a transcript sink for one database file.
type Log struct {
	path string

	mu      sync.Mutex
	entries []Entry // in-memory fallback

	openOnce sync.Once
	db       *sql.DB
	initErr  error
}

// Open returns a Log backed by the SQLite file at path. The file is not
// touched until the first write.
func Open(path string) *Log {
	if path == "" {
		path = "transcript.db"
	}
	return &Log{path: path}
}

func (l *Log) init() {
	db, err := sql.Open("sqlite", "file:"+l.path+"?_busy_timeout=10000")
	if err != nil {
		l.initErr = err
		logger.L.Warn("sqlite open failed; keeping transcript in memory", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS transcript (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT,
        sender TEXT,
        text TEXT,
        reaction TEXT,
        created_at DATETIME
    );`); err != nil {
		l.initErr = err
		db.Close()
		logger.L.Warn("sqlite table creation failed; keeping transcript in memory", "error", err)
		return
	}
	l.db = db
	logger.L.Info("transcript DB initialized", "path", l.path)
}

// Record appends one turn to the transcript. Failures degrade to the
// in-memory copy and are logged, never returned; a broken transcript
// must not affect the conversation.
func (l *Log) Record(sessionID string, msg store.Message) {
	l.openOnce.Do(l.init)

	e := Entry{
		SessionID: sessionID,
		Sender:    string(msg.Sender),
		Text:      msg.Text,
		Reaction:  string(msg.UserReaction),
		CreatedAt: msg.Timestamp,
	}

	if l.initErr == nil && l.db != nil {
		_, err := l.db.Exec(
			`INSERT INTO transcript (session_id, sender, text, reaction, created_at) VALUES (?,?,?,?,?);`,
			e.SessionID, e.Sender, e.Text, e.Reaction, e.CreatedAt,
		)
		if err != nil {
			logger.L.Error("failed to store transcript row; falling back to memory", "error", err)
		}
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// List returns all logged turns of a session in chronological order.
func (l *Log) List(sessionID string) []Entry {
	l.openOnce.Do(l.init)

	if l.initErr == nil && l.db != nil {
		rows, err := l.db.Query(
			`SELECT id, session_id, sender, text, reaction, created_at FROM transcript WHERE session_id = ? ORDER BY id ASC;`,
			sessionID,
		)
		if err == nil {
			defer rows.Close()
			var out []Entry
			for rows.Next() {
				var e Entry
				if err := rows.Scan(&e.ID, &e.SessionID, &e.Sender, &e.Text, &e.Reaction, &e.CreatedAt); err == nil {
					out = append(out, e)
				}
			}
			return out
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// Close releases the database handle.
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
