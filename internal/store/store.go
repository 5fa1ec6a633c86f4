// Package store holds the ordered message list of one conversation.
// It is the single source of truth for rendering; every mutation goes
// through the store so eligibility rules are enforced in one place.
package store

import (
	"sync"
	"time"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Reaction is the tri-state user reaction on a bot turn.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Message is one conversational turn.
type Message struct {
	ID               int64
	Text             string
	Sender           Sender
	Timestamp        time.Time
	IsError          bool
	RemoteMessageID  string // backend id of a bot turn; empty for user and error turns
	SessionID        string
	UserReaction     Reaction
	FollowUpQuestion string
	SuggestedTopics  []string
}

// Store is an append-only ordered message list. Mutations are
// mutex-serialized so a multi-goroutine host behaves like the
// single-threaded original.
type Store struct {
	mu         sync.Mutex
	messages   []Message
	nextID     int64
	generation uint64
}

// New returns a store seeded with a single bot welcome message.
func New(welcomeText string) *Store {
	s := &Store{nextID: 1}
	s.Append(Message{Text: welcomeText, Sender: SenderBot})
	return s
}

// Append places msg at the tail, assigning a fresh id when the caller
// didn't supply one, and returns the stored message.
func (s *Store) Append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(msg)
}

func (s *Store) append(msg Message) Message {
	if msg.ID == 0 {
		msg.ID = s.nextID
	}
	if msg.ID >= s.nextID {
		s.nextID = msg.ID + 1
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the message list in order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Get returns the message with the given id.
func (s *Store) Get(id int64) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// LatestEligibleBotID scans from the tail backward and returns the id of
// the most recent non-error bot message. Only that message may show
// follow-up/topic affordances and accept new reactions. The second
// return is false when no such message exists.
func (s *Store) LatestEligibleBotID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestEligibleBotID()
}

func (s *Store) latestEligibleBotID() (int64, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Sender == SenderBot && !m.IsError {
			return m.ID, true
		}
	}
	return 0, false
}

// UpdateReaction applies a reaction toggle to the message with the given
// id and returns the value now stored. Toggling with the current value
// clears it. Only the latest eligible bot message accepts a new
// reaction; earlier messages are rejected with ErrNotEligible and no
// state change. Messages without a remote id never accept reactions.
func (s *Store) UpdateReaction(id int64, value Reaction) (Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := s.latestEligibleBotID()
	if !ok || latest != id {
		return ReactionNone, ErrNotEligible
	}
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID != id {
			continue
		}
		if m.Sender != SenderBot || m.IsError || m.RemoteMessageID == "" {
			return ReactionNone, ErrNotEligible
		}
		if m.UserReaction == value {
			m.UserReaction = ReactionNone
		} else {
			m.UserReaction = value
		}
		return m.UserReaction, nil
	}
	return ReactionNone, ErrNotFound
}

// SetReaction force-sets a reaction without the toggle or eligibility
// rules. Used to roll back an optimistic update after a failed save.
func (s *Store) SetReaction(id int64, value Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].UserReaction = value
			return
		}
	}
}

// Clear discards all messages, bumps the store generation and seeds a
// fresh bot welcome message. In-flight responses tagged with an older
// generation must be discarded by the caller.
func (s *Store) Clear(welcomeText string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.generation++
	return s.append(Message{Text: welcomeText, Sender: SenderBot})
}

// ReplaceWelcome rewrites the welcome text when the conversation is
// still untouched (only the seeded welcome present). Used when a late
// enrichment fetch personalizes the greeting. Returns false once the
// user has interacted.
func (s *Store) ReplaceWelcome(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) != 1 || s.messages[0].Sender != SenderBot {
		return false
	}
	s.messages[0].Text = text
	return true
}

// Generation returns the current clear-generation counter.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
