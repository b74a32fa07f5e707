package core

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
)

const flashSessionName = "socialtech_messages"

// Message is a one-shot notice shown on the next page render. The cookie
// carries only the level, the form it answers and the submitter's name; the
// sentence is composed by Text when the page renders.
type Message struct {
	Level string
	Form  string
	Name  string
}

// Text is the sentence shown to the visitor. Forms without a confirmation
// template show the name as is.
func (m Message) Text() string {
	if format, ok := confirmations[m.Form]; ok {
		return fmt.Sprintf(format, m.Name)
	}
	return m.Name
}

func init() {
	gob.Register(Message{})
}

// Messenger keeps pending messages in a signed cookie. Nothing about a
// submission lives on the server.
type Messenger struct {
	store sessions.Store
	name  string
}

// NewMessenger signs cookies with secret. An empty secret gets a random key,
// which invalidates pending messages on restart.
func NewMessenger(secret []byte, secure bool) *Messenger {
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Messenger{store: store, name: flashSessionName}
}

// Add queues msg for the next request. It must run before the response
// headers are written. An error means no cookie was set, typically because
// the encoded message exceeds the browser cookie limit.
func (m *Messenger) Add(w http.ResponseWriter, r *http.Request, msg Message) error {
	// an undecodable cookie still yields a fresh session, which replaces it
	session, _ := m.store.Get(r, m.name)
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("flash: save: %w", err)
	}
	return nil
}

// Pop returns and clears the pending messages. A cookie that fails to
// decode is expired and its error returned.
func (m *Messenger) Pop(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		session.Options.MaxAge = -1
		if saveErr := session.Save(r, w); saveErr != nil {
			return nil, fmt.Errorf("flash: expire undecodable cookie: %w", saveErr)
		}
		return nil, fmt.Errorf("flash: decode cookie: %w", err)
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil, nil
	}

	messages := make([]Message, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(Message); ok {
			messages = append(messages, msg)
		}
	}

	return messages, session.Save(r, w)
}
