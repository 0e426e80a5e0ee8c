package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/oro-invoice/internal/form"
)

const (
	sessionCookieName = "oro_invoice_session"
	sessionTTL        = 12 * time.Hour
)

// session is the form one browser is editing.
type session struct {
	id       string
	form     *form.Controller
	fields   *form.MapFields
	flash    *form.Flash
	lastSeen time.Time
}

type sessionKey struct{}

// sessionStore keeps sessions in memory. Invoices are not persisted, so a
// restart simply hands every browser a fresh form.
type sessionStore struct {
	secret  []byte
	newForm func(fields *form.MapFields, flash *form.Flash) *form.Controller
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(secret string, newForm func(*form.MapFields, *form.Flash) *form.Controller) *sessionStore {
	return &sessionStore{
		secret:   []byte(secret),
		newForm:  newForm,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (s *sessionStore) sign(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + hex.EncodeToString(mac.Sum(nil))
}

func (s *sessionStore) verify(value string) (string, bool) {
	id, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}
	return id, true
}

// lookup returns the live session for id, creating one when missing.
func (s *sessionStore) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.lastSeen = now
			return sess, false
		}
	} else {
		id = uuid.NewString()
	}

	fields := form.NewMapFields()
	flash := &form.Flash{}
	sess := &session{
		id:       id,
		form:     s.newForm(fields, flash),
		fields:   fields,
		flash:    flash,
		lastSeen: now,
	}
	s.sessions[id] = sess
	return sess, true
}

func (s *sessionStore) expire(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > sessionTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// middleware attaches the caller's session to the request context.
func (s *sessionStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id, _ = s.verify(cookie.Value)
		}

		sess, created := s.lookup(id)
		if created {
			log.Printf("[INFO] new session %s", sess.id)
			s.setCookie(w, sess.id)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session {
	sess, _ := r.Context().Value(sessionKey{}).(*session)
	return sess
}
