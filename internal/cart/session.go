package cart

import (
	"sync"
	"time"

	"github.com/orderfood/api/internal/remote"
)

// messageTTL is how long a feedback message stays visible before the view
// clears it on the next read.
const messageTTL = 3 * time.Second

// Session is the per-customer cart state. All mutations of a customer's cart
// run under the session lock, which also serializes the lazy creation of the
// pending order so two concurrent adds never create two carts.
type Session struct {
	mu         sync.Mutex
	customerID int64

	order *remote.Order

	message    string
	messageTag string
	msgExpires time.Time
}

// Lock takes the session for a cart operation. Callers hold it across the
// whole read-modify-write cycle, not per field.
func (s *Session) Lock() { s.mu.Lock() }

func (s *Session) Unlock() { s.mu.Unlock() }

// SetMessage replaces the feedback message and restarts its expiry window.
// The tag distinguishes success from error rendering.
func (s *Session) SetMessage(tag, text string) {
	s.message = text
	s.messageTag = tag
	s.msgExpires = time.Now().Add(messageTTL)
}

// Message returns the current feedback message, clearing it once the expiry
// window has passed. A newer message always supersedes an older one because
// SetMessage restarts the window.
func (s *Session) Message() (tag, text string) {
	if s.message != "" && time.Now().After(s.msgExpires) {
		s.message = ""
		s.messageTag = ""
	}
	return s.messageTag, s.message
}

// Order returns the cached order snapshot, nil when no cart exists.
func (s *Session) Order() *remote.Order { return s.order }

// SetOrder replaces the cached snapshot after a re-read from the order
// service.
func (s *Session) SetOrder(o *remote.Order) { s.order = o }

// Sessions hands out one Session per customer, creating them lazily.
type Sessions struct {
	mu       sync.RWMutex
	byCustID map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byCustID: make(map[int64]*Session)}
}

func (m *Sessions) Get(customerID int64) *Session {
	m.mu.RLock()
	s, ok := m.byCustID[customerID]
	m.mu.RUnlock()
	if ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.byCustID[customerID]; ok {
		return s
	}
	s = &Session{customerID: customerID}
	m.byCustID[customerID] = s
	return s
}

// Drop discards a customer's session, e.g. after their order completes or
// their cart is cancelled.
func (m *Sessions) Drop(customerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byCustID, customerID)
}
