// internal/core/domain/payment/session_store.go
package payment

import (
	"sync"
	"time"
)

// SessionStore таблица активных платежных сессий.
// Потокобезопасна; каждый payment_id используется не больше одного раза.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	retired  map[string]time.Time
	now      func() time.Time
}

// Как долго помнить удаленные id. Дальше повтор отсекает таблица deposits.
const retiredTTL = 24 * time.Hour

// NewSessionStore создает пустое хранилище сессий
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		retired:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// Insert добавляет новую сессию в статусе pending
func (s *SessionStore) Insert(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.PaymentID]; ok {
		return ErrSessionExists
	}
	if _, ok := s.retired[session.PaymentID]; ok {
		return ErrSessionExists
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	session.Status = StatusPending
	s.sessions[session.PaymentID] = &session
	return nil
}

// Get возвращает копию сессии
func (s *SessionStore) Get(paymentID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[paymentID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// RecordCheck фиксирует очередную проверку и возвращает число выполненных
func (s *SessionStore) RecordCheck(paymentID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[paymentID]
	if !ok {
		return 0, false
	}
	session.ChecksDone++
	session.LastCheck = s.now()
	return session.ChecksDone, true
}

// BeginCredit переводит pending -> crediting и фиксирует подтвержденную сумму.
// Сумма, зафиксированная ранее, не перезаписывается.
// Возвращает true только для первого вызова.
func (s *SessionStore) BeginCredit(paymentID string, actualAmount int) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[paymentID]
	if !ok || session.Status != StatusPending {
		return Session{}, false
	}
	session.Status = StatusCrediting
	if session.ActualAmount == nil {
		session.ActualAmount = &actualAmount
	}
	return *session, true
}

// AbortCredit возвращает crediting -> pending после неудачного зачисления.
// Подтвержденная сумма остается, и сессию уже нельзя истечь или отклонить.
func (s *SessionStore) AbortCredit(paymentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[paymentID]
	if !ok || session.Status != StatusCrediting {
		return false
	}
	session.Status = StatusPending
	return true
}

// Complete переводит crediting -> completed
func (s *SessionStore) Complete(paymentID string) (Session, bool) {
	return s.transition(paymentID, StatusCrediting, StatusCompleted)
}

// Fail переводит pending -> failed, если оплата еще не подтверждена
func (s *SessionStore) Fail(paymentID string) (Session, bool) {
	return s.transition(paymentID, StatusPending, StatusFailed)
}

// Expire переводит pending -> expired, если оплата еще не подтверждена
func (s *SessionStore) Expire(paymentID string) (Session, bool) {
	return s.transition(paymentID, StatusPending, StatusExpired)
}

func (s *SessionStore) transition(paymentID string, from, to Status) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[paymentID]
	if !ok || session.Status != from {
		return Session{}, false
	}
	if from == StatusPending && session.Confirmed() {
		return Session{}, false
	}
	session.Status = to
	return *session, true
}

// Remove удаляет сессию; id больше не может быть вставлен повторно
func (s *SessionStore) Remove(paymentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[paymentID]; !ok {
		return false
	}
	delete(s.sessions, paymentID)
	s.retired[paymentID] = s.now()
	return true
}

// Sweep удаляет сессии старше maxAge и возвращает их количество.
// Подтвержденные, но не зачисленные сессии не удаляются.
func (s *SessionStore) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if session.Confirmed() || session.Status == StatusCrediting {
			continue
		}
		if session.Age(now) > maxAge {
			delete(s.sessions, id)
			s.retired[id] = now
			removed++
		}
	}
	for id, at := range s.retired {
		if now.Sub(at) > retiredTTL {
			delete(s.retired, id)
		}
	}
	return removed
}

// ActiveCount количество незавершенных сессий пользователя
func (s *SessionStore) ActiveCount(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		if session.Status == StatusPending || session.Status == StatusCrediting {
			count++
		}
	}
	return count
}

// Len общее количество сессий
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
