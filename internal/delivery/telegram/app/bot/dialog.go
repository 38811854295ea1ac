// internal/delivery/telegram/app/bot/dialog.go
package bot

import (
	"context"
	"sync"
	"time"
)

// DialogState хранит шаг диалога чата
type DialogState interface {
	SetStep(ctx context.Context, chatID int64, step string) error
	GetStep(ctx context.Context, chatID int64) (string, error)
	ClearStep(ctx context.Context, chatID int64) error
}

type memoryStep struct {
	step      string
	expiresAt time.Time
}

// MemoryDialogState хранилище шагов в памяти процесса, когда Redis выключен
type MemoryDialogState struct {
	mu    sync.Mutex
	steps map[int64]memoryStep
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryDialogState создает хранилище шагов в памяти
func NewMemoryDialogState(ttl time.Duration) *MemoryDialogState {
	return &MemoryDialogState{
		steps: make(map[int64]memoryStep),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryDialogState) SetStep(ctx context.Context, chatID int64, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[chatID] = memoryStep{step: step, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDialogState) GetStep(ctx context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.steps[chatID]
	if !ok {
		return "", nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.steps, chatID)
		return "", nil
	}
	return entry.step, nil
}

func (s *MemoryDialogState) ClearStep(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.steps, chatID)
	return nil
}
