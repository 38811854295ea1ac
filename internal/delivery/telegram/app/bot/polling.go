// internal/delivery/telegram/app/bot/polling.go
package bot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront-bot/internal/delivery/telegram"
	"storefront-bot/pkg/logger"
)

// PollingClient - клиент для polling обновлений.
// Обновления одного чата обрабатываются по очереди, разные чаты параллельно.
type PollingClient struct {
	bot     *TelegramBot
	offset  int
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	sem       chan struct{}
	handlers  sync.WaitGroup
	chatLocks chatLocker
}

// NewPollingClient создает новый polling клиент
func NewPollingClient(bot *TelegramBot, workers int) *PollingClient {
	return &PollingClient{
		bot: bot,
		sem: make(chan struct{}, workers),
	}
}

// Start запускает polling обновлений
func (pc *PollingClient) Start(ctx context.Context) error {
	if !pc.running.CompareAndSwap(false, true) {
		return fmt.Errorf("polling already running")
	}

	ctx, pc.cancel = context.WithCancel(ctx)
	pc.done = make(chan struct{})
	logger.Info("🔄 Starting Telegram bot polling...")

	go pc.pollLoop(ctx)
	return nil
}

// Stop останавливает polling и ждет завершения обработчиков
func (pc *PollingClient) Stop() {
	if !pc.running.CompareAndSwap(true, false) {
		return
	}
	logger.Info("🛑 Stopping Telegram bot polling...")
	pc.cancel()
	<-pc.done
	pc.handlers.Wait()
}

// IsRunning true пока polling активен
func (pc *PollingClient) IsRunning() bool {
	return pc.running.Load()
}

// pollLoop основной цикл polling
func (pc *PollingClient) pollLoop(ctx context.Context) {
	defer close(pc.done)

	backoff := time.Second
	for ctx.Err() == nil {
		updates, err := pc.bot.pollingClient.GetUpdates(ctx, pc.offset, pc.bot.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("❌ Error fetching updates: %v", err)
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for i := range updates {
			update := updates[i]
			pc.offset = update.UpdateID + 1
			pc.dispatch(ctx, &update)
		}
	}
}

// dispatch обрабатывает обновление в отдельной горутине
func (pc *PollingClient) dispatch(ctx context.Context, update *telegram.Update) {
	select {
	case pc.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	pc.handlers.Add(1)
	go func() {
		defer pc.handlers.Done()
		defer func() { <-pc.sem }()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("❌ Panic при обработке обновления %d: %v", update.UpdateID, r)
			}
		}()

		unlock := pc.chatLocks.Lock(chatIDOf(update))
		defer unlock()

		if err := pc.bot.HandleUpdate(ctx, update); err != nil {
			logger.Error("❌ Error handling update %d: %v", update.UpdateID, err)
		}
	}()
}

// chatLocker сериализует обработку обновлений одного чата.
// Запись удаляется, как только по чату не остается обработчиков.
type chatLocker struct {
	mu    sync.Mutex
	locks map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// Lock захватывает блокировку чата и возвращает функцию освобождения
func (l *chatLocker) Lock(chatID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*chatLock)
	}
	lock, ok := l.locks[chatID]
	if !ok {
		lock = &chatLock{}
		l.locks[chatID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, chatID)
		}
		l.mu.Unlock()
	}
}

// Len количество чатов с активными обработчиками
func (l *chatLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func chatIDOf(update *telegram.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
