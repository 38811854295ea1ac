// internal/delivery/telegram/app/bot/polling_test.go
package bot

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-bot/internal/delivery/telegram"
)

func TestChatLocker_SerializesOneChat(t *testing.T) {
	var locker chatLocker
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(42)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxInside) {
				atomic.StoreInt32(&maxInside, n)
			}
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, locker.Len())
}

func TestChatLocker_ReleasesIdleChats(t *testing.T) {
	var locker chatLocker

	for chatID := int64(1); chatID <= 1000; chatID++ {
		unlock := locker.Lock(chatID)
		unlock()
	}
	assert.Zero(t, locker.Len())

	unlockA := locker.Lock(1)
	unlockB := locker.Lock(2)
	assert.Equal(t, 2, locker.Len())
	unlockA()
	assert.Equal(t, 1, locker.Len())
	unlockB()
	assert.Zero(t, locker.Len())
}

func TestChatIDOf(t *testing.T) {
	chat := telegram.Chat{ID: 10}
	from := telegram.User{ID: 20}

	assert.Equal(t, int64(10), chatIDOf(&telegram.Update{Message: &telegram.Message{Chat: chat}}))
	assert.Equal(t, int64(10), chatIDOf(&telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		From: from, Message: &telegram.Message{Chat: chat},
	}}))
	assert.Equal(t, int64(20), chatIDOf(&telegram.Update{CallbackQuery: &telegram.CallbackQuery{From: from}}))
	assert.Zero(t, chatIDOf(&telegram.Update{}))
}
