// internal/infrastructure/browser/browser_test.go
package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// Требует Chrome: TEST_CHROME=1 или TEST_CHROME=/path/to/chrome
func chromeBrowser(t *testing.T) *Browser {
	t.Helper()
	value := os.Getenv("TEST_CHROME")
	if value == "" {
		t.Skip("TEST_CHROME не задан")
	}

	cfg := Config{Headless: true, RenderTimeout: 30 * time.Second}
	if value != "1" {
		cfg.ExecPath = value
	}
	return New(cfg, logger.NewNop())
}

// Страница дописывает статус скриптом после загрузки, как страница чека.
// Итоговый текст собирается в скрипте, чтобы его не было в исходном HTML.
func receiptServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body style="background:#fff">
<div id="status">Ожидаем оплату</div>
<script>
setTimeout(function () { document.getElementById("status").textContent = ["Опла", "чено"].join("") + " 500 руб"; }, 50);
</script>
</body></html>`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{}, nil)
	assert.Equal(t, 1280, b.cfg.WindowWidth)
	assert.Equal(t, 800, b.cfg.WindowHeight)
	assert.Equal(t, 45*time.Second, b.cfg.RenderTimeout)
	assert.NotNil(t, b.logger)

	b = New(Config{WindowWidth: 800, WindowHeight: 600, RenderTimeout: time.Second}, logger.NewNop())
	assert.Equal(t, 800, b.cfg.WindowWidth)
	assert.Equal(t, 600, b.cfg.WindowHeight)
	assert.Equal(t, time.Second, b.cfg.RenderTimeout)
}

func TestPageRenderer_RendersScriptedPage(t *testing.T) {
	b := chromeBrowser(t)
	server := receiptServer(t)

	html, err := NewPageRenderer(b, 300*time.Millisecond).Render(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "Оплачено 500 руб")
	assert.Equal(t, payment.CheckCompleted, payment.ClassifyStatus(html))
}

func TestScreenshotSource_StopsAtAcceptedRegion(t *testing.T) {
	b := chromeBrowser(t)
	server := receiptServer(t)

	regions := []payment.Region{
		{X: 0, Y: 0, Width: 100, Height: 100},
		{X: 100, Y: 0, Width: 100, Height: 100},
		{X: 200, Y: 0, Width: 100, Height: 100},
	}

	var shots [][]byte
	err := NewScreenshotSource(b, 100*time.Millisecond).CaptureRegions(context.Background(), server.URL, regions,
		func(png []byte) bool {
			shots = append(shots, png)
			return len(shots) == 2
		})
	require.NoError(t, err)
	require.Len(t, shots, 2)
	for _, shot := range shots {
		assert.True(t, bytes.HasPrefix(shot, pngMagic))
	}
}
