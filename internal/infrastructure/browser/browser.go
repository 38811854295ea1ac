// internal/infrastructure/browser/browser.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

// Config параметры запуска headless Chrome
type Config struct {
	ExecPath      string
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	RenderTimeout time.Duration
}

// Browser запускает отдельный экземпляр Chrome на каждый вызов
// и гарантированно закрывает его при выходе.
type Browser struct {
	cfg    Config
	logger *logger.Logger
}

// New создает фабрику браузерных сессий
func New(cfg Config, log *logger.Logger) *Browser {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1280
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 800
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 45 * time.Second
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Browser{cfg: cfg, logger: log}
}

// session поднимает Chrome; cancel закрывает вкладку и процесс браузера
func (b *Browser) session(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(b.cfg.WindowWidth, b.cfg.WindowHeight),
	)
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.RenderTimeout)

	return timeoutCtx, func() {
		cancelTimeout()
		cancelTab()
		cancelAlloc()
	}
}

// load открывает url, ждет networkIdle и затем settle
func (b *Browser) load(ctx context.Context, url string, settle time.Duration) error {
	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	return chromedp.Run(ctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(context.Context) error {
			// События about:blank не считаются
			select {
			case <-idle:
			default:
			}
			return nil
		}),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-idle:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("не дождались networkIdle: %w", ctx.Err())
			}
		}),
		chromedp.Sleep(settle),
	)
}

// RenderHTML возвращает HTML страницы после выполнения скриптов
func (b *Browser) RenderHTML(ctx context.Context, url string, settle time.Duration) (string, error) {
	sessCtx, cancel := b.session(ctx)
	defer cancel()

	if err := b.load(sessCtx, url, settle); err != nil {
		return "", fmt.Errorf("ошибка загрузки %s: %w", url, err)
	}

	var html string
	if err := chromedp.Run(sessCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("ошибка чтения HTML %s: %w", url, err)
	}
	return html, nil
}

// CaptureRegions делает скриншоты областей по порядку, пока accept не вернет true
func (b *Browser) CaptureRegions(ctx context.Context, url string, settle time.Duration,
	regions []payment.Region, accept func([]byte) bool) error {
	sessCtx, cancel := b.session(ctx)
	defer cancel()

	if err := b.load(sessCtx, url, settle); err != nil {
		return fmt.Errorf("ошибка загрузки %s: %w", url, err)
	}

	for i, r := range regions {
		var buf []byte
		err := chromedp.Run(sessCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Scale: 1}).
				Do(ctx)
			return err
		}))
		if err != nil {
			b.logger.Debug("Скриншот области %d не получен: %v", i+1, err)
			continue
		}
		if accept(buf) {
			b.logger.Debug("QR найден в области %d", i+1)
			return nil
		}
	}
	return nil
}

// PageRenderer рендерит страницы чека с задержкой после networkIdle
type PageRenderer struct {
	browser *Browser
	settle  time.Duration
}

// NewPageRenderer создает рендерер для проверки статуса
func NewPageRenderer(b *Browser, settle time.Duration) *PageRenderer {
	return &PageRenderer{browser: b, settle: settle}
}

func (r *PageRenderer) Render(ctx context.Context, url string) (string, error) {
	return r.browser.RenderHTML(ctx, url, r.settle)
}

// ScreenshotSource снимает области страницы чека для поиска QR-кода
type ScreenshotSource struct {
	browser *Browser
	settle  time.Duration
}

// NewScreenshotSource создает источник скриншотов
func NewScreenshotSource(b *Browser, settle time.Duration) *ScreenshotSource {
	return &ScreenshotSource{browser: b, settle: settle}
}

func (s *ScreenshotSource) CaptureRegions(ctx context.Context, url string, regions []payment.Region, accept func([]byte) bool) error {
	return s.browser.CaptureRegions(ctx, url, s.settle, regions, accept)
}

var (
	_ payment.PageRenderer     = (*PageRenderer)(nil)
	_ payment.ScreenshotSource = (*ScreenshotSource)(nil)
)
