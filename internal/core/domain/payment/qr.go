// internal/core/domain/payment/qr.go
package payment

import (
	"bytes"
	"context"
	"image"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"storefront-bot/pkg/logger"
)

// QRExtractor достает ссылку на оплату из QR-кода на странице чека
type QRExtractor struct {
	screenshots ScreenshotSource
	regions     []Region
	logger      *logger.Logger
}

// NewQRExtractor создает экстрактор с областями поиска по умолчанию
func NewQRExtractor(screenshots ScreenshotSource, log *logger.Logger) *QRExtractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &QRExtractor{
		screenshots: screenshots,
		regions:     QRRegions,
		logger:      log,
	}
}

// ExtractRedeemLink возвращает содержимое QR-кода или receiptURL, если код не найден
func (e *QRExtractor) ExtractRedeemLink(ctx context.Context, receiptURL string) string {
	var link string
	err := e.screenshots.CaptureRegions(ctx, receiptURL, e.regions, func(png []byte) bool {
		text, ok := DecodeQR(png)
		if ok {
			link = text
		}
		return ok
	})
	if err != nil {
		e.logger.Warn("⚠️ Ошибка получения скриншота чека %s: %v", receiptURL, err)
	}
	if link == "" {
		e.logger.Info("ℹ️ QR-код не найден, используется ссылка на чек %s", receiptURL)
		return receiptURL
	}

	e.logger.Info("✅ QR-код распознан: %s", link)
	return link
}

// DecodeQR распознает первый QR-код на изображении
func DecodeQR(data []byte) (string, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil || result.GetText() == "" {
		return "", false
	}
	return result.GetText(), true
}
