// internal/core/domain/payment/receipt.go
package payment

import (
	"context"
	"fmt"
)

// Region прямоугольник скриншота в CSS-пикселях
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// QRRegions области поиска QR-кода, от самой узкой к самой широкой
var QRRegions = []Region{
	{X: 500, Y: 100, Width: 300, Height: 300},
	{X: 450, Y: 80, Width: 350, Height: 350},
	{X: 400, Y: 50, Width: 400, Height: 400},
	{X: 300, Y: 0, Width: 500, Height: 500},
}

// PageRenderer отдает HTML страницы после выполнения JavaScript
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ScreenshotSource делает скриншоты областей отрендеренной страницы.
// accept вызывается для каждого PNG по порядку; true останавливает перебор.
// Браузер живет только в пределах одного вызова.
type ScreenshotSource interface {
	CaptureRegions(ctx context.Context, url string, regions []Region, accept func(png []byte) bool) error
}

// ReceiptURLBuilder строит адрес страницы чека
type ReceiptURLBuilder interface {
	ReceiptURL(paymentID string) string
}

// TemplateReceiptURL строит адрес чека по шаблону fmt
type TemplateReceiptURL string

func (t TemplateReceiptURL) ReceiptURL(paymentID string) string {
	return fmt.Sprintf(string(t), paymentID)
}
