// internal/core/domain/payment/classifier.go
package payment

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Порядок важен: успешные ключевые слова проверяются первыми
	successKeywords = []string{"оплачено", "успешно", "success", "completed", "подтвержден"}
	failureKeywords = []string{"отклонен", "ошибка", "error", "failed", "отменен"}
)

// Одно число: группы по три цифры через пробел, NBSP, точку или запятую
// и не больше двух знаков копеек. Даты вида 15.10.2024 под шаблон не попадают.
const amountNumber = `\b(\d{1,3}(?:[ \x{00a0}.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + amountNumber + `\s*руб`),
	regexp.MustCompile(`(?i)` + amountNumber + `\s*rub`),
	regexp.MustCompile(`(?i)сумма[:\s]*` + amountNumber),
	regexp.MustCompile(amountNumber + `\s*₽`),
}

// ClassifyStatus определяет статус по тексту страницы чека
func ClassifyStatus(pageText string) CheckStatus {
	text := strings.ToLower(pageText)

	for _, kw := range successKeywords {
		if strings.Contains(text, kw) {
			return CheckCompleted
		}
	}

	for _, kw := range failureKeywords {
		if strings.Contains(text, kw) {
			return CheckFailed
		}
	}

	return CheckPending
}

// ExtractSettledAmount ищет сумму рядом с обозначением валюты.
// Дробная часть отбрасывается.
func ExtractSettledAmount(markup string) (int, bool) {
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(markup, -1) {
			if amount, ok := parseAmount(m[1]); ok {
				return amount, true
			}
		}
	}
	return 0, false
}

// parseAmount нормализует "1 234,50", "1.234,50", "1,234.50", "1.234", "1234.5".
// Разделитель считается десятичным только если после него одна или две цифры.
func parseAmount(raw string) (int, bool) {
	s := strings.NewReplacer(" ", "", "\u00a0", "").Replace(raw)
	if s == "" {
		return 0, false
	}

	fraction := ""
	if cut := strings.LastIndexAny(s, ".,"); cut >= 0 && len(s)-cut-1 <= 2 {
		s, fraction = s[:cut], s[cut+1:]
	}
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	if fraction != "" {
		s += "." + fraction
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if d.IsNegative() {
		return 0, false
	}
	return int(d.IntPart()), true
}
