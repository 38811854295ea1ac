// internal/core/domain/payment/classifier_test.go
package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		page string
		want CheckStatus
	}{
		{name: "paid in russian", page: "<h1>Оплачено</h1>", want: CheckCompleted},
		{name: "success in english", page: "Payment SUCCESS", want: CheckCompleted},
		{name: "confirmed", page: "Платеж подтвержден банком", want: CheckCompleted},
		{name: "rejected", page: "Платеж отклонен", want: CheckFailed},
		{name: "error", page: "Произошла ошибка", want: CheckFailed},
		{name: "cancelled", page: "Операция отменена пользователем", want: CheckFailed},
		{name: "waiting", page: "Ожидаем оплату по QR-коду", want: CheckPending},
		{name: "empty page", page: "", want: CheckPending},
		{name: "success wins over failure", page: "error handler loaded; status: completed", want: CheckCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.page))
		})
	}
}

func TestExtractSettledAmount(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int
		found  bool
	}{
		{name: "space thousands and comma decimals", markup: "Сумма: 1 234,50 руб", want: 1234, found: true},
		{name: "nbsp thousands", markup: "<span>2\u00a0500 руб.</span>", want: 2500, found: true},
		{name: "dot thousands", markup: "1.234,50 руб", want: 1234, found: true},
		{name: "comma thousands", markup: "Total 1,234.50 RUB", want: 1234, found: true},
		{name: "plain decimal", markup: "Итого 250.99 руб", want: 250, found: true},
		{name: "ruble sign", markup: "<b>500 ₽</b>", want: 500, found: true},
		{name: "label only", markup: "Сумма: 750", want: 750, found: true},
		{name: "dot thousands without decimals", markup: "1.234 руб", want: 1234, found: true},
		{name: "date before amount", markup: "Оплачено 15.10.2024 500 руб", want: 500, found: true},
		{name: "order number before amount", markup: "Заказ №12345678, 500 руб", want: 500, found: true},
		{name: "year before amount", markup: "Чек от 2024 года: 2 500 руб", want: 2500, found: true},
		{name: "no amount", markup: "Ожидаем оплату", want: 0, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, found := ExtractSettledAmount(tt.markup)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, amount)
		})
	}
}
