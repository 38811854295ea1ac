// internal/delivery/telegram/app/bot/buttons/builder.go
package buttons

import (
	"storefront-bot/internal/delivery/telegram"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
)

// ButtonBuilder - построитель кнопок
type ButtonBuilder struct {
	supportURL string
}

// NewButtonBuilder создает новый построитель кнопок
func NewButtonBuilder(supportURL string) *ButtonBuilder {
	return &ButtonBuilder{supportURL: supportURL}
}

// MainMenuKeyboard клавиатура главного меню
func (b *ButtonBuilder) MainMenuKeyboard() telegram.InlineKeyboardMarkup {
	return keyboard(
		row(callback(constants.ButtonTexts.Profile, constants.CallbackProfile)),
		row(callback(constants.ButtonTexts.AddBalance, constants.CallbackAddBalance)),
	)
}

// ProfileKeyboard клавиатура профиля
func (b *ButtonBuilder) ProfileKeyboard() telegram.InlineKeyboardMarkup {
	return keyboard(
		row(callback(constants.ButtonTexts.AddBalance, constants.CallbackAddBalance)),
		row(callback(constants.ButtonTexts.MainMenu, constants.CallbackMainMenu)),
	)
}

// BackToProfileKeyboard одна кнопка возврата в профиль
func (b *ButtonBuilder) BackToProfileKeyboard() telegram.InlineKeyboardMarkup {
	return keyboard(row(callback(constants.ButtonTexts.BackProfile, constants.CallbackProfile)))
}

// DepositKeyboard клавиатура созданного платежа
func (b *ButtonBuilder) DepositKeyboard(redeemURL, paymentID string) telegram.InlineKeyboardMarkup {
	return keyboard(
		row(link(constants.ButtonTexts.OpenPayLink, redeemURL)),
		row(callback(constants.ButtonTexts.CheckStatus, constants.CheckPaymentCallback(paymentID))),
		row(callback(constants.ButtonTexts.BackProfile, constants.CallbackProfile)),
	)
}

// CompletedKeyboard клавиатура после зачисления
func (b *ButtonBuilder) CompletedKeyboard() telegram.InlineKeyboardMarkup {
	return keyboard(
		row(callback(constants.ButtonTexts.Profile, constants.CallbackProfile)),
		row(callback(constants.ButtonTexts.MainMenu, constants.CallbackMainMenu)),
	)
}

// FailedKeyboard клавиатура неудачного платежа
func (b *ButtonBuilder) FailedKeyboard() telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{
		row(callback(constants.ButtonTexts.RetryPay, constants.CallbackAddBalance)),
	}
	if b.supportURL != "" {
		rows = append(rows, row(link("🆘 Поддержка", b.supportURL)))
	}
	return keyboard(rows...)
}

// ExpiredKeyboard клавиатура истекшего платежа
func (b *ButtonBuilder) ExpiredKeyboard() telegram.InlineKeyboardMarkup {
	return keyboard(
		row(callback(constants.ButtonTexts.NewPayment, constants.CallbackAddBalance)),
		row(callback(constants.ButtonTexts.Profile, constants.CallbackProfile)),
	)
}

func keyboard(rows ...[]telegram.InlineKeyboardButton) telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func row(buttons ...telegram.InlineKeyboardButton) []telegram.InlineKeyboardButton {
	return buttons
}

func callback(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func link(text, url string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, URL: url}
}
