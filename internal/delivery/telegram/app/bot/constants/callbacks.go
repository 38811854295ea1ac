// internal/delivery/telegram/app/bot/constants/callbacks.go
package constants

// Callback constants
const (
	CallbackProfile    = "profile"     // 👤 Профиль
	CallbackAddBalance = "add_balance" // 💵 Пополнить баланс
	CallbackMainMenu   = "main_menu"   // 🏠 Главное меню

	// check_payment_<payment_id>
	CallbackCheckPaymentPrefix = "check_payment_"
)

// Commands
const (
	CommandStart   = "/start"
	CommandProfile = "/profile"
	CommandCancel  = "/cancel"
	CommandHelp    = "/help"
)

// Шаги диалога
const (
	StepAwaitAmount = "await_amount"
)

// CheckPaymentCallback собирает callback проверки статуса платежа
func CheckPaymentCallback(paymentID string) string {
	return CallbackCheckPaymentPrefix + paymentID
}
