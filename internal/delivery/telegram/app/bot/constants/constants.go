// internal/delivery/telegram/app/bot/constants/constants.go
package constants

// ButtonTexts содержит тексты для кнопок
var ButtonTexts = struct {
	Profile     string
	AddBalance  string
	RetryPay    string
	NewPayment  string
	OpenPayLink string
	CheckStatus string
	BackProfile string
	MainMenu    string
}{
	Profile:     "👤 Профиль",
	AddBalance:  "💵 Пополнить баланс",
	RetryPay:    "💵 Попробовать снова",
	NewPayment:  "💵 Создать новый платеж",
	OpenPayLink: "🔗 Открыть ссылку оплаты",
	CheckStatus: "🔄 Проверить статус",
	BackProfile: "🔙 Назад в профиль",
	MainMenu:    "🏠 В главное меню",
}

// CommandDescriptions описания команд для меню Telegram
var CommandDescriptions = struct {
	Start   string
	Profile string
	Cancel  string
	Help    string
}{
	Start:   "Главное меню",
	Profile: "Профиль и баланс",
	Cancel:  "Отменить пополнение",
	Help:    "Помощь",
}

// AccessTexts тексты ограничений доступа
var AccessTexts = struct {
	Banned string
}{
	Banned: "❌ Ваш аккаунт заблокирован. Обратитесь к администратору.",
}

// PaymentTexts тексты платежного диалога
var PaymentTexts = struct {
	Prompt          string
	NotNumber       string
	TooSmall        string
	TooLarge        string
	Creating        string
	CreateFailed    string
	RateLimited     string
	Cancelled       string
	AlreadyCredited string
	Crediting       string
	Failed          string
	Pending         string
	Expired         string
	Unknown         string
	NotFound        string
}{
	Prompt:          "💵 *Пополнение баланса*\n\nВведите сумму для пополнения (от %d до %d руб.):",
	NotNumber:       "❌ Пожалуйста, введите корректную сумму (только цифры):",
	TooSmall:        "❌ Минимальная сумма пополнения - %d руб.:",
	TooLarge:        "❌ Максимальная сумма пополнения - %s рублей:",
	Creating:        "🔄 Создаем платеж...",
	CreateFailed:    "❌ Ошибка при создании платежа. Попробуйте позже.",
	RateLimited:     "⏳ Слишком много платежей подряд. Попробуйте позже.",
	Cancelled:       "❌ Пополнение баланса отменено.",
	AlreadyCredited: "✅ Платеж уже завершен и средства зачислены!",
	Crediting:       "⏳ Оплата получена, зачисляем средства на баланс...",
	Failed:          "❌ Платеж не прошел. Попробуйте создать новый.",
	Pending:         "🔄 Платеж обрабатывается... (проверка %d/%d)",
	Expired:         "⏰ Время оплаты истекло. Создайте новый платеж.",
	Unknown:         "⚡ Статус платежа неизвестен.",
	NotFound:        "❌ Сессия платежа не найдена!",
}
