// internal/delivery/telegram/app/bot/bot.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram"
	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/router"
	"storefront-bot/internal/delivery/telegram/app/bot/message_sender"
	"storefront-bot/internal/delivery/telegram/app/bot/middlewares"
	telegram_http "storefront-bot/internal/delivery/telegram/app/http_client"
	"storefront-bot/pkg/logger"
)

// Config настройки бота
type Config struct {
	Enabled      bool
	Token        string
	BaseURL      string // по умолчанию https://api.telegram.org
	PollTimeout  time.Duration
	SendInterval time.Duration
	SupportURL   string
	Workers      int
	DialogTTL    time.Duration
}

// DepositFacade то, что фронтенду нужно от платежного ядра
type DepositFacade interface {
	ParseAmount(text string) (int, error)
	Limits() (int, int)
	StartDeposit(ctx context.Context, userID int64, amount int) (*payment.Deposit, error)
	QueryStatus(ctx context.Context, paymentID string) payment.Snapshot
	ActivePayments(userID int64) int
}

// BalanceReader баланс пользователя
type BalanceReader interface {
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
}

// Dependencies зависимости для TelegramBot
type Dependencies struct {
	Users    middlewares.UserEnsurer
	Balances BalanceReader
	Deposits DepositFacade
	Dialogs  DialogState
}

// TelegramBot - бот витрины: диалог пополнения и уведомления о платежах
type TelegramBot struct {
	config Config

	// HTTP клиенты
	telegramClient *telegram_http.TelegramClient
	pollingClient  *telegram_http.PollingClient

	messageSender  message_sender.MessageSender
	buttons        *buttons.ButtonBuilder
	router         router.Router
	authMiddleware *middlewares.AuthMiddleware
	dialogs        DialogState

	pollingHandler *PollingClient
	startupTime    time.Time
}

// NewTelegramBot создает новый экземпляр TelegramBot.
// Хэндлеры подключаются отдельно через Mount, после сборки платежного ядра,
// которому нужен Notifier этого бота.
func NewTelegramBot(cfg Config) (*TelegramBot, error) {
	if cfg.Enabled && cfg.Token == "" {
		return nil, fmt.Errorf("не задан токен бота")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.DialogTTL <= 0 {
		cfg.DialogTTL = 15 * time.Minute
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/") + "/bot" + cfg.Token + "/"
	telegramClient := telegram_http.NewTelegramClient(baseURL)

	b := &TelegramBot{
		config:         cfg,
		telegramClient: telegramClient,
		pollingClient:  telegram_http.NewPollingClient(baseURL, cfg.PollTimeout),
		messageSender:  message_sender.NewMessageSender(telegramClient, cfg.SendInterval, cfg.Enabled),
		buttons:        buttons.NewButtonBuilder(cfg.SupportURL),
		startupTime:    time.Now(),
	}
	b.pollingHandler = NewPollingClient(b, cfg.Workers)

	return b, nil
}

// Mount подключает хэндлеры и зависимости
func (b *TelegramBot) Mount(deps Dependencies) error {
	if deps.Deposits == nil {
		return fmt.Errorf("Deposits обязателен")
	}
	if deps.Balances == nil {
		return fmt.Errorf("Balances обязателен")
	}
	if deps.Dialogs == nil {
		deps.Dialogs = NewMemoryDialogState(b.config.DialogTTL)
	}

	b.router = RegisterHandlers(deps, b.messageSender, b.buttons)
	b.authMiddleware = middlewares.NewAuthMiddleware(deps.Users)
	b.dialogs = deps.Dialogs
	return nil
}

// Notifier уведомитель о платежах поверх отправителя бота
func (b *TelegramBot) Notifier() *PaymentNotifier {
	return NewPaymentNotifier(b.messageSender, b.buttons)
}

// HandleUpdate обрабатывает одно обновление от Telegram
func (b *TelegramBot) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	if b.router == nil {
		return fmt.Errorf("хэндлеры не подключены")
	}

	params, err := b.authMiddleware.ProcessUpdate(ctx, update)
	if errors.Is(err, middlewares.ErrNoSender) {
		return nil // Игнорируем другие типы обновлений
	}
	if errors.Is(err, middlewares.ErrUserBanned) {
		b.answerCallback(ctx, params, handlers.HandlerResult{})
		return b.messageSender.SendTextMessage(ctx, params.ChatID, constants.AccessTexts.Banned, nil)
	}
	if err != nil {
		b.answerCallback(ctx, params, handlers.HandlerResult{})
		return b.messageSender.SendTextMessage(ctx, params.ChatID, "❌ Сервис временно недоступен, попробуйте позже.", nil)
	}

	step, err := b.dialogs.GetStep(ctx, params.ChatID)
	if err != nil {
		logger.Warn("⚠️ Не удалось получить шаг диалога чата %d: %v", params.ChatID, err)
	}
	params.Step = step

	command := b.resolveCommand(params)
	if command == "" {
		return b.messageSender.SendTextMessage(ctx, params.ChatID,
			"Используйте /start для главного меню.", b.buttons.MainMenuKeyboard())
	}

	result, err := b.router.Handle(ctx, command, params)
	b.answerCallback(ctx, params, result)
	if err != nil {
		if errors.Is(err, router.ErrHandlerNotFound) && params.CallbackID != "" {
			return nil
		}
		return b.messageSender.SendTextMessage(ctx, params.ChatID, "❌ Произошла ошибка!", nil)
	}

	b.updateDialog(ctx, params.ChatID, step, result.NextStep)

	if result.Message == "" {
		return nil
	}
	return b.messageSender.SendTextMessage(ctx, params.ChatID, result.Message, result.Keyboard)
}

// resolveCommand выбирает ключ маршрутизации: callback, команда или шаг диалога
func (b *TelegramBot) resolveCommand(params handlers.HandlerParams) string {
	if params.CallbackID != "" {
		return params.Data
	}
	text := strings.TrimSpace(params.Text)
	if strings.HasPrefix(text, "/") {
		return text
	}
	return params.Step
}

func (b *TelegramBot) updateDialog(ctx context.Context, chatID int64, current, next string) {
	var err error
	switch {
	case next != "":
		err = b.dialogs.SetStep(ctx, chatID, next)
	case current != "":
		err = b.dialogs.ClearStep(ctx, chatID)
	}
	if err != nil {
		logger.Warn("⚠️ Не удалось обновить шаг диалога чата %d: %v", chatID, err)
	}
}

func (b *TelegramBot) answerCallback(ctx context.Context, params handlers.HandlerParams, result handlers.HandlerResult) {
	if params.CallbackID == "" {
		return
	}
	if err := b.messageSender.AnswerCallback(ctx, params.CallbackID, result.Alert, result.ShowAlert); err != nil {
		logger.Debug("Не удалось ответить на callback %s: %v", params.CallbackID, err)
	}
}

// StartPolling запускает получение обновлений
func (b *TelegramBot) StartPolling(ctx context.Context) error {
	if !b.config.Enabled {
		logger.Warn("⚠️ Telegram отключен, polling не запускается")
		return nil
	}
	if b.router == nil {
		return fmt.Errorf("хэндлеры не подключены")
	}
	if err := b.SetMyCommands(ctx); err != nil {
		logger.Warn("Не удалось установить меню команд: %v", err)
	}
	return b.pollingHandler.Start(ctx)
}

// StopPolling останавливает получение обновлений и ждет обработчики
func (b *TelegramBot) StopPolling() {
	b.pollingHandler.Stop()
}

// IsPolling проверяет работает ли polling
func (b *TelegramBot) IsPolling() bool {
	return b.pollingHandler.IsRunning()
}

// Uptime время работы бота
func (b *TelegramBot) Uptime() time.Duration {
	return time.Since(b.startupTime)
}

// GetMessageSender возвращает MessageSender для использования другими компонентами
func (b *TelegramBot) GetMessageSender() message_sender.MessageSender {
	return b.messageSender
}

// GetButtons возвращает построитель клавиатур
func (b *TelegramBot) GetButtons() *buttons.ButtonBuilder {
	return b.buttons
}

// GetRouter возвращает роутер
func (b *TelegramBot) GetRouter() router.Router {
	return b.router
}

// SetMyCommands устанавливает меню команд в Telegram
func (b *TelegramBot) SetMyCommands(ctx context.Context) error {
	commands := []telegram.BotCommand{
		{Command: strings.TrimPrefix(constants.CommandStart, "/"), Description: constants.CommandDescriptions.Start},
		{Command: strings.TrimPrefix(constants.CommandProfile, "/"), Description: constants.CommandDescriptions.Profile},
		{Command: strings.TrimPrefix(constants.CommandCancel, "/"), Description: constants.CommandDescriptions.Cancel},
		{Command: strings.TrimPrefix(constants.CommandHelp, "/"), Description: constants.CommandDescriptions.Help},
	}

	if err := b.telegramClient.SetMyCommands(ctx, commands); err != nil {
		return fmt.Errorf("ошибка настройки меню команд: %w", err)
	}

	logger.Info("Меню команд успешно отправлено в Telegram API")
	return nil
}
