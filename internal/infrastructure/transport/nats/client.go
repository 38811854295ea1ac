// internal/infrastructure/transport/nats/client.go
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

// Config параметры подключения к NATS
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	SubjectPrefix string
}

// Client публикует события депозитов в NATS
type Client struct {
	conn   *nats.Conn
	prefix string
	logger *logger.Logger
}

// New подключается к NATS
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(c *nats.Conn, err error) {
			log.Warn("⚠️ NATS отключен: %v", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("🔁 NATS переподключен: %s", c.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к NATS: %w", err)
	}

	log.Info("✅ Подключение к NATS установлено: %s", conn.ConnectedUrl())

	return &Client{
		conn:   conn,
		prefix: cfg.SubjectPrefix,
		logger: log,
	}, nil
}

// Subject возвращает тему для типа события, например deposits.completed
func (c *Client) Subject(eventType payment.EventType) string {
	return Subject(c.prefix, eventType)
}

// Subject строит тему NATS для события
func Subject(prefix string, eventType payment.EventType) string {
	if prefix == "" {
		return string(eventType)
	}
	return prefix + "." + string(eventType)
}

// HandleEvent публикует событие; реализует подписчика шины событий
func (c *Client) HandleEvent(_ context.Context, event payment.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	msg := &nats.Msg{
		Subject: c.Subject(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(nats.MsgIdHdr, event.ID)

	if err := c.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("ошибка публикации в %s: %w", msg.Subject, err)
	}
	return nil
}

// GetName имя подписчика
func (c *Client) GetName() string {
	return "nats_forwarder"
}

// HealthCheck проверяет соединение
func (c *Client) HealthCheck(context.Context) error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("NATS не подключен (%s)", c.conn.Status())
	}
	return nil
}

// Close сбрасывает буфер и закрывает соединение
func (c *Client) Close() {
	if err := c.conn.Flush(); err != nil {
		c.logger.Warn("⚠️ Ошибка сброса буфера NATS: %v", err)
	}
	c.conn.Close()
}
