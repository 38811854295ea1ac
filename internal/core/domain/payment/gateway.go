// internal/core/domain/payment/gateway.go
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-bot/pkg/logger"
)

const (
	cookieSession = "sid"
	cookieCSRF    = "csrf_token"
	depositPath   = "/deposit/pay/"
)

// GatewayConfig параметры клиента шлюза
type GatewayConfig struct {
	BaseURL            string
	ReceiptURLTemplate string
	Cookies            string
	PaymentType        string
	Fee                string
	UserAgent          string
	Timeout            time.Duration
}

// GatewayClient создает депозиты на внешнем шлюзе по заранее выданной сессии
type GatewayClient struct {
	httpClient      *http.Client
	baseURL         *url.URL
	receiptTemplate string
	paymentType     string
	fee             string
	userAgent       string
	csrfToken       string
	hasCredentials  bool
	logger          *logger.Logger
}

type depositResponse struct {
	Success  bool            `json:"success"`
	Redirect string          `json:"redirect,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// NewGatewayClient создает клиент шлюза.
// Отсутствие cookie не ошибка конструктора: CreatePayment вернет ErrMissingCredentials.
func NewGatewayClient(cfg GatewayConfig, log *logger.Logger) (*GatewayClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("некорректный адрес шлюза %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if log == nil {
		log = logger.GetLogger()
	}

	client := &GatewayClient{
		httpClient:      &http.Client{Timeout: timeout, Jar: jar},
		baseURL:         base,
		receiptTemplate: cfg.ReceiptURLTemplate,
		paymentType:     cfg.PaymentType,
		fee:             cfg.Fee,
		userAgent:       cfg.UserAgent,
		logger:          log,
	}

	cookies := parseCookies(cfg.Cookies)
	var sid string
	for _, c := range cookies {
		switch c.Name {
		case cookieSession:
			sid = c.Value
		case cookieCSRF:
			client.csrfToken = c.Value
		}
	}
	client.hasCredentials = sid != "" && client.csrfToken != ""
	if client.hasCredentials {
		jar.SetCookies(base, cookies)
	} else {
		log.Warn("⚠️ Cookie шлюза не содержат %s и %s, создание платежей недоступно", cookieSession, cookieCSRF)
	}

	return client, nil
}

// HasCredentials true если заданы sid и csrf_token
func (c *GatewayClient) HasCredentials() bool {
	return c.hasCredentials
}

// CreatePayment создает депозит на шлюзе.
// Возвращает либо полностью заполненный GatewayPayment, либо ошибку.
func (c *GatewayClient) CreatePayment(ctx context.Context, amount int) (*GatewayPayment, error) {
	if !c.hasCredentials {
		return nil, ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("payment_type", c.paymentType)
	form.Set("amount", strconv.Itoa(amount))
	form.Set("fee", c.fee)
	form.Set("csrf_token", c.csrfToken)

	endpoint := c.baseURL.String() + depositPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	origin := c.baseURL.Scheme + "://" + c.baseURL.Host
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/deposit/")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к шлюзу: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа шлюза: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRejected, resp.StatusCode)
	}

	var result depositResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: некорректный JSON: %v", ErrGatewayRejected, err)
	}

	if msg := gatewayError(result.Error); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, msg)
	}
	if !result.Success || result.Redirect == "" {
		return nil, fmt.Errorf("%w: нет redirect в ответе", ErrGatewayRejected)
	}

	paymentID := lastPathSegment(result.Redirect)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: не удалось извлечь payment_id из %q", ErrGatewayRejected, result.Redirect)
	}

	c.logger.Info("💳 Шлюз создал платеж %s на сумму %d", paymentID, amount)

	return &GatewayPayment{
		PaymentID:  paymentID,
		ReceiptURL: c.ReceiptURL(paymentID),
	}, nil
}

// ReceiptURL адрес страницы чека для payment_id
func (c *GatewayClient) ReceiptURL(paymentID string) string {
	return fmt.Sprintf(c.receiptTemplate, paymentID)
}

func gatewayError(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "false" || trimmed == `""` {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

func lastPathSegment(redirect string) string {
	path := redirect
	if u, err := url.Parse(redirect); err == nil {
		path = u.Path
	}
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return ""
}

// parseCookies разбирает строку вида "sid=...; csrf_token=..."
func parseCookies(raw string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return cookies
}
