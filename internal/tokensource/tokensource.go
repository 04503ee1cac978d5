// Пакет tokensource — источники bearer-токена для Management API.
// Static возвращает заранее выданный токен, ClientCredentials получает
// токен через OAuth2 Client Credentials flow и кэширует его
// (обновление за 30s до истечения).
package tokensource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// refreshMargin — запас времени до истечения, после которого токен обновляется.
const refreshMargin = 30 * time.Second

// ErrEmptyToken — провайдер вернул пустой токен.
var ErrEmptyToken = errors.New("получен пустой токен")

// Static возвращает функцию-провайдер фиксированного токена.
func Static(token string) func(ctx context.Context) (string, error) {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", ErrEmptyToken
		}
		return token, nil
	}
}

// tokenResponse — ответ token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// ClientCredentials — провайдер токена через Client Credentials flow.
type ClientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string

	http   *resty.Client
	logger *slog.Logger
	now    func() time.Time

	// Кэш токена доступа
	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClientCredentials создаёт провайдер. tokenURL — полный URL token endpoint.
func NewClientCredentials(tokenURL, clientID, clientSecret string, timeout time.Duration, logger *slog.Logger) *ClientCredentials {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClientCredentials{
		tokenURL:     strings.TrimSpace(tokenURL),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         resty.New().SetTimeout(timeout),
		logger:       logger.With(slog.String("component", "token_source")),
		now:          time.Now,
	}
}

// Token возвращает актуальный access token, обновляя при необходимости.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Add(refreshMargin).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	token, err := c.requestToken(ctx)
	if err != nil {
		return "", err
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(token.ExpiresIn) * time.Second)

	c.logger.Debug("Токен Management API обновлён",
		slog.Time("expires_at", c.tokenExpiry),
	)
	return c.accessToken, nil
}

// requestToken выполняет Client Credentials flow.
func (c *ClientCredentials) requestToken(ctx context.Context) (*tokenResponse, error) {
	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
		}).
		SetResult(&token).
		Post(c.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("запрос токена: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("token endpoint вернул статус %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if token.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	return &token, nil
}
