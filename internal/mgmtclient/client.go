// Пакет mgmtclient — HTTP-клиент к внешнему Management API справочников.
// Коллекции доступны по /management/{resource}: GET (список в конверте
// {"data": [...]}), POST (создание), PUT /{id}, DELETE /{id}.
// Ошибочные ответы {"message", "details"} превращаются в *RemoteError.
package mgmtclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// basePath — префикс всех коллекций Management API.
const basePath = "/management"

// TokenProvider — функция, возвращающая bearer-токен для запросов к API.
type TokenProvider func(ctx context.Context) (string, error)

// Options — параметры клиента.
type Options struct {
	// BaseURL — адрес API (без /management)
	BaseURL string
	// Timeout — таймаут одного запроса
	Timeout time.Duration
	// RetryCount — число повторов для идемпотентных GET
	RetryCount int
	// CACertPath — путь к CA-сертификату (пустая строка — системный пул)
	CACertPath string
	// TokenProvider — источник токена (nil — без авторизации)
	TokenProvider TokenProvider
}

// Client — клиент Management API.
// reader выполняет GET с повторами, writer — мутации без повторов,
// чтобы сетевой сбой не приводил к повторному созданию записи.
type Client struct {
	reader *resty.Client
	writer *resty.Client
	logger *slog.Logger
}

// envelope — конверт ответа {"data": ...}.
type envelope[T any] struct {
	Data T `json:"data"`
}

// New создаёт клиент Management API.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("mgmtclient: не задан BaseURL")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	var caPEM string
	if opts.CACertPath != "" {
		data, err := os.ReadFile(opts.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("чтение CA-сертификата Management API: %w", err)
		}
		caPEM = string(data)
		logger.Info("CA-сертификат Management API добавлен в пул доверия",
			slog.String("ca_cert", opts.CACertPath),
		)
	}

	c := &Client{
		logger: logger.With(slog.String("component", "mgmt_client")),
	}
	c.reader = c.newResty(opts, caPEM, opts.RetryCount)
	c.writer = c.newResty(opts, caPEM, 0)
	return c, nil
}

// newResty создаёт resty-клиент с общими настройками.
func (c *Client) newResty(opts Options, caPEM string, retries int) *resty.Client {
	rc := resty.New().
		SetBaseURL(normalizeURL(opts.BaseURL)).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})

	if retries > 0 {
		rc.SetRetryCount(retries).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				return err != nil || (resp != nil && resp.StatusCode() >= http.StatusInternalServerError)
			})
	}

	if caPEM != "" {
		rc.SetRootCertificateFromString(caPEM)
	}

	if opts.TokenProvider != nil {
		provider := opts.TokenProvider
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			token, err := provider(req.Context())
			if err != nil {
				return fmt.Errorf("получение токена Management API: %w", err)
			}
			req.SetAuthToken(token)
			return nil
		})
	}

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("Ответ Management API",
			slog.String("method", resp.Request.Method),
			slog.String("url", resp.Request.URL),
			slog.Int("status", resp.StatusCode()),
			slog.Duration("duration", resp.Time()),
		)
		return nil
	})

	return rc
}

// --- Операции с коллекциями ---

// List возвращает все записи коллекции resource.
// Функция, а не метод: методы в Go не могут быть обобщёнными.
func List[T any](ctx context.Context, c *Client, resource string, query url.Values) ([]T, error) {
	var env envelope[[]T]

	req := c.reader.R().
		SetContext(ctx).
		SetResult(&env)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(collectionPath(resource))
	if err := checkResponse(resp, err, http.MethodGet, resource); err != nil {
		return nil, err
	}

	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}

// Create создаёт запись в коллекции resource (POST).
func (c *Client) Create(ctx context.Context, resource string, body any) error {
	resp, err := c.writer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(collectionPath(resource))
	return checkResponse(resp, err, http.MethodPost, resource)
}

// Update обновляет запись id в коллекции resource (PUT /{id}).
func (c *Client) Update(ctx context.Context, resource string, id int64, body any) error {
	resp, err := c.writer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(itemPath(resource, id))
	return checkResponse(resp, err, http.MethodPut, resource)
}

// Delete удаляет запись id из коллекции resource (DELETE /{id}).
func (c *Client) Delete(ctx context.Context, resource string, id int64) error {
	resp, err := c.writer.R().
		SetContext(ctx).
		Delete(itemPath(resource, id))
	return checkResponse(resp, err, http.MethodDelete, resource)
}

// ListFonctions возвращает справочник функций. all=true отключает
// серверную фильтрацию только активных записей.
func (c *Client) ListFonctions(ctx context.Context, all bool) ([]model.Fonction, error) {
	var query url.Values
	if all {
		query = url.Values{"all": {"true"}}
	}
	return List[model.Fonction](ctx, c, ResourceFonctions, query)
}

// generateTokenRequest — тело запроса генерации токена.
type generateTokenRequest struct {
	ID int64 `json:"id"`
}

// GenerateToken выпускает токен для пользователя
// (POST /management/utilisateurs/generate-token → {"data": {token, expiresIn}}).
func (c *Client) GenerateToken(ctx context.Context, userID int64) (*model.GeneratedToken, error) {
	var env envelope[model.GeneratedToken]

	resp, err := c.writer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateTokenRequest{ID: userID}).
		SetResult(&env).
		Post(collectionPath(ResourceUtilisateurs) + "/generate-token")
	if err := checkResponse(resp, err, http.MethodPost, ResourceUtilisateurs+"/generate-token"); err != nil {
		return nil, err
	}

	if env.Data.Token == "" {
		return nil, &RemoteError{Status: resp.StatusCode(), Message: "API вернул пустой токен"}
	}
	return &env.Data, nil
}

// --- Вспомогательные функции ---

// checkResponse превращает транспортную ошибку или статус >= 400 в *RemoteError.
func checkResponse(resp *resty.Response, err error, method, resource string) error {
	if err != nil {
		return &RemoteError{
			Message: fmt.Sprintf("Management API недоступен (%s %s)", method, resource),
			Details: err.Error(),
			Err:     err,
		}
	}
	if resp.IsError() {
		return remoteErrorFrom(resp)
	}
	return nil
}

// remoteErrorFrom строит RemoteError из ошибочного ответа.
func remoteErrorFrom(resp *resty.Response) *RemoteError {
	re := &RemoteError{Status: resp.StatusCode()}

	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		re.Message = strings.TrimSpace(body.Message)
		re.Details = body.detailsText()
	}

	if re.Message == "" && re.Details == "" {
		text := strings.TrimSpace(string(resp.Body()))
		if text != "" && !strings.HasPrefix(text, "{") {
			re.Details = truncate(text, 300)
		}
		re.Message = fmt.Sprintf("Management API вернул статус %d", resp.StatusCode())
	}
	return re
}

// collectionPath возвращает путь коллекции: /management/{resource}.
func collectionPath(resource string) string {
	return basePath + "/" + resource
}

// itemPath возвращает путь записи: /management/{resource}/{id}.
func itemPath(resource string, id int64) string {
	return collectionPath(resource) + "/" + strconv.FormatInt(id, 10)
}

// normalizeURL убирает trailing slash.
func normalizeURL(u string) string {
	return strings.TrimRight(u, "/")
}

// truncate обрезает строку до n байт по границе руны.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

// utf8RuneStart — байт является началом руны UTF-8.
func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// detailsText возвращает details как строку: JSON-строка разворачивается,
// прочие значения остаются в JSON-виде.
func (b *errorBody) detailsText() string {
	raw := strings.TrimSpace(string(b.Details))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Details, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return raw
}
