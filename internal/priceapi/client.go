package priceapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pricecheck/internal/domain/models"
	"pricecheck/internal/logging"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRowCount = 100
	userAgent       = "Mozilla/5.0"
	maxBodySize     = 16 << 20
)

// Query параметры поиска одного артикула
type Query struct {
	Brand       string
	Article     string
	RegionCode  int
	RequestType int
	Login       string
	Password    string
}

// Client клиент сервиса проценки
type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       *KeyPool
	rowCount   int
	cache      *Cache
	logger     *slog.Logger
}

// ClientConfig конфигурация клиента
type ClientConfig struct {
	BaseURL    string
	APIKeys    []string
	Timeout    time.Duration
	RowCount   int
	Cache      *Cache
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient создает клиент. Пустой пул ключей является ошибкой конфигурации.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	keys := NewKeyPool(config.APIKeys)
	if keys.Len() == 0 {
		return nil, ErrNoAPIKeys
	}

	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RowCount <= 0 {
		config.RowCount = defaultRowCount
	}
	if config.HTTPClient == nil {
		// Стандартный транспорт проверяет TLS-сертификаты
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	return &Client{
		baseURL:    config.BaseURL,
		httpClient: config.HTTPClient,
		keys:       keys,
		rowCount:   config.RowCount,
		cache:      config.Cache,
		logger:     config.Logger.With("component", "priceapi"),
	}, nil
}

// KeyCount количество ключей в пуле
func (c *Client) KeyCount() int {
	return c.keys.Len()
}

// ResetCache забывает сохраненные ответы
func (c *Client) ResetCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Search выполняет запрос по артикулу и возвращает распакованный ответ.
// Ошибки классифицируются переменными Err* этого пакета; отмена ctx
// возвращается как есть.
func (c *Client) Search(ctx context.Context, q Query) (*models.PriceResponse, error) {
	cacheKey := Key(q)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			c.logger.Debug("Cache hit", "brand", q.Brand, "article", q.Article)
			return cached, nil
		}
	}

	resp, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, resp)
	}
	return resp, nil
}

// Request выполняет запрос и никогда не возвращает ошибку: любая неудача
// логируется и дает nil ("нет результата").
func (c *Client) Request(ctx context.Context, q Query) *models.PriceResponse {
	resp, err := c.Search(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("API request cancelled", "brand", q.Brand, "article", q.Article)
			return nil
		}
		c.logger.Error("API request failed",
			"brand", q.Brand,
			"article", q.Article,
			"cause", causeName(err),
			"error", err,
		)
		return nil
	}
	return resp
}

func (c *Client) fetch(ctx context.Context, q Query) (*models.PriceResponse, error) {
	params := url.Values{}
	params.Set("login", q.Login)
	params.Set("password", q.Password)
	params.Set("partnumber", q.Article)
	params.Set("class_man", q.Brand)
	params.Set("location", strconv.Itoa(q.RegionCode))
	params.Set("row_count", strconv.Itoa(c.rowCount))
	params.Set("api_key", c.keys.Next())
	params.Set("type_request", strconv.Itoa(q.RequestType))

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: reading body: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	contentType := httpResp.Header.Get("Content-Type")
	c.logger.Debug("API response",
		"article", q.Article,
		"status", httpResp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", ErrHTTPStatus, httpResp.StatusCode, summarizeBody(body, contentType))
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	resp, err := decodeEnvelope(body, contentType)
	if err != nil {
		if errors.Is(err, ErrEnvelope) && isHTML(body, contentType) {
			return nil, fmt.Errorf("%w (page: %s)", err, summarizeBody(body, contentType))
		}
		return nil, err
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrAPI, resp.Error)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// causeName короткое имя класса ошибки для структурированного лога
func causeName(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrEmptyBody):
		return "empty_body"
	case errors.Is(err, ErrEnvelope):
		return "envelope"
	case errors.Is(err, ErrPayload):
		return "payload"
	case errors.Is(err, ErrAPI):
		return "api_error"
	default:
		return "unknown"
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
