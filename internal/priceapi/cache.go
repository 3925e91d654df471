package priceapi

import (
	"strings"
	"sync"
	"time"

	"pricecheck/internal/domain/models"
)

// CacheConfig конфигурация кэша ответов
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	MaxSize         int           `json:"max_size"`
}

// DefaultCacheConfig кэш на время одного прогона: повторные строки
// входного файла не порождают повторных запросов. Между прогонами кэш
// сбрасывается через Client.ResetCache.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:         true,
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxSize:         10000,
	}
}

// CacheEntry запись в кэше
type CacheEntry struct {
	Response    *models.PriceResponse
	Expiration  time.Time
	AccessCount int64
}

// CacheStats статистика кэша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Cache кэш успешных ответов API по ключу запроса
type Cache struct {
	config *CacheConfig
	data   map[string]*CacheEntry
	mutex  sync.Mutex
	stats  CacheStats
	stop   chan struct{}
	once   sync.Once
}

// NewCache создает кэш и, если задан интервал, запускает очистку устаревших записей
func NewCache(config *CacheConfig) *Cache {
	if config == nil {
		config = DefaultCacheConfig()
	}
	cache := &Cache{
		config: config,
		data:   make(map[string]*CacheEntry),
		stop:   make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go cache.startCleanup()
	}

	return cache
}

// Key ключ кэша для запроса: бренд и артикул без учета регистра плюс
// параметры, влияющие на ответ
func Key(q Query) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Brand)),
		strings.ToLower(strings.TrimSpace(q.Article)),
		itoa(q.RegionCode),
		itoa(q.RequestType),
	}, "|")
}

// Get возвращает ответ из кэша
func (c *Cache) Get(key string) (*models.PriceResponse, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.config.Enabled {
		c.stats.Misses++
		return nil, false
	}

	entry, exists := c.data[key]
	if !exists || time.Now().After(entry.Expiration) {
		c.stats.Misses++
		return nil, false
	}

	entry.AccessCount++
	c.stats.Hits++
	return entry.Response, true
}

// Set сохраняет ответ в кэш
func (c *Cache) Set(key string, resp *models.PriceResponse) {
	if !c.config.Enabled || resp == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && c.config.MaxSize > 0 && len(c.data) >= c.config.MaxSize {
		c.evictLRU()
	}

	c.data[key] = &CacheEntry{
		Response:    resp,
		Expiration:  time.Now().Add(c.config.TTL),
		AccessCount: 1,
	}
	c.stats.Size = len(c.data)
}

// Clear очищает кэш и статистику
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*CacheEntry)
	c.stats = CacheStats{}
}

// GetStats возвращает копию статистики
func (c *Cache) GetStats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// Close останавливает фоновую очистку
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// evictLRU удаляет наименее используемую запись
func (c *Cache) evictLRU() {
	var lruKey string
	var lruCount int64 = -1

	for key, entry := range c.data {
		if lruCount == -1 || entry.AccessCount < lruCount {
			lruKey = key
			lruCount = entry.AccessCount
		}
	}

	if lruKey != "" {
		delete(c.data, lruKey)
	}
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup удаляет устаревшие записи
func (c *Cache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.Expiration) {
			delete(c.data, key)
		}
	}
	c.stats.Size = len(c.data)
}
