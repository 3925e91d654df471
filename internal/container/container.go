package container

import (
	"errors"
	"fmt"
	"log/slog"

	"pricecheck/database"
	"pricecheck/internal/config"
	"pricecheck/internal/logging"
	"pricecheck/internal/pipeline"
	"pricecheck/internal/priceapi"
)

// Container контейнер зависимостей приложения.
// Собирает хранилище конфигов, клиент API, историю и драйвер прогонов;
// используется всеми точками входа (CLI, GUI, HTTP).
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store   *config.Store
	Cache   *priceapi.Cache
	Client  *priceapi.Client // nil, если ключи API не заданы
	History *database.HistoryDB
	Driver  *pipeline.Driver
}

// NewContainer создает и инициализирует контейнер.
// Отсутствие ключей API не является ошибкой: драйвер сообщит о нем при
// попытке запуска прогона.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	c := &Container{Config: cfg, Logger: logger}

	store, err := config.NewStore(cfg.ConfigDir, cfg.Username, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create config store: %w", err)
	}
	c.Store = store

	// Загружаем оба документа сразу, чтобы исправленные конфиги записались до запуска
	if _, err := store.LoadApp(); err != nil {
		logger.Warn("App config not persisted", "error", err)
	}
	if _, err := store.LoadParser(); err != nil {
		logger.Warn("Parser config not persisted", "error", err)
	}

	if err := c.initClient(); err != nil {
		return nil, err
	}

	history, err := database.NewHistoryDB(cfg.HistoryDBPath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	c.History = history

	opts := pipeline.Options{Store: store, History: history, Logger: logger}
	if c.Client != nil {
		opts.Client = c.Client
	}
	driver, err := pipeline.NewDriver(opts)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create pipeline driver: %w", err)
	}
	c.Driver = driver

	return c, nil
}

func (c *Container) initClient() error {
	if !c.Config.HasAPIKeys() {
		c.Logger.Warn("No API keys configured, runs will be rejected", "env", "PRICECHECK_API_KEYS")
		return nil
	}

	c.Cache = priceapi.NewCache(priceapi.DefaultCacheConfig())
	client, err := priceapi.NewClient(priceapi.ClientConfig{
		BaseURL:  c.Config.APIURL,
		APIKeys:  c.Config.APIKeys,
		Timeout:  c.Config.RequestTimeout,
		RowCount: c.Config.RowCount,
		Cache:    c.Cache,
		Logger:   c.Logger,
	})
	if err != nil {
		c.Cache.Close()
		c.Cache = nil
		if errors.Is(err, priceapi.ErrNoAPIKeys) {
			return nil
		}
		return fmt.Errorf("failed to create api client: %w", err)
	}
	c.Client = client
	return nil
}

// KeyCount количество ключей API в пуле
func (c *Container) KeyCount() int {
	if c.Client == nil {
		return 0
	}
	return c.Client.KeyCount()
}

// Close освобождает ресурсы контейнера
func (c *Container) Close() error {
	if c.Cache != nil {
		c.Cache.Close()
	}
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}
