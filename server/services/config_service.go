package services

import (
	"errors"
	"log/slog"

	"pricecheck/internal/config"
	"pricecheck/internal/logging"
	apperrors "pricecheck/server/errors"
)

// ConfigUpdate результат сохранения конфига
type ConfigUpdate[T any] struct {
	Config  T      `json:"config"`
	Changed bool   `json:"changed"`
	Warning string `json:"warning,omitempty"`
}

// ConfigService сервис чтения и изменения пользовательских конфигов
type ConfigService struct {
	store  *config.Store
	logger *slog.Logger
}

// NewConfigService создает новый сервис конфигов
func NewConfigService(store *config.Store, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ConfigService{store: store, logger: logger.With("component", "config_service")}
}

// Parser текущие настройки парсера
func (s *ConfigService) Parser() config.ParserConfig {
	return s.store.Parser()
}

// App текущие настройки приложения
func (s *ConfigService) App() config.AppConfig {
	return s.store.App()
}

// UpdateParser сохраняет настройки парсера.
// Невозможность записать файл не считается ошибкой: новое значение уже
// действует в памяти, клиент получает предупреждение.
func (s *ConfigService) UpdateParser(cfg config.ParserConfig) (*ConfigUpdate[config.ParserConfig], error) {
	changed, err := s.store.SaveParser(cfg)
	warning, err := s.persistWarning(err)
	if err != nil {
		return nil, err
	}
	return &ConfigUpdate[config.ParserConfig]{Config: s.store.Parser(), Changed: changed, Warning: warning}, nil
}

// UpdateApp сохраняет настройки приложения
func (s *ConfigService) UpdateApp(cfg config.AppConfig) (*ConfigUpdate[config.AppConfig], error) {
	changed, err := s.store.SaveApp(cfg)
	warning, err := s.persistWarning(err)
	if err != nil {
		return nil, err
	}
	return &ConfigUpdate[config.AppConfig]{Config: s.store.App(), Changed: changed, Warning: warning}, nil
}

// ResetParser сбрасывает правила фильтрации, сохраняя списки
func (s *ConfigService) ResetParser() (*ConfigUpdate[config.ParserConfig], error) {
	cfg, err := s.store.ResetParser()
	warning, err := s.persistWarning(err)
	if err != nil {
		return nil, err
	}
	return &ConfigUpdate[config.ParserConfig]{Config: cfg, Changed: true, Warning: warning}, nil
}

func (s *ConfigService) persistWarning(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, config.ErrPersist) {
		s.logger.Warn("Config kept in memory only", "error", err)
		return "настройки применены, но не сохранены на диск", nil
	}
	return "", apperrors.NewValidationError("некорректные настройки", err)
}
