package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"pricecheck/internal/logging"
)

// Kind тип конфигурационного документа
type Kind string

const (
	KindApp    Kind = "app"
	KindParser Kind = "parser"
)

// configFiles имена файлов документов в каталоге пользователя
var configFiles = map[Kind]string{
	KindApp:    "appConfig.json",
	KindParser: "parserConfig.json",
}

// ErrPersist конфиг изменен в памяти, но записать его на диск не удалось
var ErrPersist = errors.New("config not persisted")

// Store хранилище пользовательских конфигов.
// Держит снимок последнего загруженного/сохраненного состояния и пишет
// файл только тогда, когда новое состояние отличается от снимка.
type Store struct {
	root     string
	username string
	logger   *slog.Logger
	validate *validator.Validate

	mu     sync.Mutex
	app    *AppConfig
	parser *ParserConfig
}

// NewStore создает хранилище конфигов пользователя username в каталоге root
func NewStore(root, username string, logger *slog.Logger) (*Store, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.ContainsAny(username, `/\`) || username == "." || username == ".." {
		return nil, fmt.Errorf("invalid username %q", username)
	}
	if root == "" {
		root = "configs"
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Store{
		root:     root,
		username: username,
		logger:   logger.With("component", "config_store", "username", username),
		validate: validator.New(),
	}, nil
}

// Username имя пользователя, которому принадлежат конфиги
func (s *Store) Username() string {
	return s.username
}

// Path путь к файлу документа
func (s *Store) Path(kind Kind) string {
	return filepath.Join(s.root, s.username, configFiles[kind])
}

// LoadApp загружает настройки приложения.
// Возвращаемое значение всегда пригодно к использованию; ошибка означает,
// что исправленный или умолчательный документ не удалось записать.
func (s *Store) LoadApp() (AppConfig, error) {
	cfg, err := loadDocument(s, KindApp, DefaultAppConfig, func(*AppConfig) {})

	s.mu.Lock()
	snapshot := cfg
	s.app = &snapshot
	s.mu.Unlock()

	return cfg, err
}

// LoadParser загружает настройки парсера
func (s *Store) LoadParser() (ParserConfig, error) {
	cfg, err := loadDocument(s, KindParser, DefaultParserConfig, (*ParserConfig).normalize)

	s.mu.Lock()
	snapshot := cfg.Clone()
	s.parser = &snapshot
	s.mu.Unlock()

	return cfg, err
}

// App возвращает снимок настроек приложения, загружая их при необходимости
func (s *Store) App() AppConfig {
	s.mu.Lock()
	if s.app != nil {
		cfg := *s.app
		s.mu.Unlock()
		return cfg
	}
	s.mu.Unlock()

	cfg, err := s.LoadApp()
	if err != nil {
		s.logger.Warn("App config loaded with warning", "error", err)
	}
	return cfg
}

// Parser возвращает снимок настроек парсера, загружая их при необходимости
func (s *Store) Parser() ParserConfig {
	s.mu.Lock()
	if s.parser != nil {
		cfg := s.parser.Clone()
		s.mu.Unlock()
		return cfg
	}
	s.mu.Unlock()

	cfg, err := s.LoadParser()
	if err != nil {
		s.logger.Warn("Parser config loaded with warning", "error", err)
	}
	return cfg
}

// SaveApp сохраняет настройки приложения, если они отличаются от снимка.
// changed сообщает, что состояние в памяти изменилось. Ошибка записи не
// откатывает снимок и оборачивает ErrPersist.
func (s *Store) SaveApp(cfg AppConfig) (changed bool, err error) {
	if err := s.validate.Struct(cfg); err != nil {
		return false, fmt.Errorf("invalid app config: %w", err)
	}

	current := s.App()
	if reflect.DeepEqual(current, cfg) {
		return false, nil
	}

	s.mu.Lock()
	snapshot := cfg
	s.app = &snapshot
	s.mu.Unlock()

	if err := s.write(KindApp, cfg); err != nil {
		return true, err
	}
	s.logger.Info("Config saved", "kind", KindApp)
	return true, nil
}

// SaveParser сохраняет настройки парсера, если они отличаются от снимка
func (s *Store) SaveParser(cfg ParserConfig) (changed bool, err error) {
	cfg = cfg.Clone()
	cfg.normalize()
	if err := s.validate.Struct(cfg); err != nil {
		return false, fmt.Errorf("invalid parser config: %w", err)
	}

	current := s.Parser()
	if reflect.DeepEqual(current, cfg) {
		return false, nil
	}

	s.mu.Lock()
	snapshot := cfg.Clone()
	s.parser = &snapshot
	s.mu.Unlock()

	if err := s.write(KindParser, cfg); err != nil {
		return true, err
	}
	s.logger.Info("Config saved", "kind", KindParser)
	return true, nil
}

// ResetParser сбрасывает правила фильтрации к значениям по умолчанию.
// Замены брендов и списки магазинов сохраняются.
func (s *Store) ResetParser() (ParserConfig, error) {
	cfg := s.Parser().WithDefaultRules()
	_, err := s.SaveParser(cfg)
	return cfg, err
}

// ResetSavePath сбрасывает путь сохранения на стандартный
func (s *Store) ResetSavePath() (AppConfig, error) {
	cfg := s.App()
	cfg.SavePath = ""
	_, err := s.SaveApp(cfg)
	return cfg, err
}

// SaveDir каталог быстрого экспорта: savePath из настроек или стандартный
func (s *Store) SaveDir() string {
	if path := strings.TrimSpace(s.App().SavePath); path != "" {
		return path
	}
	return DefaultSaveDir()
}

// DefaultSaveDir рабочий стол пользователя, если он есть, иначе домашний каталог
func DefaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}

// loadDocument читает документ kind поверх умолчательного значения.
// Отсутствующие ключи получают значения по умолчанию, лишние отбрасываются,
// невалидные поля заменяются умолчательными. Исправленный документ
// записывается обратно.
func loadDocument[T any](s *Store, kind Kind, defaults func() T, normalize func(*T)) (T, error) {
	path := s.Path(kind)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("Config not found, creating default", "kind", kind, "path", path)
		} else {
			s.logger.Error("Failed to read config, using default", "kind", kind, "path", path, "error", err)
		}
		def := defaults()
		return def, s.write(kind, def)
	}

	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		// значение не того типа портит одно поле, остальные уже прочитаны
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			s.logger.Warn("Invalid JSON in config, creating default", "kind", kind, "path", path, "error", err)
			def := defaults()
			return def, s.write(kind, def)
		}
		field := resetField(&cfg, defaults(), typeErr.Field)
		s.logger.Warn("Config field has wrong type, using default", "kind", kind, "field", field, "error", err)
	}
	normalize(&cfg)

	repaired := s.repair(&cfg, defaults())
	if len(repaired) > 0 {
		s.logger.Warn("Config fields repaired to defaults", "kind", kind, "fields", repaired)
	}

	// Перезаписываем файл, если после миграции он отличается от прочитанного
	canonical, err := marshalDocument(cfg)
	if err == nil && !bytes.Equal(bytes.TrimSpace(canonical), bytes.TrimSpace(data)) {
		if err := s.write(kind, cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// repair заменяет поля, не прошедшие валидацию, значениями из def.
// Возвращает имена исправленных полей.
func (s *Store) repair(cfg interface{}, def interface{}) []string {
	err := s.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	target := reflect.ValueOf(cfg).Elem()
	source := reflect.ValueOf(def)
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		name := fe.StructField()
		field := target.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		field.Set(source.FieldByName(name))
		fields = append(fields, fe.Field())
	}
	return fields
}

// resetField возвращает полю верхнего уровня с JSON-именем из path
// (например "blackList.0.1") значение из def
func resetField[T any](cfg *T, def T, path string) string {
	name, _, _ := strings.Cut(path, ".")
	target := reflect.ValueOf(cfg).Elem()
	source := reflect.ValueOf(def)
	for i := 0; i < target.NumField(); i++ {
		tag, _, _ := strings.Cut(target.Type().Field(i).Tag.Get("json"), ",")
		if tag == name && target.Field(i).CanSet() {
			target.Field(i).Set(source.Field(i))
			return name
		}
	}
	return name
}

// write атомарно записывает документ: временный файл + rename
func (s *Store) write(kind Kind, cfg interface{}) error {
	path := s.Path(kind)

	data, err := marshalDocument(cfg)
	if err != nil {
		return fmt.Errorf("%w: marshal %s config: %v", ErrPersist, kind, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error("Failed to create config dir", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+configFiles[kind]+".*")
	if err != nil {
		s.logger.Error("Failed to save config", "kind", kind, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error("Failed to save config", "kind", kind, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		if errors.Is(err, fs.ErrPermission) {
			s.logger.Error("No permission to write config", "path", path)
		} else {
			s.logger.Error("Failed to save config", "kind", kind, "path", path, "error", err)
		}
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// marshalDocument сериализует документ с отступом в 4 пробела без
// экранирования кириллицы
func marshalDocument(cfg interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
