package config

import (
	"log"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config конфигурация процесса (переменные окружения и .env)
type Config struct {
	// API сервиса проценки
	APIURL         string        `json:"api_url"`
	APIKeys        []string      `json:"-"`
	RequestTimeout time.Duration `json:"request_timeout"`
	RowCount       int           `json:"row_count"`

	// Пользователь и хранилища
	Username      string `json:"username"`
	ConfigDir     string `json:"config_dir"`
	HistoryDBPath string `json:"history_db_path"`

	// Connection pooling истории прогонов
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// HTTP API
	Port string `json:"port"`

	// Логирование
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// DefaultAPIURL адрес метода поиска по артикулу
const DefaultAPIURL = "https://api.zzap.pro/webservice/datasharing.asmx/GetSearchResultV3"

// LoadConfig загружает конфигурацию из переменных окружения.
// Перед чтением подхватывается .env из рабочего каталога, если он есть;
// уже заданные переменные окружения при этом не перезаписываются.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		log.Printf("Warning: failed to load env files %v: %v", envFiles, err)
	}

	config := &Config{
		APIURL:         getEnv("PRICECHECK_API_URL", DefaultAPIURL),
		APIKeys:        splitList(os.Getenv("PRICECHECK_API_KEYS")),
		RequestTimeout: getEnvDuration("PRICECHECK_REQUEST_TIMEOUT", 10*time.Second),
		RowCount:       getEnvInt("PRICECHECK_ROW_COUNT", 100),

		Username:      getEnv("PRICECHECK_USER", currentUsername()),
		ConfigDir:     getEnv("PRICECHECK_CONFIG_DIR", "configs"),
		HistoryDBPath: getEnv("PRICECHECK_HISTORY_DB", "history.db"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		Port: getEnv("SERVER_PORT", "9999"),

		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// HasAPIKeys сообщает, что задан хотя бы один ключ API
func (c *Config) HasAPIKeys() bool {
	return len(c.APIKeys) > 0
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// splitList разбирает список через запятую или точку с запятой
func splitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// currentUsername имя пользователя ОС или "default"
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// На Windows имя приходит как DOMAIN\user
		name := u.Username
		if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
			name = name[idx+1:]
		}
		if name != "" {
			return name
		}
	}
	return "default"
}
