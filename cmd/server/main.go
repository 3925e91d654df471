// @title Pricecheck API
// @version 1.0
// @description API проценки запчастей: запуск прогонов по файлу артикулов, история, выгрузка результатов и настройки парсера.

// @contact.name API Support
// @contact.email support@example.com

// @license.name Internal Use Only

// @host localhost:9999
// @BasePath /api
// @schemes http https

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pricecheck/internal/config"
	"pricecheck/internal/container"
	"pricecheck/internal/logging"
	"pricecheck/server"
)

func main() {
	log.Println("Запуск Pricecheck HTTP Server...")
	log.Printf("Рабочая директория: %s", getWorkingDir())

	log.Println("[1/4] Загрузка конфигурации...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Ошибка загрузки конфигурации: %v", err)
	}
	log.Printf("✓ Конфигурация загружена. Порт: %s, пользователь: %s", cfg.Port, cfg.Username)

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	log.Println("[2/4] Инициализация зависимостей...")
	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("✗ Ошибка инициализации: %v", err)
	}
	defer c.Close()
	if c.KeyCount() == 0 {
		log.Printf("⚠ Ключи API не заданы (PRICECHECK_API_KEYS), прогоны будут отклоняться")
	} else {
		log.Printf("✓ Ключей API: %d", c.KeyCount())
	}
	log.Printf("✓ История прогонов: %s", cfg.HistoryDBPath)

	log.Println("[3/4] Создание сервера...")
	srv, err := server.New(server.Options{
		Config:   cfg,
		Store:    c.Store,
		Driver:   c.Driver,
		History:  c.History,
		KeyCount: c.KeyCount(),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("✗ Ошибка создания сервера: %v", err)
	}
	log.Printf("✓ Сервер создан")

	startErrorChan := make(chan error, 1)
	go func() {
		log.Printf("[4/4] Запуск HTTP сервера на порту %s...", cfg.Port)
		if err := srv.Start(); err != nil {
			startErrorChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-startErrorChan:
		log.Printf("✗ Сервер не запустился: %v", err)
		c.Close()
		os.Exit(1)
	case <-sigChan:
		log.Println("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}

// getWorkingDir возвращает рабочую директорию или путь к исполняемому файлу
func getWorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		if exePath, err := os.Executable(); err == nil {
			return filepath.Dir(exePath)
		}
		return fmt.Sprintf("unknown (%v)", err)
	}
	return wd
}
