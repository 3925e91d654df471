package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pricecheck/internal/domain/models"
)

// ErrRunNotFound прогон с указанным id отсутствует в истории
var ErrRunNotFound = errors.New("run not found")

// DBConfig параметры пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// HistoryDB история прогонов проценки: сводка, строки результата и
// ошибочные артикулы, чтобы экспорт можно было повторить позже
type HistoryDB struct {
	conn *sql.DB
}

// NewHistoryDB открывает (создает) базу истории
func NewHistoryDB(dbPath string, config DBConfig) (*HistoryDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite плохо переносит параллельную запись, по умолчанию одно соединение
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(1)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(1)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA encoding = 'UTF-8'"); err != nil {
		log.Printf("Warning: failed to set UTF-8 encoding: %v", err)
	}

	if err := InitHistorySchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := MigrateHistorySchema(conn); err != nil {
		log.Printf("Warning: failed to run history migrations: %v", err)
	}

	return &HistoryDB{conn: conn}, nil
}

// Close закрывает подключение
func (db *HistoryDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет доступность базы
func (db *HistoryDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// SaveRun сохраняет (или перезаписывает) прогон вместе с таблицей результата
// и ошибочными артикулами в одной транзакции
func (db *HistoryDB) SaveRun(ctx context.Context, run models.RunSummary, result *models.Table, errorRows []models.ErrorRow) error {
	columns := []string{}
	if result != nil && result.Columns != nil {
		columns = result.Columns
	}
	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, username, input_file, state, progress, started_at, finished_at,
			 total, succeeded, failed, result_path, error, columns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Username, run.InputFile, string(run.State), run.Progress, run.StartedAt.UTC(), finishedAt,
		run.Total, run.Succeeded, run.Failed, run.ResultPath, run.Error, string(columnsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// INSERT OR REPLACE по runs не каскадирует удаление строк, чистим явно
	for _, table := range []string{"run_rows", "run_errors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if result != nil && len(result.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_rows (run_id, row_index, cells) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare row insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range result.Rows {
			cells, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", i, err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, i, string(cells)); err != nil {
				return fmt.Errorf("failed to save row %d: %w", i, err)
			}
		}
	}

	if len(errorRows) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_errors (run_id, row_index, manufacturer, article) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare error insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range errorRows {
			if _, err := stmt.ExecContext(ctx, run.ID, i, row.Manufacturer, row.Article); err != nil {
				return fmt.Errorf("failed to save error row %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// UpdateResultPath запоминает путь, куда был выгружен результат
func (db *HistoryDB) UpdateResultPath(ctx context.Context, id, path string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE runs SET result_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return fmt.Errorf("failed to update result path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

const runColumns = `id, username, input_file, state, progress, started_at, finished_at,
	total, succeeded, failed, result_path, error`

// GetRun возвращает сводку прогона
func (db *HistoryDB) GetRun(ctx context.Context, id string) (*models.RunSummary, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns возвращает последние прогоны пользователя (все, если username пуст)
func (db *HistoryDB) ListRuns(ctx context.Context, username string, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []interface{}{}
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunSummary{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LoadResultTable восстанавливает таблицу результата прогона
func (db *HistoryDB) LoadResultTable(ctx context.Context, id string) (*models.Table, error) {
	var columnsJSON string
	err := db.conn.QueryRowContext(ctx, `SELECT columns FROM runs WHERE id = ?`, id).Scan(&columnsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}

	table := &models.Table{Rows: [][]string{}}
	if err := json.Unmarshal([]byte(columnsJSON), &table.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT cells FROM run_rows WHERE run_id = ? ORDER BY row_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, rows.Err()
}

// LoadErrorRows возвращает ошибочные артикулы прогона в исходном порядке
func (db *HistoryDB) LoadErrorRows(ctx context.Context, id string) ([]models.ErrorRow, error) {
	if _, err := db.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT manufacturer, article FROM run_errors WHERE run_id = ? ORDER BY row_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load error rows: %w", err)
	}
	defer rows.Close()

	result := []models.ErrorRow{}
	for rows.Next() {
		var r models.ErrorRow
		if err := rows.Scan(&r.Manufacturer, &r.Article); err != nil {
			return nil, fmt.Errorf("failed to scan error row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteRun удаляет прогон вместе со строками
func (db *HistoryDB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.RunSummary, error) {
	var (
		run        models.RunSummary
		state      string
		finishedAt sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Username, &run.InputFile, &state, &run.Progress, &run.StartedAt, &finishedAt,
		&run.Total, &run.Succeeded, &run.Failed, &run.ResultPath, &run.Error)
	if err != nil {
		return nil, err
	}
	run.State = models.RunState(state)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
