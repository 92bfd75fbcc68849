package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// deleteChunk keeps IN lists well under SQLite's bound-parameter limit.
const deleteChunk = 500

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error { return r.db.Close() }

// ApplyMigrations ensures schema exists
func (r *SQLiteRepo) ApplyMigrations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(120) NOT NULL CHECK (title <> ''),
	is_completed INTEGER NOT NULL DEFAULT 0 CHECK (is_completed IN (0, 1))
);
	`)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Create(ctx context.Context, in TaskInput) (Task, error) {
	var t Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		t, err = insertTask(ctx, tx, in)
		return err
	})
	return t, err
}

// CreateMany inserts every input in one transaction; any failure rolls the
// whole batch back.
func (r *SQLiteRepo) CreateMany(ctx context.Context, ins []TaskInput) ([]Task, error) {
	out := make([]Task, 0, len(ins))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, in := range ins {
			t, err := insertTask(ctx, tx, in)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertTask(ctx context.Context, tx *sql.Tx, in TaskInput) (Task, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (title, is_completed)
		VALUES (?, ?)
	`, in.Title, in.IsCompleted)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return Task{ID: id, Title: in.Title, IsCompleted: in.IsCompleted}, nil
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, is_completed
		FROM tasks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.IsCompleted); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, is_completed
		FROM tasks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.IsCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, in TaskInput) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, is_completed = ?
			WHERE id = ?
		`, in.Title, in.IsCompleted, id)
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		if n == 0 {
			return &NotFoundError{ID: id}
		}
		return nil
	})
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(ids); start += deleteChunk {
			end := min(start+deleteChunk, len(ids))
			chunk := ids[start:end]

			args := make([]any, len(chunk))
			for i, id := range chunk {
				args[i] = id
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
			res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id IN (`+placeholders+`)`, args...)
			if err != nil {
				return fmt.Errorf("bulk delete: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("bulk delete: %w", err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// withTx runs fn in a transaction, committing on nil and rolling back
// otherwise.
func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Helper to build DSN like: file:/absolute/path?_pragma=busy_timeout(5000)&...
// Pragmas go in the DSN so every pooled connection gets them.
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)", nil
}
