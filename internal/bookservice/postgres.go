package bookservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"readinglist/internal/books"
	"readinglist/internal/bookservice/migrations"
)

// DBTX is the subset of database/sql used by PostgresRepository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresRepository stores books in the books table.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository binds a repository to db.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens and pings a pgx-backed *sql.DB.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (r *PostgresRepository) Add(ctx context.Context, b books.Book) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (uuid, title, author, status) VALUES ($1, $2, $3, $4)`,
		b.UUID, b.Title, b.Author, string(b.Status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*books.Book, error) {
	var b books.Book
	err := r.db.QueryRowContext(ctx,
		`SELECT uuid, title, author, status FROM books WHERE uuid = $1`, id).
		Scan(&b.UUID, &b.Title, &b.Author, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]books.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT uuid, title, author, status FROM books ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []books.Book
	for rows.Next() {
		var b books.Book
		if err := rows.Scan(&b.UUID, &b.Title, &b.Author, &b.Status); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE uuid = $1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status books.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET status = $1, updated_at = now() WHERE uuid = $2`, string(status), id)
	return expectOneRow(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE uuid = $1`, id)
	return expectOneRow(res, err)
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
