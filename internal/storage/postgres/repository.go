package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/storage"
)

const tableName = "med_news"

// Repository хранит статьи в Postgres
type Repository struct {
	db             *sql.DB
	builder        sq.StatementBuilderType
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewRepositoryWithDB(db, commandTimeout, logger), nil
}

// NewRepositoryWithDB оборачивает уже открытое соединение
func NewRepositoryWithDB(db *sql.DB, commandTimeout time.Duration, logger *observability.Logger) *Repository {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Repository{
		db:             db,
		builder:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

// Upsert сохраняет запись; при совпадении checksum обновляет сводку и ключевые слова.
// xmax = 0 только у только что вставленной строки.
func (r *Repository) Upsert(ctx context.Context, rec *storage.StoredRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query, args, err := r.builder.
		Insert(tableName).
		Columns("checksum", "source_name", "source_url", "language", "categories",
			"title", "content", "summary", "keywords", "scraped_at").
		Values(rec.CheckSum, rec.SourceName, rec.SourceURL, rec.Language, pq.StringArray(rec.Categories),
			rec.Title, rec.Content, rec.Summary, pq.StringArray(rec.Keywords), rec.Timestamp).
		Suffix(`ON CONFLICT (checksum) DO UPDATE
			SET summary = EXCLUDED.summary,
				keywords = EXCLUDED.keywords,
				categories = EXCLUDED.categories,
				scraped_at = EXCLUDED.scraped_at,
				updated_at = NOW()
			RETURNING (xmax = 0)`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert record: %w", err)
	}
	return inserted, nil
}

// ExistsByCheckSum проверяет наличие записи по контрольной сумме
func (r *Repository) ExistsByCheckSum(ctx context.Context, sum string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query, args, err := r.builder.
		Select("1").
		From(tableName).
		Where(sq.Eq{"checksum": sum}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
