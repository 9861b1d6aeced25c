package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/storage"
)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
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
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

const upsertQuery = `
	MERGE INTO TblMedNews AS target
	USING (SELECT @CheckSum AS CheckSum) AS source
	ON target.[CheckSum] = source.CheckSum
	WHEN MATCHED THEN
		UPDATE SET
			[Summary] = @Summary,
			[Keywords] = @Keywords,
			[Category] = @Category,
			[DT] = @DT
	WHEN NOT MATCHED THEN
		INSERT ([CheckSum], [SourceName], [SourceURL], [Language], [Category], [Title], [Content], [Summary], [Keywords], [DT])
		VALUES (@CheckSum, @SourceName, @SourceURL, @Language, @Category, @Title, @Content, @Summary, @Keywords, @DT)
	OUTPUT $action;
`

// Upsert сохраняет или обновляет запись
func (r *Repository) Upsert(ctx context.Context, rec *storage.StoredRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("CheckSum", rec.CheckSum),
		sql.Named("SourceName", rec.SourceName),
		sql.Named("SourceURL", rec.SourceURL),
		sql.Named("Language", rec.Language),
		sql.Named("Category", strings.Join(rec.Categories, ",")),
		sql.Named("Title", rec.Title),
		sql.Named("Content", rec.Content),
		sql.Named("Summary", rec.Summary),
		sql.Named("Keywords", strings.Join(rec.Keywords, ",")),
		sql.Named("DT", rec.Timestamp),
	).Scan(&action)
	if err != nil {
		return false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	return action == "INSERT", nil
}

// ExistsByCheckSum проверяет наличие записи по контрольной сумме
func (r *Repository) ExistsByCheckSum(ctx context.Context, sum string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `SELECT COUNT(*) FROM TblMedNews WHERE CheckSum = @CheckSum`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var count int
	if err := stmt.QueryRowContext(ctx, sql.Named("CheckSum", sum)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query database: %w", err)
	}

	return count > 0, nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
