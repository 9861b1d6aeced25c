package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"medical-news-scraper/internal/scraper"
	"medical-news-scraper/internal/storage"
)

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewRepositoryWithDB(db, time.Second, nil), mock
}

func testRecord() *storage.StoredRecord {
	return &storage.StoredRecord{
		Record: scraper.Record{
			Title:      "Синдром Дауна: новости фонда",
			Content:    "Текст статьи",
			Keywords:   []string{"синдром", "дауна"},
			SourceName: "downsideup",
			SourceURL:  "https://downsideup.org/o-fonde/novosti/",
			Categories: []string{"down_syndrome", "news"},
			Language:   "ru",
			Timestamp:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		CheckSum: "def456",
	}
}

func TestUpsert(t *testing.T) {
	tests := []struct {
		name     string
		inserted bool
	}{
		{"insert", true},
		{"conflict update", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)

			args := make([]driver.Value, 10)
			for i := range args {
				args[i] = sqlmock.AnyArg()
			}
			mock.ExpectQuery(`INSERT INTO med_news .+ ON CONFLICT \(checksum\) DO UPDATE`).
				WithArgs(args...).
				WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(tt.inserted))

			isNew, err := repo.Upsert(context.Background(), testRecord())
			if err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
			if isNew != tt.inserted {
				t.Errorf("isNew = %v, want %v", isNew, tt.inserted)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestUpsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO med_news").WillReturnError(errors.New("connection reset"))

	if _, err := repo.Upsert(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error")
	}
}

func TestExistsByCheckSum(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT 1 FROM med_news WHERE checksum = \$1`).
		WithArgs("def456").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM med_news WHERE checksum = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByCheckSum(context.Background(), "def456")
	if err != nil || !exists {
		t.Errorf("ExistsByCheckSum(def456) = %v, %v; want true, nil", exists, err)
	}

	exists, err = repo.ExistsByCheckSum(context.Background(), "missing")
	if err != nil || exists {
		t.Errorf("ExistsByCheckSum(missing) = %v, %v; want false, nil", exists, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
