package storage

import (
	"context"

	"medical-news-scraper/internal/checksum"
	"medical-news-scraper/internal/scraper"
)

// StoredRecord запись статьи вместе с результатом суммаризации
type StoredRecord struct {
	scraper.Record
	Summary  string `json:"summary,omitempty"`
	CheckSum string `json:"checksum"` // SHA256 источника, заголовка и текста
}

// NewStoredRecord считает контрольную сумму записи
func NewStoredRecord(rec scraper.Record, summary string, gen *checksum.Generator) *StoredRecord {
	return &StoredRecord{
		Record:   rec,
		Summary:  summary,
		CheckSum: gen.RecordHash(rec.SourceURL, rec.Title, rec.Content),
	}
}

// Repository интерфейс для работы с хранилищем статей
type Repository interface {
	// Upsert сохраняет или обновляет запись по CheckSum, возвращает isNew
	Upsert(ctx context.Context, rec *StoredRecord) (isNew bool, err error)

	// ExistsByCheckSum проверяет, сохранялась ли уже такая статья
	ExistsByCheckSum(ctx context.Context, sum string) (bool, error)

	Close() error
}
