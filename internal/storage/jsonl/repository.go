package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"medical-news-scraper/internal/storage"
)

// Repository пишет записи построчно в JSON; используется, когда БД не настроена.
// Повторы отсекаются по CheckSum в пределах процесса.
type Repository struct {
	mu   sync.Mutex
	enc  *json.Encoder
	seen map[string]struct{}
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(out io.Writer) *Repository {
	return &Repository{
		enc:  json.NewEncoder(out),
		seen: make(map[string]struct{}),
	}
}

func (r *Repository) Upsert(_ context.Context, rec *storage.StoredRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.seen[rec.CheckSum]; dup {
		return false, nil
	}
	if err := r.enc.Encode(rec); err != nil {
		return false, fmt.Errorf("encode record: %w", err)
	}
	r.seen[rec.CheckSum] = struct{}{}
	return true, nil
}

func (r *Repository) ExistsByCheckSum(_ context.Context, sum string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[sum]
	return ok, nil
}

// Close поток принадлежит вызывающему и не закрывается
func (r *Repository) Close() error {
	return nil
}
