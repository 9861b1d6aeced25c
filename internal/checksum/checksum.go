package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// RecordHash генерирует SHA256 хеш записи для дедупликации в хранилище.
// Формула: SHA256(source_url|title|content), регистр и крайние пробелы не учитываются.
func (g *Generator) RecordHash(sourceURL, title, content string) string {
	normalized := fmt.Sprintf("%s|%s|%s",
		strings.TrimSpace(sourceURL),
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(content)),
	)

	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hash)
}

// VerifyRecordHash проверяет соответствие хеша
func (g *Generator) VerifyRecordHash(expectedHash, sourceURL, title, content string) bool {
	return g.RecordHash(sourceURL, title, content) == expectedHash
}
