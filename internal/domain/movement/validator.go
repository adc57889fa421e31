package movement

import (
	"strings"
)

// IsValidDocument проверяет, что документ состоит только из цифр.
func IsValidDocument(doc string) bool {
	s := strings.TrimSpace(doc)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateDocument возвращает уточненную ошибку валидации документа.
func ValidateDocument(doc string) error {
	if strings.TrimSpace(doc) == "" {
		return ErrMissingDocument
	}
	if !IsValidDocument(doc) {
		return ErrInvalidDocument
	}
	return nil
}
