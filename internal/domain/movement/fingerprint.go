package movement

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint отпечаток содержимого события без учета времени и ID.
// По нему локальное событие сопоставляется со строкой, пришедшей из таблицы.
func (e *Event) Fingerprint() string {
	parts := []string{
		strings.TrimSpace(e.EquipmentID),
		string(e.Type),
		strings.TrimSpace(e.Document),
		strings.TrimSpace(e.Professor),
		strings.TrimSpace(e.Subject),
		strings.TrimSpace(e.Comment),
	}
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
