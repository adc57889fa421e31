package debug

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiploan/internal/domain/movement"
)

type checkerFunc func(string) (movement.Person, error)

func (f checkerFunc) CheckDocument(document string) (movement.Person, error) { return f(document) }

func TestCheckDocument(t *testing.T) {
	ana := movement.Person{Document: "12345", FullName: "Ana Ruiz"}

	tests := []struct {
		name       string
		err        error
		wantValid  bool
		wantExists bool
		wantReason string
	}{
		{"found", nil, true, true, ""},
		{"not in roster", fmt.Errorf("%w: 99999", movement.ErrUnknownDocument), true, false, "не найден"},
		{"bad format", movement.ErrInvalidDocument, false, false, "только цифры"},
		{"empty", movement.ErrMissingDocument, false, false, "только цифры"},
		{"other error", errors.New("boom"), false, false, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := checkerFunc(func(string) (movement.Person, error) {
				if tt.err != nil {
					return movement.Person{}, tt.err
				}
				return ana, nil
			})

			res := checkDocument(checker, "12345")

			assert.Equal(t, "12345", res.Document)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantExists, res.Exists)
			if tt.wantExists {
				require.NotNil(t, res.Person)
				assert.Equal(t, "Ana Ruiz", res.Person.FullName)
			} else {
				assert.Nil(t, res.Person)
				assert.Contains(t, res.Reason, tt.wantReason)
			}
		})
	}
}
