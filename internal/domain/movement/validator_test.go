package movement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "valid digits",
			doc:  "12345",
		},
		{
			name: "surrounding spaces are ignored",
			doc:  "  987 ",
		},
		{
			name:    "empty",
			doc:     "",
			wantErr: ErrMissingDocument,
		},
		{
			name:    "spaces only",
			doc:     "   ",
			wantErr: ErrMissingDocument,
		},
		{
			name:    "letters",
			doc:     "12a45",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "dots",
			doc:     "1.234.567",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "inner space",
			doc:     "12 45",
			wantErr: ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.False(t, IsValidDocument(tt.doc))
			} else {
				require.NoError(t, err)
				assert.True(t, IsValidDocument(tt.doc))
			}
		})
	}
}

func TestValidationRefinements(t *testing.T) {
	for _, err := range []error{
		ErrMissingDocument,
		ErrInvalidDocument,
		ErrUnknownDocument,
		ErrInvalidType,
		ErrUnknownEquipment,
		ErrNotOnLoan,
		ErrAlreadyOnLoan,
	} {
		assert.True(t, errors.Is(err, ErrValidation), err.Error())
		assert.False(t, errors.Is(err, ErrSubmissionTransport), err.Error())
	}
}

func TestParseUnit(t *testing.T) {
	unit, err := ParseUnit("7", 40)
	require.NoError(t, err)
	assert.Equal(t, 7, unit)
	assert.Equal(t, "7", EquipmentID(unit))

	for _, raw := range []string{"0", "41", "-1", "abc", ""} {
		_, err := ParseUnit(raw, 40)
		assert.ErrorIs(t, err, ErrUnknownEquipment, raw)
	}
}

func TestFingerprint(t *testing.T) {
	base := Event{
		EquipmentID: "3",
		Type:        TypeLoan,
		Document:    "12345",
		Professor:   "Gómez",
		Subject:     "Física",
		Timestamp:   time.Now(),
	}

	same := base
	same.ID = "local-id"
	same.Timestamp = base.Timestamp.Add(time.Hour)
	same.FullName = "Ana Ruiz"
	assert.Equal(t, base.Fingerprint(), same.Fingerprint(), "время, ID и данные реестра не входят в отпечаток")

	other := base
	other.Type = TypeReturn
	assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())

	padded := base
	padded.Subject = " Física "
	assert.Equal(t, base.Fingerprint(), padded.Fingerprint())
}
