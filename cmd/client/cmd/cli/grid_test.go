package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiploan/internal/domain/movement"
)

func TestRenderGrid(t *testing.T) {
	color.NoColor = true

	states := make([]movement.EquipmentState, 0, 10)
	for i := 1; i <= 10; i++ {
		states = append(states, movement.EquipmentState{EquipmentID: movement.EquipmentID(i), OnLoan: i == 7})
	}

	var buf bytes.Buffer
	RenderGrid(&buf, states)

	out := buf.String()
	assert.Contains(t, out, "  1    2")
	assert.Contains(t, out, "Свободно: 9  Выдано: 1  Всего: 10")
}

func TestRenderStates(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	err := RenderStates(&buf, []movement.EquipmentState{
		{EquipmentID: "1"},
		{EquipmentID: "2", OnLoan: true, FullName: "Ana Ruiz", LastMovement: &movement.Event{
			Document: "12345", Professor: "Gómez", Timestamp: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "свободно")
	assert.Contains(t, out, "Ana Ruiz")
	assert.Contains(t, out, "12345")
}

func TestAppFrom_Missing(t *testing.T) {
	_, err := AppFrom(context.Background())
	assert.Error(t, err)
}
