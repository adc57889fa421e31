package inventory

import (
	"equiploan/internal/domain/movement"
)

// Deriver вычисляет текущее состояние оборудования по журналу хранилища.
// Кэша нет: каждый вызов читает актуальное содержимое Store.
type Deriver struct {
	store *Store
}

// NewDeriver создает вычислитель состояний
func NewDeriver(store *Store) *Deriver {
	return &Deriver{store: store}
}

// DeriveState возвращает состояние единицы оборудования по самому новому событию для нее.
func (d *Deriver) DeriveState(equipmentID string) movement.EquipmentState {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	return Derive(d.store.history, equipmentID)
}

// DeriveAll возвращает состояния единиц 1..total, вычисленные по одному снимку журнала.
func (d *Deriver) DeriveAll(total int) []movement.EquipmentState {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	latest := make(map[string]*movement.Event, total)
	for _, e := range d.store.history {
		if _, seen := latest[e.EquipmentID]; !seen {
			latest[e.EquipmentID] = e
		}
	}

	states := make([]movement.EquipmentState, 0, total)
	for unit := 1; unit <= total; unit++ {
		id := movement.EquipmentID(unit)
		states = append(states, stateFrom(id, latest[id]))
	}
	return states
}

// ActiveLoans возвращает только единицы, находящиеся на руках.
func (d *Deriver) ActiveLoans(total int) []movement.EquipmentState {
	var loans []movement.EquipmentState
	for _, st := range d.DeriveAll(total) {
		if st.OnLoan {
			loans = append(loans, st)
		}
	}
	return loans
}

// Derive чистая функция: history должна быть отсортирована по убыванию времени.
func Derive(history []*movement.Event, equipmentID string) movement.EquipmentState {
	for _, e := range history {
		if e.EquipmentID == equipmentID {
			return stateFrom(equipmentID, e)
		}
	}
	return movement.EquipmentState{EquipmentID: equipmentID}
}

func stateFrom(equipmentID string, last *movement.Event) movement.EquipmentState {
	st := movement.EquipmentState{EquipmentID: equipmentID}
	if last == nil || !last.IsLoan() {
		return st
	}
	st.OnLoan = true
	st.FullName = last.FullName
	st.LastMovement = last
	return st
}
