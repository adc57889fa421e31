package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"equiploan/internal/domain/movement"
)

const gridColumns = 8

// RenderGrid выводит сетку единиц: номер и метка состояния, по gridColumns в строке
func RenderGrid(w io.Writer, states []movement.EquipmentState) {
	var b strings.Builder
	onLoan := 0
	for i, st := range states {
		cell := color.GreenString("%3s", st.EquipmentID)
		if st.OnLoan {
			cell = color.New(color.FgRed, color.Bold).Sprintf("%3s", st.EquipmentID)
			onLoan++
		}
		b.WriteString(cell)
		if (i+1)%gridColumns == 0 || i == len(states)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
	}
	fmt.Fprint(w, b.String())
	fmt.Fprintf(w, "\nСвободно: %d  Выдано: %d  Всего: %d\n", len(states)-onLoan, onLoan, len(states))
}

// RenderStates выводит таблицу состояний с заемщиками
func RenderStates(w io.Writer, states []movement.EquipmentState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "№\tСОСТОЯНИЕ\tЗАЕМЩИК\tДОКУМЕНТ\tПРЕПОДАВАТЕЛЬ\tВЫДАНО")
	for _, st := range states {
		borrower, document, professor, since := "", "", "", ""
		if st.OnLoan && st.LastMovement != nil {
			borrower = st.FullName
			document = st.LastMovement.Document
			professor = st.LastMovement.Professor
			since = FormatTime(st.LastMovement.Timestamp)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", st.EquipmentID, StatusLabel(st), borrower, document, professor, since)
	}
	return tw.Flush()
}

// RenderEvents выводит журнал движений
func RenderEvents(w io.Writer, events []*movement.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ВРЕМЯ\t№\tТИП\tУЧАЩИЙСЯ\tДОКУМЕНТ\tПРЕПОДАВАТЕЛЬ\tПРЕДМЕТ\tКОММЕНТАРИЙ")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			FormatTime(e.Timestamp), e.EquipmentID, e.Type.DisplayName(), e.FullName, e.Document,
			e.Professor, e.Subject, e.Comment)
	}
	return tw.Flush()
}

// RenderPeople выводит реестр
func RenderPeople(w io.Writer, people []movement.Person) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ДОКУМЕНТ\tФИО\tГРУППА\tТЕЛЕФОН")
	for _, p := range people {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Document, p.FullName, p.Group, p.Phone)
	}
	return tw.Flush()
}
