package equipment

import (
	"fmt"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
)

var ShowCmd = &cobra.Command{
	Use:   "show <номер>",
	Short: "Состояние одной единицы",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		st, err := app.State(args[0])
		if err != nil {
			return explain(err)
		}

		if cli.Out.JSON {
			return cli.Out.PrintJSON(st)
		}

		w := cli.Out.W
		fmt.Fprintf(w, "Единица №%s: %s\n", st.EquipmentID, cli.StatusLabel(st))
		if st.LastMovement == nil {
			fmt.Fprintln(w, "Движений не было.")
			return nil
		}

		last := st.LastMovement
		fmt.Fprintf(w, "Последнее движение: %s, %s\n", last.Type.DisplayName(), cli.FormatTime(last.Timestamp))
		fmt.Fprintf(w, "  Учащийся:      %s (%s)\n", last.FullName, last.Document)
		if last.Group != "" {
			fmt.Fprintf(w, "  Группа:        %s\n", last.Group)
		}
		if last.Phone != "" {
			fmt.Fprintf(w, "  Телефон:       %s\n", last.Phone)
		}
		fmt.Fprintf(w, "  Преподаватель: %s\n", last.Professor)
		fmt.Fprintf(w, "  Предмет:       %s\n", last.Subject)
		if last.Comment != "" {
			fmt.Fprintf(w, "  Комментарий:   %s\n", last.Comment)
		}
		return nil
	},
}
