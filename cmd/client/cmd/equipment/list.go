package equipment

import (
	"fmt"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
)

var (
	listTable  bool
	listOnLoan bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Сетка оборудования",
	Long: `Показывает состояние всех единиц оборудования.

По умолчанию выводится компактная сетка, с --table таблица с заемщиками.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		states := app.Grid()
		if listOnLoan {
			states = app.ActiveLoans()
		}

		if cli.Out.JSON {
			return cli.Out.PrintJSON(states)
		}

		if listOnLoan && len(states) == 0 {
			fmt.Fprintln(cli.Out.W, "Все оборудование на месте.")
			return nil
		}

		if listTable || listOnLoan {
			return cli.RenderStates(cli.Out.W, states)
		}
		cli.RenderGrid(cli.Out.W, states)
		return nil
	},
}

func init() {
	ListCmd.Flags().BoolVarP(&listTable, "table", "t", false, "вывести таблицу с заемщиками")
	ListCmd.Flags().BoolVar(&listOnLoan, "on-loan", false, "только выданные единицы")
}
