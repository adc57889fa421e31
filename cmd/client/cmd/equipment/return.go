package equipment

import (
	"fmt"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
)

var returnComment string

var ReturnCmd = &cobra.Command{
	Use:   "return <номер>",
	Short: "Оформить возврат оборудования",
	Long: `Оформляет возврат выданной единицы.

Данные учащегося, преподавателя и предмета берутся из последней выдачи.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		res, err := app.Return(cmd.Context(), args[0], returnComment)
		if err != nil {
			return explain(err)
		}

		if cli.Out.JSON {
			return cli.Out.PrintJSON(res)
		}
		fmt.Fprintf(cli.Out.W, "✅ Единица №%s возвращена: %s\n", res.Event.EquipmentID, res.Event.FullName)
		return nil
	},
}

func init() {
	ReturnCmd.Flags().StringVarP(&returnComment, "comment", "c", "", "комментарий к возврату")
}
