package equipment

import (
	"fmt"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
)

var (
	loanDocument  string
	loanProfessor string
	loanSubject   string
)

var LoanCmd = &cobra.Command{
	Use:   "loan <номер>",
	Short: "Выдать оборудование",
	Long: `Выдает единицу оборудования учащемуся из реестра.

ФИО, группа и телефон подставляются из реестра по номеру документа.
Успешная отправка формы не гарантирует, что запись появится в таблице:
это станет известно при следующей синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		person, err := app.CheckDocument(loanDocument)
		if err != nil {
			return explain(err)
		}
		if !cli.Out.JSON {
			fmt.Fprintf(cli.Out.W, "Учащийся: %s, группа %s\n", person.FullName, person.Group)
			fmt.Fprintln(cli.Out.W, "Отправка формы...")
		}

		res, err := app.Loan(cmd.Context(), args[0], loanDocument, loanProfessor, loanSubject)
		if err != nil {
			return explain(err)
		}

		if cli.Out.JSON {
			return cli.Out.PrintJSON(res)
		}
		fmt.Fprintf(cli.Out.W, "✅ Единица №%s выдана: %s\n", res.Event.EquipmentID, res.Event.FullName)
		return nil
	},
}

func init() {
	LoanCmd.Flags().StringVarP(&loanDocument, "document", "d", "", "номер документа учащегося")
	LoanCmd.Flags().StringVarP(&loanProfessor, "professor", "p", "", "преподаватель")
	LoanCmd.Flags().StringVarP(&loanSubject, "subject", "s", "", "предмет")
	_ = LoanCmd.MarkFlagRequired("document")
}
