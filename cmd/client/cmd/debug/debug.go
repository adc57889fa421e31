package debug

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
	"equiploan/internal/domain/movement"
)

var (
	historyLimit int
	resetConfirm bool
)

var DebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Просмотр загруженных данных",
	Long:  `Служебные команды для просмотра реестра, журнала и активных выдач.`,
}

var PeopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Реестр учащихся",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		people := app.People()
		if cli.Out.JSON {
			return cli.Out.PrintJSON(people)
		}
		if err := cli.RenderPeople(cli.Out.W, people); err != nil {
			return err
		}
		fmt.Fprintf(cli.Out.W, "\nВсего: %d\n", len(people))
		return nil
	},
}

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Журнал движений, новые сверху",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		events := app.History(historyLimit)
		if cli.Out.JSON {
			return cli.Out.PrintJSON(events)
		}
		return cli.RenderEvents(cli.Out.W, events)
	},
}

var LoansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Активные выдачи",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		loans := app.ActiveLoans()
		if cli.Out.JSON {
			return cli.Out.PrintJSON(loans)
		}
		return cli.RenderStates(cli.Out.W, loans)
	},
}

var FindCmd = &cobra.Command{
	Use:   "find <документ>",
	Short: "Найти учащегося по документу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		if err := movement.ValidateDocument(args[0]); err != nil {
			return err
		}
		person, ok := app.FindPerson(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", movement.ErrUnknownDocument, args[0])
		}
		if cli.Out.JSON {
			return cli.Out.PrintJSON(person)
		}
		return cli.RenderPeople(cli.Out.W, []movement.Person{person})
	},
}

// documentChecker проверка документа по формату и реестру
type documentChecker interface {
	CheckDocument(document string) (movement.Person, error)
}

// CheckResult результат проверки документа без отправки
type CheckResult struct {
	Document string           `json:"document"`
	Valid    bool             `json:"valid"`
	Exists   bool             `json:"exists"`
	Person   *movement.Person `json:"person,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

func checkDocument(c documentChecker, document string) CheckResult {
	res := CheckResult{Document: document}
	person, err := c.CheckDocument(document)
	switch {
	case err == nil:
		res.Valid, res.Exists, res.Person = true, true, &person
	case errors.Is(err, movement.ErrUnknownDocument):
		res.Valid = true
		res.Reason = "документ не найден в реестре"
	case errors.Is(err, movement.ErrInvalidDocument), errors.Is(err, movement.ErrMissingDocument):
		res.Reason = "документ должен содержать только цифры"
	default:
		res.Reason = err.Error()
	}
	return res
}

var CheckCmd = &cobra.Command{
	Use:   "check <документ>",
	Short: "Проверить документ по формату и реестру",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		res := checkDocument(app, args[0])
		if cli.Out.JSON {
			return cli.Out.PrintJSON(res)
		}
		fmt.Fprintf(cli.Out.W, "Документ:   %s\n", res.Document)
		fmt.Fprintf(cli.Out.W, "Формат:     %s\n", yesNo(res.Valid))
		fmt.Fprintf(cli.Out.W, "В реестре:  %s\n", yesNo(res.Exists))
		if res.Person != nil {
			return cli.RenderPeople(cli.Out.W, []movement.Person{*res.Person})
		}
		fmt.Fprintln(cli.Out.W, color.YellowString(res.Reason))
		return nil
	},
}

var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Очистить локальный журнал",
	Long: `Команда reset очищает локальный журнал движений и ожидающие события
в сохраненном снимке. Реестр не трогается. Журнал будет загружен заново
при следующей синхронизации.`,
	Annotations: map[string]string{cli.AnnotationSelfInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			fmt.Fprintln(cli.Out.W, "Локальный журнал будет очищен. Повторите с --yes для подтверждения.")
			return nil
		}
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}
		removed := app.ResetLocalView(cmd.Context())
		fmt.Fprintf(cli.Out.W, "Журнал очищен, удалено событий: %d\n", removed)
		return nil
	},
}

func yesNo(ok bool) string {
	if ok {
		return color.GreenString("да")
	}
	return color.RedString("нет")
}

func init() {
	ResetCmd.Flags().BoolVarP(&resetConfirm, "yes", "y", false, "подтвердить очистку")
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "количество событий (0 - все)")
}
