package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/model"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported bank formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormats(importer.DefaultRegistry())
		},
	}
}

func runFormats(reg *importer.Registry) error {
	tableData := pterm.TableData{
		{"Name", "Bank", "Dates", "Amounts", "Header", "Keywords"},
	}
	for _, f := range reg.Formats() {
		tableData = append(tableData, []string{
			f.Name,
			f.Bank,
			f.DateGrammar,
			amountLayout(f),
			headerLayout(f),
			strings.Join(f.Keywords, ", "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func amountLayout(f *model.BankFormat) string {
	if f.HasDebitCredit() {
		return "debit/credit"
	}
	return "signed"
}

func headerLayout(f *model.BankFormat) string {
	if f.Headerless {
		return "none"
	}
	return "yes"
}
