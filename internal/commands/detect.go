package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/ingest"
	"github.com/tally-dev/tally/internal/model"
)

func newDetectCommand() *cobra.Command {
	var fallback string
	var format string

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Show the detected bank format and how each row would be read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args[0], format, fallback)
		},
	}

	cmd.Flags().StringVar(&fallback, "default-format", "anz", "format used when detection finds no match")
	cmd.Flags().StringVarP(&format, "format", "f", "", "bank format, skipping detection")

	return cmd
}

func runDetect(path, format, fallback string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	svc := ingest.NewService(nil, ingest.Options{FallbackFormat: fallback})
	parsed, err := svc.Parse(data, format)
	if err != nil {
		return err
	}

	pterm.Info.Printf("Format: %s (%s)\n", parsed.Format.Name, parsed.Format.Bank)
	pterm.Info.Printf("Rows: %s\n", parsed.Stats)

	if len(parsed.Candidates) == 0 {
		return nil
	}

	tableData := pterm.TableData{
		{"Line", "Date", "Description", "Amount", "Merchant", "Category", "Status"},
	}
	for _, c := range parsed.Candidates {
		status := string(c.Status)
		if c.Status == model.StatusError {
			status += ": " + joinErrors(c.Errors)
		}
		tableData = append(tableData, []string{
			strconv.Itoa(c.Line),
			c.DateString(),
			c.Description,
			c.Amount.StringFixed(2),
			c.Merchant,
			c.Category,
			status,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
