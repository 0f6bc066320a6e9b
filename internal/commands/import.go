package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/fingerprint"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/ingest"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/report"
	"github.com/tally-dev/tally/internal/validate"
)

type importOptions struct {
	accountID string
	format    string
	reportDir string
	dryRun    bool
}

// importFile is one file queued for import. Inbox files come from import/
// and are moved to import/processed/ once committed.
type importFile struct {
	name  string
	path  string
	inbox bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statement CSVs into an account",
		Long: `Import bank statement CSVs into an account.

With no arguments every CSV in import/ is imported and, once committed,
moved to import/processed/.`,
		Example: `  # Import everything waiting in import/
  tally import

  # Preview a single file without writing anything
  tally import --account everyday --dry-run statement.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.accountID, "account", "a", "", "destination account ID")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "bank format, skipping detection")
	cmd.Flags().StringVar(&opts.reportDir, "report-dir", "reports", "directory for per-batch review reports")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "reconcile and report without writing to the database")
	cmd.Flags().Float64("min-valid", validate.DefaultMinValidFraction, "minimum fraction of valid rows for a file to be accepted")
	cmd.Flags().Bool("reference-tiebreaker", false, "include the bank reference in fingerprints")
	cmd.Flags().String("default-format", "", "format used when detection finds no match")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, opts importOptions) error {
	ctx := cmd.Context()

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	files, err := importFiles(p.root, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		pterm.Info.Println("No CSV files waiting in import/")
		return nil
	}

	account, err := chooseAccount(p.cfg, opts.accountID)
	if err != nil {
		return err
	}

	engine, err := p.engine()
	if err != nil {
		return err
	}

	st, err := p.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := ingest.NewService(st, ingest.Options{
		Engine:           engine,
		Hasher:           fingerprint.Hasher{UseReference: p.cfg.Import.ReferenceTiebreaker},
		Resolver:         st,
		FallbackFormat:   p.cfg.Import.DefaultFormat,
		MinValidFraction: &p.cfg.Import.MinValidFraction,
	})

	format := opts.format
	if format == "" {
		format = account.Format
	}

	var entries []importlog.Entry
	failed := 0
	for _, f := range files {
		entry, err := importOne(cmd, p, svc, account, f, format, opts)
		entries = append(entries, entry)
		if err != nil {
			pterm.Error.Printf("%s: %v\n", f.name, err)
			failed++
		}
	}

	if err := importlog.Append(p.root, entries); err != nil {
		logger.FromContext(ctx).Warn("import_log_failed", "error", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

func importOne(cmd *cobra.Command, p *project, svc *ingest.Service, account config.Account, f importFile, format string, opts importOptions) (importlog.Entry, error) {
	ctx := cmd.Context()
	entry := importlog.Entry{
		Timestamp: time.Now(),
		File:      f.name,
		AccountID: account.ID,
		Result:    importlog.ResultRejected,
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return entry, fmt.Errorf("reading file: %w", err)
	}

	res, err := svc.Import(ctx, ingest.Request{
		UserID:    p.cfg.User.ID,
		AccountID: account.ID,
		File:      f.path,
		Data:      data,
		Format:    format,
		DryRun:    opts.dryRun,
	})
	if res != nil {
		entry.BatchID = res.BatchID
		entry.Format = res.Format
	}
	if err != nil {
		var rejected *validate.BatchRejectedError
		if errors.As(err, &rejected) {
			entry.Rejected = rejected.Stats.Error
			printBatchRejected(f.name, rejected)
		}
		return entry, err
	}

	out := res.Outcome
	entry.Inserted = out.InsertedCount()
	entry.Skipped = out.SkippedCount()
	entry.Rejected = out.RejectedCount()
	entry.Balance = out.Balance
	entry.Result = importlog.ResultCommitted
	if !res.Committed {
		entry.Result = importlog.ResultDryRun
	}

	printOutcome(f.name, res)

	reportPath := filepath.Join(p.path(opts.reportDir), res.BatchID+".csv")
	if err := report.WriteFile(reportPath, out); err != nil {
		return entry, err
	}
	pterm.Info.Printf("Review report written to %s\n", reportPath)

	if res.Committed && f.inbox {
		if err := importer.MarkProcessed(p.root, f.name); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// importFiles resolves the command arguments, or scans import/ when there
// are none.
func importFiles(root string, args []string) ([]importFile, error) {
	if len(args) == 0 {
		scanned, err := importer.Scan(root)
		if err != nil {
			return nil, err
		}
		files := make([]importFile, 0, len(scanned))
		for _, s := range scanned {
			files = append(files, importFile{name: s.Name, path: s.Path, inbox: true})
		}
		return files, nil
	}

	files := make([]importFile, 0, len(args))
	for _, a := range args {
		path, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		files = append(files, importFile{name: filepath.Base(a), path: path})
	}
	return files, nil
}

func printOutcome(name string, res *ingest.Result) {
	out := res.Outcome

	verb := "Imported"
	if !res.Committed {
		verb = "Dry run of"
	}
	pterm.Success.Printf("%s %s (%s, batch %s)\n", verb, name, res.Format, res.BatchID)
	pterm.Printf("  %d inserted, %d skipped as duplicates, %d rejected\n",
		out.InsertedCount(), out.SkippedCount(), out.RejectedCount())
	pterm.Printf("  balance: %s\n", out.Balance.StringFixed(2))

	if len(out.Skipped) > 0 {
		pterm.DefaultSection.Println("Skipped duplicates")
		skipped := make([]model.TransactionCandidate, len(out.Skipped))
		for i, d := range out.Skipped {
			skipped[i] = d.Candidate
		}
		renderCandidates(skipped, false)
	}
	if len(out.Rejected) > 0 {
		pterm.DefaultSection.Println("Rejected rows")
		renderCandidates(out.Rejected, true)
	}
}

func renderCandidates(cands []model.TransactionCandidate, withErrors bool) {
	header := []string{"Line", "Date", "Description", "Amount"}
	if withErrors {
		header = append(header, "Errors")
	}
	tableData := pterm.TableData{header}

	for _, c := range cands {
		row := []string{strconv.Itoa(c.Line), c.DateString(), c.Description, c.Amount.StringFixed(2)}
		if withErrors {
			row = append(row, joinErrors(c.Errors))
		}
		tableData = append(tableData, row)
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func printBatchRejected(name string, e *validate.BatchRejectedError) {
	pterm.Warning.Printf("%s rejected: %s, need %.0f%% valid\n", name, e.Stats, e.MinFraction*100)
	if len(e.Rows) == 0 {
		return
	}

	tableData := pterm.TableData{{"Line", "Errors"}}
	for _, r := range e.Rows {
		tableData = append(tableData, []string{strconv.Itoa(r.Line), joinErrors(r.Errors)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func joinErrors(errs []model.ValidationError) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.String()
	}
	return s
}
