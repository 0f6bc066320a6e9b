package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and their derived balances",
		Args:  cobra.NoArgs,
		RunE:  runAccountsList,
	}
	cmd.AddCommand(newAccountsAddCommand())
	return cmd
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	st, err := p.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	accounts, err := st.Accounts(ctx, p.cfg.User.ID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		pterm.Warning.Println("No accounts found")
		return nil
	}

	tableData := pterm.TableData{
		{"ID", "Name", "Format", "Opening", "Balance"},
	}
	for _, a := range accounts {
		format := a.Format
		if format == "" {
			format = "detect"
		}
		tableData = append(tableData, []string{
			a.ID,
			a.Name,
			format,
			a.OpeningBalance.StringFixed(2),
			a.Balance.StringFixed(2),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func newAccountsAddCommand() *cobra.Command {
	var acc config.Account

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Declare an import destination account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc.ID = args[0]
			return runAccountsAdd(cmd, acc)
		},
	}

	cmd.Flags().StringVar(&acc.Name, "name", "", "display name")
	cmd.Flags().StringVar(&acc.OpeningBalance, "opening", "0", "opening balance")
	cmd.Flags().StringVar(&acc.Format, "format", "", "bank format of this account's statements (empty to detect)")

	return cmd
}

func runAccountsAdd(cmd *cobra.Command, acc config.Account) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, config.FileName)

	// Edit the file as written so environment overrides are not persisted.
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, exists := cfg.Account(acc.ID); exists {
		return fmt.Errorf("account %q already exists", acc.ID)
	}
	if acc.Format != "" && importer.DefaultRegistry().Get(acc.Format) == nil {
		return fmt.Errorf("%w: unknown format %q", importer.ErrUnrecognizedFormat, acc.Format)
	}
	if acc.Name == "" {
		acc.Name = acc.ID
	}

	cfg.Accounts = append(cfg.Accounts, acc)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	st, err := p.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	pterm.Success.Printf("Added account %s\n", acc.ID)
	return nil
}
