package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newTransactionsCommand() *cobra.Command {
	var accountID string
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List stored transactions of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransactions(cmd, accountID, limit)
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "account ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "show only the most recent N transactions (0 for all)")

	return cmd
}

func runTransactions(cmd *cobra.Command, accountID string, limit int) error {
	ctx := cmd.Context()

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	acc, err := chooseAccount(p.cfg, accountID)
	if err != nil {
		return err
	}

	st, err := p.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	stored, err := st.Account(ctx, acc.ID)
	if err != nil {
		return err
	}
	txs, err := st.Transactions(ctx, acc.ID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		pterm.Warning.Printf("No transactions in %s\n", acc.ID)
		return nil
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}

	tableData := pterm.TableData{
		{"Date", "Description", "Amount", "Merchant", "Category", "Bank Balance", "Batch", "Line"},
	}
	for _, t := range txs {
		balance := ""
		if t.Balance != nil {
			balance = t.Balance.StringFixed(2)
		}
		tableData = append(tableData, []string{
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Amount.StringFixed(2),
			t.Merchant,
			t.Category,
			balance,
			t.BatchID,
			strconv.Itoa(t.SourceLine),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}

	pterm.Info.Printf("Balance of %s: %s\n", acc.ID, stored.Balance.StringFixed(2))
	return nil
}
