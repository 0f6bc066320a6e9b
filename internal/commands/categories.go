package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the user's categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			cats, err := st.Categories(ctx, p.cfg.User.ID)
			if err != nil {
				return err
			}

			tableData := pterm.TableData{{"ID", "Name"}}
			for _, c := range cats {
				tableData = append(tableData, []string{strconv.FormatInt(c.ID, 10), c.Name})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
		},
	}
}
