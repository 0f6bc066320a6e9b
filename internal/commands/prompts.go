package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/tally-dev/tally/internal/config"
)

var errNoAccounts = errors.New("no accounts configured (run 'tally accounts add' first)")

// chooseAccount resolves the destination account. With a single configured
// account it is used directly; otherwise an interactive terminal gets a
// picker and anything else must pass --account.
func chooseAccount(cfg *config.Config, accountID string) (config.Account, error) {
	if accountID != "" {
		acc, ok := cfg.Account(accountID)
		if !ok {
			return config.Account{}, fmt.Errorf("account %q is not declared in %s", accountID, config.FileName)
		}
		return acc, nil
	}

	switch len(cfg.Accounts) {
	case 0:
		return config.Account{}, errNoAccounts
	case 1:
		return cfg.Accounts[0], nil
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return config.Account{}, fmt.Errorf("%d accounts configured, pass --account", len(cfg.Accounts))
	}

	id, err := promptAccount(cfg.Accounts)
	if err != nil {
		return config.Account{}, err
	}
	acc, _ := cfg.Account(id)
	return acc, nil
}

func promptAccount(accounts []config.Account) (string, error) {
	options := make([]huh.Option[string], 0, len(accounts))
	for _, a := range accounts {
		label := a.ID
		if a.Name != "" {
			label = fmt.Sprintf("%s (%s)", a.Name, a.ID)
		}
		options = append(options, huh.NewOption(label, a.ID))
	}

	var selected string
	err := huh.NewSelect[string]().
		Title("Import into which account?").
		Options(options...).
		Value(&selected).
		Height(10).
		Run()
	if err != nil {
		return "", fmt.Errorf("selecting account: %w", err)
	}
	return selected, nil
}
