package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/reconcile"
)

// EnsureAccount creates the account or updates its name, owner, format and
// opening balance, then re-derives its balance.
func (s *Store) EnsureAccount(ctx context.Context, acc model.Account) error {
	return s.ExecTx(ctx, func(tx *Store) error {
		_, err := tx.db.ExecContext(ctx, `
			INSERT INTO accounts (id, user_id, name, format, opening_balance, balance)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				user_id = excluded.user_id,
				name = excluded.name,
				format = excluded.format,
				opening_balance = excluded.opening_balance
		`, acc.ID, acc.UserID, acc.Name, acc.Format, acc.OpeningBalance, acc.OpeningBalance)
		if err != nil {
			return fmt.Errorf("upserting account %s: %w", acc.ID, err)
		}
		_, err = tx.refreshBalance(ctx, acc.ID)
		return err
	})
}

// Account returns one account.
func (s *Store) Account(ctx context.Context, accountID string) (model.Account, error) {
	var acc model.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, format, opening_balance, balance
		FROM accounts
		WHERE id = ?
	`, accountID).Scan(&acc.ID, &acc.UserID, &acc.Name, &acc.Format, &acc.OpeningBalance, &acc.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account %s: %w", accountID, err)
	}
	return acc, nil
}

// Accounts lists a user's accounts by name.
func (s *Store) Accounts(ctx context.Context, userID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, format, opening_balance, balance
		FROM accounts
		WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Name, &acc.Format, &acc.OpeningBalance, &acc.Balance); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// LoadAccount reads the state reconciliation needs: owner, opening balance
// and the fingerprint and amount of every stored transaction.
func (s *Store) LoadAccount(ctx context.Context, accountID string) (reconcile.AccountState, error) {
	state := reconcile.AccountState{ID: accountID, Fingerprints: make(map[string]struct{})}

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, opening_balance FROM accounts WHERE id = ?
	`, accountID).Scan(&state.UserID, &state.OpeningBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return reconcile.AccountState{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return reconcile.AccountState{}, fmt.Errorf("querying account %s: %w", accountID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, amount FROM transactions WHERE account_id = ? ORDER BY id
	`, accountID)
	if err != nil {
		return reconcile.AccountState{}, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		var amount decimal.Decimal
		if err := rows.Scan(&fp, &amount); err != nil {
			return reconcile.AccountState{}, fmt.Errorf("scanning transaction: %w", err)
		}
		state.Fingerprints[fp] = struct{}{}
		state.Amounts = append(state.Amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return reconcile.AccountState{}, fmt.Errorf("iterating transactions: %w", err)
	}
	return state, nil
}

// refreshBalance re-derives an account's balance from its opening balance
// and every stored transaction, and writes it back.
func (s *Store) refreshBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	state, err := s.LoadAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := reconcile.DeriveBalance(state.OpeningBalance, state.Amounts, nil)

	if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance, accountID); err != nil {
		return decimal.Zero, fmt.Errorf("updating balance of %s: %w", accountID, err)
	}
	return balance, nil
}
