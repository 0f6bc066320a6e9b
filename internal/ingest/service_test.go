package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/validate"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("../../testdata", name))
	require.NoError(t, err)
	return data
}

// memStore is an in-memory Store that records commits.
type memStore struct {
	state   reconcile.AccountState
	commits int
	err     error
}

func newMemStore() *memStore {
	return &memStore{state: reconcile.AccountState{
		ID: "everyday", UserID: "u1", OpeningBalance: dec("100"),
		Fingerprints: map[string]struct{}{},
	}}
}

func (m *memStore) LoadAccount(_ context.Context, accountID string) (reconcile.AccountState, error) {
	if accountID != m.state.ID {
		return reconcile.AccountState{}, store.ErrAccountNotFound
	}
	s := m.state
	s.Fingerprints = make(map[string]struct{}, len(m.state.Fingerprints))
	for fp := range m.state.Fingerprints {
		s.Fingerprints[fp] = struct{}{}
	}
	s.Amounts = append([]decimal.Decimal(nil), m.state.Amounts...)
	return s, nil
}

func (m *memStore) Commit(_ context.Context, _ string, out *model.ImportOutcome) error {
	if m.err != nil {
		return m.err
	}
	m.commits++
	for _, a := range out.Inserted {
		m.state.Fingerprints[a.Fingerprint] = struct{}{}
		m.state.Amounts = append(m.state.Amounts, a.Candidate.Amount)
	}
	return nil
}

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return logger.WithLogger(context.Background(), logger.New(&buf, "debug")), &buf
}

func events(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if json.Unmarshal([]byte(line), &rec) == nil {
			out = append(out, rec["msg"].(string))
		}
	}
	return out
}

func TestParse_Detects(t *testing.T) {
	svc := NewService(newMemStore(), Options{FallbackFormat: "anz"})

	p, err := svc.Parse(readFixture(t, "commbank.csv"), "")
	require.NoError(t, err)

	assert.Equal(t, "commbank", p.Format.Name)
	require.Len(t, p.Candidates, 4)
	assert.Equal(t, validate.Stats{Total: 4, Valid: 4}, p.Stats)

	batch, line, err := id.ParseCandidateID(p.Candidates[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, line)
	assert.True(t, id.SameBatch(p.Candidates[2].ID, p.BatchID), batch)
}

func TestParse_FormatOverride(t *testing.T) {
	svc := NewService(newMemStore(), Options{})

	p, err := svc.Parse(readFixture(t, "anz.csv"), "ANZ")
	require.NoError(t, err)
	assert.Equal(t, "anz", p.Format.Name)

	_, err = svc.Parse(readFixture(t, "anz.csv"), "mystery-bank")
	assert.ErrorIs(t, err, importer.ErrUnrecognizedFormat)
}

func TestImport_CommitsAndReimportIsNoOp(t *testing.T) {
	ms := newMemStore()
	svc := NewService(ms, Options{FallbackFormat: "anz"})
	ctx, logs := captureLogs(t)
	req := Request{UserID: "u1", AccountID: "everyday", File: "anz.csv", Data: readFixture(t, "anz.csv")}

	first, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Committed)
	assert.Equal(t, "anz", first.Format)
	assert.Equal(t, "anz", first.Outcome.Format)
	assert.Equal(t, 4, first.Outcome.InsertedCount())
	assert.Equal(t, 1, first.Outcome.SkippedCount())
	assert.True(t, first.Outcome.Balance.Equal(dec("2702.10")))

	assert.Equal(t,
		[]string{"import_detected", "import_validated", "import_reconciled", "import_committed"},
		events(logs))

	second, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, second.Outcome.InsertedCount())
	assert.Equal(t, 5, second.Outcome.SkippedCount())
	assert.True(t, second.Outcome.Balance.Equal(first.Outcome.Balance))
	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.Equal(t, 2, ms.commits)
}

func TestImport_DryRunDoesNotCommit(t *testing.T) {
	ms := newMemStore()
	svc := NewService(ms, Options{})

	res, err := svc.Import(context.Background(), Request{
		UserID: "u1", AccountID: "everyday", Data: readFixture(t, "anz.csv"), DryRun: true,
	})
	require.NoError(t, err)

	assert.False(t, res.Committed)
	assert.Zero(t, ms.commits)
	assert.Equal(t, 4, res.Outcome.InsertedCount())
	for _, a := range res.Outcome.Inserted {
		assert.NotZero(t, a.CategoryID, "dry run still resolves categories in memory")
	}
}

func TestImport_RejectsMostlyInvalidFile(t *testing.T) {
	ms := newMemStore()
	minValid := 0.9
	svc := NewService(ms, Options{MinValidFraction: &minValid})
	ctx, logs := captureLogs(t)

	// One of the three NAB rows has an unparseable amount.
	res, err := svc.Import(ctx, Request{UserID: "u1", AccountID: "everyday", Data: readFixture(t, "nab.csv")})

	var rejected *validate.BatchRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, 1, rejected.Stats.Error)
	require.Len(t, rejected.Rows, 1)
	assert.Equal(t, 4, rejected.Rows[0].Line)
	require.NotNil(t, res)
	assert.Nil(t, res.Outcome)
	assert.Zero(t, ms.commits)
	assert.Equal(t, []string{"import_detected", "import_rejected"}, events(logs))
}

func TestImport_ZeroMinValidAcceptsAnyBatch(t *testing.T) {
	ms := newMemStore()
	minValid := 0.0
	svc := NewService(ms, Options{MinValidFraction: &minValid})

	data := []byte("Date,Description,Debit,Credit,Balance\n" +
		"not a date,COFFEE,4.50,,\n" +
		"also bad,LUNCH,abc,,\n" +
		"15/01/2024,WOOLWORTHS 1234,85.50,,\n")
	res, err := svc.Import(context.Background(), Request{UserID: "u1", AccountID: "everyday", Data: data, Format: "anz"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Outcome.InsertedCount())
	assert.Equal(t, 2, res.Outcome.RejectedCount())
	assert.True(t, res.Committed)

	// The default guard rejects the same file.
	_, err = NewService(newMemStore(), Options{}).Import(context.Background(),
		Request{UserID: "u1", AccountID: "everyday", Data: data, Format: "anz"})
	var rejected *validate.BatchRejectedError
	assert.True(t, errors.As(err, &rejected))
}

func TestImport_ErrorRowsReportedNotInserted(t *testing.T) {
	ms := newMemStore()
	svc := NewService(ms, Options{})

	res, err := svc.Import(context.Background(), Request{UserID: "u1", AccountID: "everyday", Data: readFixture(t, "nab.csv")})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Outcome.InsertedCount())
	require.Equal(t, 1, res.Outcome.RejectedCount())
	assert.Equal(t, "BROKEN ROW", res.Outcome.Rejected[0].Description)
}

func TestImport_EmptyFile(t *testing.T) {
	svc := NewService(newMemStore(), Options{FallbackFormat: "anz"})

	_, err := svc.Import(context.Background(), Request{AccountID: "everyday", Data: []byte("\n\n")})
	assert.ErrorIs(t, err, importer.ErrUnrecognizedFormat)

	_, err = svc.Import(context.Background(), Request{AccountID: "everyday", Data: []byte("Date,Description,Debit,Credit,Balance\n")})
	assert.ErrorIs(t, err, validate.ErrNoRows)
}

func TestImport_AccountErrors(t *testing.T) {
	svc := NewService(newMemStore(), Options{})

	_, err := svc.Import(context.Background(), Request{UserID: "u1", AccountID: "missing", Data: readFixture(t, "anz.csv")})
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	_, err = svc.Import(context.Background(), Request{UserID: "intruder", AccountID: "everyday", Data: readFixture(t, "anz.csv")})
	assert.ErrorIs(t, err, ErrWrongOwner)
}

func TestImport_CommitFailure(t *testing.T) {
	ms := newMemStore()
	ms.err = store.ErrDuplicateFingerprint
	svc := NewService(ms, Options{})

	res, err := svc.Import(context.Background(), Request{UserID: "u1", AccountID: "everyday", Data: readFixture(t, "anz.csv")})
	assert.ErrorIs(t, err, store.ErrDuplicateFingerprint)
	require.NotNil(t, res)
	assert.False(t, res.Committed)
}

func TestImport_SQLiteStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.EnsureAccount(ctx, model.Account{ID: "cba", UserID: "u1", Name: "CommBank", OpeningBalance: dec("0")}))

	svc := NewService(st, Options{Resolver: st, FallbackFormat: "anz"})
	req := Request{UserID: "u1", AccountID: "cba", Data: readFixture(t, "commbank.csv")}

	first, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Outcome.InsertedCount())

	second, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, second.Outcome.InsertedCount())

	acc, err := st.Account(ctx, "cba")
	require.NoError(t, err)
	// -508.02 - 42.10 + 1500.00 - 18.00
	assert.True(t, acc.Balance.Equal(dec("931.88")), "balance %s", acc.Balance)

	txs, err := st.Transactions(ctx, "cba")
	require.NoError(t, err)
	require.Len(t, txs, 4)
	assert.Equal(t, "Loans", txs[0].Category)
	assert.Equal(t, "Nissan Financial", txs[0].Merchant)
}
