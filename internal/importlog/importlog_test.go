package importlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		BatchID:   "1f0c2a9e-77b4-4c55-9a41-3c2f7d0e1b22",
		File:      "anz.csv",
		AccountID: "everyday",
		Format:    "anz",
		Result:    ResultCommitted,
		Inserted:  4,
		Skipped:   1,
		Rejected:  0,
		Balance:   decimal.RequireFromString("2702.10"),
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "everyday", entries[0].AccountID)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Result = ResultDryRun
	e2.Inserted = 0
	e2.Skipped = 5
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ResultCommitted, entries[0].Result)
	assert.Equal(t, ResultDryRun, entries[1].Result)
	assert.Equal(t, 5, entries[1].Skipped)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.BatchID, got.BatchID)
	assert.Equal(t, original.File, got.File)
	assert.Equal(t, original.Format, got.Format)
	assert.Equal(t, original.Inserted, got.Inserted)
	assert.Equal(t, original.Skipped, got.Skipped)
	assert.Equal(t, original.Rejected, got.Rejected)
	assert.True(t, original.Balance.Equal(got.Balance))
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "import-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 10 fields")

	row := MarshalEntry(testEntry())
	row[colInserted] = "many"
	_, err = UnmarshalEntry(row)
	assert.Error(t, err)

	row = MarshalEntry(testEntry())
	row[colBalance] = "lots"
	_, err = UnmarshalEntry(row)
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2025, 1, 15, 21, 30, 0, 0, time.FixedZone("AEDT", 11*3600))
	row := MarshalEntry(e)
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])
}
