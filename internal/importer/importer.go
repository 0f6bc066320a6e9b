package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ErrUnrecognizedFormat is returned when no registered layout matches a file
// and no fallback is configured.
var ErrUnrecognizedFormat = errors.New("unrecognized bank format")

// Registry holds named bank formats.
type Registry struct {
	formats map[string]*model.BankFormat
	order   []string
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]*model.BankFormat)}
}

// Register adds a format. Panics on a duplicate name or a format that does
// not configure exactly one of a debit/credit pair or a signed amount.
func (r *Registry) Register(f *model.BankFormat) {
	key := strings.ToLower(f.Name)
	if _, ok := r.formats[key]; ok {
		panic("duplicate bank format: " + key)
	}
	if err := checkFormat(f); err != nil {
		panic(err.Error())
	}
	r.formats[key] = f
	r.order = append(r.order, key)
}

// Get returns the format called name, or nil.
func (r *Registry) Get(name string) *model.BankFormat {
	return r.formats[strings.ToLower(name)]
}

// Names returns registered format names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Formats returns registered formats in registration order.
func (r *Registry) Formats() []*model.BankFormat {
	out := make([]*model.BankFormat, len(r.order))
	for i, k := range r.order {
		out[i] = r.formats[k]
	}
	return out
}

func checkFormat(f *model.BankFormat) error {
	if f.Name == "" {
		return errors.New("bank format has no name")
	}
	if !f.Date.Present() || !f.Description.Present() {
		return fmt.Errorf("bank format %s: date and description columns are required", f.Name)
	}
	partial := f.Debit.Present() != f.Credit.Present()
	if partial || f.HasDebitCredit() == f.HasSignedAmount() {
		return fmt.Errorf("bank format %s: exactly one of debit+credit or amount must be configured", f.Name)
	}
	if f.DateGrammar == "" {
		return fmt.Errorf("bank format %s: date grammar is required", f.Name)
	}
	return nil
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a committed file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
