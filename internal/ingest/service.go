// Package ingest runs the import pipeline: bytes in, a reconciled outcome
// out, committed to the store unless the run is a dry run.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/fingerprint"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/validate"
)

// ErrWrongOwner is returned when the destination account belongs to a
// different user than the one importing.
var ErrWrongOwner = errors.New("account belongs to another user")

// Store is the persistence the pipeline reads from and commits to.
type Store interface {
	LoadAccount(ctx context.Context, accountID string) (reconcile.AccountState, error)
	Commit(ctx context.Context, batchID string, out *model.ImportOutcome) error
}

// Options configures a Service. Zero values select the built-in registry,
// rules and thresholds.
type Options struct {
	Registry         *importer.Registry
	Engine           *categorize.Engine
	Hasher           fingerprint.Hasher
	Resolver         reconcile.CategoryResolver // used when committing
	FallbackFormat   string
	MinValidFraction *float64 // nil selects the default; 0 accepts any non-empty batch
}

// Service runs imports against one store.
type Service struct {
	store    Store
	registry *importer.Registry
	engine   *categorize.Engine
	hasher   fingerprint.Hasher
	resolver reconcile.CategoryResolver
	fallback string
	minValid float64
}

// NewService creates a Service.
func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:    store,
		registry: opts.Registry,
		engine:   opts.Engine,
		hasher:   opts.Hasher,
		resolver: opts.Resolver,
		fallback: opts.FallbackFormat,
		minValid: validate.DefaultMinValidFraction,
	}
	if opts.MinValidFraction != nil {
		s.minValid = *opts.MinValidFraction
	}
	if s.registry == nil {
		s.registry = importer.DefaultRegistry()
	}
	if s.engine == nil {
		s.engine = categorize.Default()
	}
	return s
}

// Parsed is a file turned into candidates, before reconciliation.
type Parsed struct {
	BatchID    string
	Format     *model.BankFormat
	Candidates []model.TransactionCandidate
	Stats      validate.Stats
}

// Parse detects (or looks up) the format of data and validates every row.
// An empty formatName means detect.
func (s *Service) Parse(data []byte, formatName string) (*Parsed, error) {
	lines := importer.Lines(data)

	var format *model.BankFormat
	if formatName != "" {
		if format = s.registry.Get(formatName); format == nil {
			return nil, fmt.Errorf("%w: unknown format %q", importer.ErrUnrecognizedFormat, formatName)
		}
	} else {
		var err error
		if format, err = importer.Detect(lines, s.registry, s.fallback); err != nil {
			return nil, err
		}
	}

	p := &Parsed{BatchID: id.NewBatchID(), Format: format}
	for _, row := range importer.SplitRows(lines, format) {
		cid := id.FormatCandidateID(p.BatchID, row.Line)
		p.Candidates = append(p.Candidates, validate.Row(row, format, s.engine, cid))
	}
	p.Stats = validate.Summarize(p.Candidates)
	return p, nil
}

// Request is one import run.
type Request struct {
	UserID    string
	AccountID string
	File      string // for logging only
	Data      []byte
	Format    string // empty means detect
	DryRun    bool
}

// Result is the outcome of an import run.
type Result struct {
	BatchID   string
	Format    string
	Stats     validate.Stats
	Outcome   *model.ImportOutcome
	Committed bool
}

// Import parses, validates, reconciles and (unless DryRun) commits one file.
// A file that cannot be detected or fails the batch guard is rejected as a
// whole and nothing is written.
func (s *Service) Import(ctx context.Context, req Request) (*Result, error) {
	attrs := []any{"account_id", req.AccountID, "user_id", req.UserID, "file", req.File}

	parsed, err := s.Parse(req.Data, req.Format)
	if err != nil {
		logger.FromContext(ctx).Warn("import_rejected", append(attrs, "reason", err.Error())...)
		return nil, fmt.Errorf("parsing %s: %w", displayName(req.File), err)
	}
	ctx = logger.WithBatchID(ctx, parsed.BatchID)
	log := logger.FromContext(ctx).With(attrs...).With("format", parsed.Format.Name)
	log.Info("import_detected", "rows", len(parsed.Candidates))

	res := &Result{BatchID: parsed.BatchID, Format: parsed.Format.Name, Stats: parsed.Stats}

	if err := validate.CheckBatch(parsed.Candidates, s.minValid); err != nil {
		log.Warn("import_rejected",
			"total", parsed.Stats.Total, "valid", parsed.Stats.Valid,
			"error", parsed.Stats.Error, "warning", parsed.Stats.Warning)
		return res, err
	}
	log.Info("import_validated",
		"total", parsed.Stats.Total, "valid", parsed.Stats.Valid,
		"error", parsed.Stats.Error, "warning", parsed.Stats.Warning)

	state, err := s.store.LoadAccount(ctx, req.AccountID)
	if err != nil {
		return res, fmt.Errorf("loading account: %w", err)
	}
	if req.UserID != "" && state.UserID != req.UserID {
		return res, fmt.Errorf("%w: %s", ErrWrongOwner, req.AccountID)
	}

	resolver := s.resolver
	if req.DryRun {
		resolver = categories.NewService(categories.Defaults()...)
	}
	rec := &reconcile.Reconciler{Hasher: s.hasher, Resolver: resolver}
	out, err := rec.Reconcile(ctx, parsed.Candidates, state)
	if err != nil {
		return res, fmt.Errorf("reconciling: %w", err)
	}
	out.Format = parsed.Format.Name
	res.Outcome = out
	log.Info("import_reconciled",
		"inserted", out.InsertedCount(), "skipped", out.SkippedCount(),
		"rejected", out.RejectedCount(), "balance", out.Balance.StringFixed(2))

	if req.DryRun {
		return res, nil
	}

	if err := s.store.Commit(ctx, parsed.BatchID, out); err != nil {
		return res, fmt.Errorf("committing: %w", err)
	}
	res.Committed = true
	log.Info("import_committed", "inserted", out.InsertedCount(), "balance", out.Balance.StringFixed(2))
	return res, nil
}

func displayName(file string) string {
	if file == "" {
		return "input"
	}
	return file
}
