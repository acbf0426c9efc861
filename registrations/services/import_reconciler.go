package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"registration-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownMappingField = errors.New("column mapping references an unknown field")
	ErrStoreUnavailable    = errors.New("registration store is unavailable")
)

// RegistrationStore is the persistence collaborator of an import run.
type RegistrationStore interface {
	ContactLookup
	Ping(ctx context.Context) error
	CreateRegistration(ctx context.Context, reg *models.Registration) error
}

// RegistrationIndexer receives every registration created by a run.
type RegistrationIndexer interface {
	IndexRegistration(reg models.Registration) error
}

// RunOptions carries the audit attributes stamped on created registrations.
// Lines holds the spreadsheet line of each row (Sheet.Lines); without it
// rows are assumed to follow the header without gaps.
type RunOptions struct {
	RunID     uuid.UUID
	CreatedBy string
	Lines     []int
}

// position returns the data row and spreadsheet line of rows[i]. The data
// row counts from the line under the header, blank lines included.
func (o RunOptions) position(i int) (row, line int) {
	if i < len(o.Lines) && o.Lines[i] > 1 {
		return o.Lines[i] - 1, o.Lines[i]
	}
	return i + 1, i + 2
}

// ImportReconciler classifies spreadsheet rows into created or skipped.
type ImportReconciler struct {
	catalog *Catalog
	store   RegistrationStore
	indexer RegistrationIndexer
	logger  *zap.Logger
}

// NewImportReconciler builds a reconciler. indexer may be nil.
func NewImportReconciler(catalog *Catalog, store RegistrationStore, indexer RegistrationIndexer, logger *zap.Logger) *ImportReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportReconciler{
		catalog: catalog,
		store:   store,
		indexer: indexer,
		logger:  logger,
	}
}

// ValidateMapping rejects mappings that name fields outside the catalog.
func ValidateMapping(mapping ColumnMapping, catalog *Catalog) error {
	var unknown []string
	for key := range mapping {
		if _, ok := catalog.Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownMappingField, strings.Join(unknown, ", "))
	}
	return nil
}

// Run imports rows in order, one at a time. Rows are never rolled back: a
// failure on one row is recorded against that row and the pass continues.
// An error is returned only when no row can be attempted at all. When ctx is
// cancelled the rows not yet attempted are skipped as Cancelled.
func (r *ImportReconciler) Run(ctx context.Context, rows []RawRow, mapping ColumnMapping, opts RunOptions) (*ImportSummary, error) {
	if err := ValidateMapping(mapping, r.catalog); err != nil {
		return nil, err
	}
	if err := r.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	summary := &ImportSummary{
		Total:       len(rows),
		SkippedRows: []SkipEntry{},
		Errors:      []string{},
	}
	if opts.RunID != uuid.Nil {
		summary.RunID = opts.RunID.String()
	}

	resolver := NewDuplicateResolver(r.store)
	log := r.logger.With(zap.String("run_id", summary.RunID))
	log.Info("Registration import started", zap.Int("total", len(rows)), zap.Any("mapping", mapping))

	for i, row := range rows {
		rowNum, line := opts.position(i)
		if ctx.Err() != nil {
			r.cancelRemaining(summary, opts, i)
			break
		}

		candidate, err := ExtractRow(row, mapping, r.catalog)
		if err != nil {
			var failure *ValidationFailure
			if !errors.As(err, &failure) {
				r.skipOther(summary, rowNum, line, err)
				continue
			}
			summary.SkippedDetails.MissingFields++
			summary.SkippedRows = append(summary.SkippedRows, SkipEntry{
				Row:           rowNum,
				Line:          line,
				Reason:        SkipMissingRequiredFields,
				MissingFields: failure.MissingFields,
			})
			log.Debug("Row skipped: missing required fields", zap.Int("row", rowNum), zap.Strings("fields", failure.MissingFields))
			continue
		}

		match, duplicate, err := resolver.IsDuplicate(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				r.cancelRemaining(summary, opts, i)
				break
			}
			r.skipOther(summary, rowNum, line, err)
			continue
		}
		if duplicate {
			summary.SkippedDetails.Duplicates++
			summary.SkippedRows = append(summary.SkippedRows, SkipEntry{
				Row:          rowNum,
				Line:         line,
				Reason:       SkipDuplicateUser,
				Email:        candidate.Email,
				MobileNumber: candidate.MobileNumber,
				MatchedOn:    match.MatchedOn,
				Source:       match.Source,
			})
			log.Debug("Row skipped: duplicate user", zap.Int("row", rowNum), zap.Strings("matched_on", match.MatchedOn), zap.String("source", match.Source))
			continue
		}

		reg := candidate.ToRegistration(opts.CreatedBy, opts.RunID)
		if err := r.store.CreateRegistration(ctx, &reg); err != nil {
			if ctx.Err() != nil {
				r.cancelRemaining(summary, opts, i)
				break
			}
			r.skipOther(summary, rowNum, line, err)
			continue
		}

		summary.Created++
		resolver.Register(candidate)

		if r.indexer != nil {
			if err := r.indexer.IndexRegistration(reg); err != nil {
				// Row stays created; startup reindex picks it up.
				log.Warn("Failed to index imported registration", zap.String("registration_id", reg.ID.String()), zap.Error(err))
			}
		}
	}

	summary.Skipped = summary.SkippedDetails.Sum()

	log.Info("Registration import finished",
		zap.Int("total", summary.Total),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("duplicates", summary.SkippedDetails.Duplicates),
		zap.Int("missing_fields", summary.SkippedDetails.MissingFields),
		zap.Int("other", summary.SkippedDetails.Other),
		zap.Int("cancelled", summary.SkippedDetails.Cancelled),
	)

	return summary, nil
}

func (r *ImportReconciler) skipOther(summary *ImportSummary, rowNum, line int, err error) {
	summary.SkippedDetails.Other++
	summary.SkippedRows = append(summary.SkippedRows, SkipEntry{
		Row:    rowNum,
		Line:   line,
		Reason: SkipOtherError,
		Error:  err.Error(),
	})
	summary.Errors = append(summary.Errors, err.Error())
	r.logger.Warn("Row skipped: import error", zap.Int("row", rowNum), zap.Error(err))
}

// cancelRemaining marks rows from index from to the end as Cancelled.
func (r *ImportReconciler) cancelRemaining(summary *ImportSummary, opts RunOptions, from int) {
	for i := from; i < summary.Total; i++ {
		rowNum, line := opts.position(i)
		summary.SkippedDetails.Cancelled++
		summary.SkippedRows = append(summary.SkippedRows, SkipEntry{
			Row:    rowNum,
			Line:   line,
			Reason: SkipCancelled,
		})
	}
	fromRow, _ := opts.position(from)
	r.logger.Warn("Registration import cancelled", zap.Int("from_row", fromRow), zap.Int("total", summary.Total))
}
