package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
)

type (
	Repository interface {
		// QueryTermDates returns all the registered term dates, keyed by calendar year.
		QueryTermDates(ctx context.Context) (map[int][]SchoolTerm, error)
		// ReplaceTermDates replaces the whole term list of year.
		ReplaceTermDates(ctx context.Context, year int, terms []SchoolTerm) error
	}

	// Service keeps the in-memory Calendar in sync with its Repository.
	Service struct {
		*Calendar
		repo   Repository
		logger core.Logger
		mu     sync.Mutex // held from persisting to swapping, so memory follows the last write
	}
)

// NewService loads every registered year before returning.
func NewService(ctx context.Context, repo Repository, logger core.Logger) (*Service, error) {
	svc := &Service{
		Calendar: New(),
		repo:     repo,
		logger:   logger,
	}
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// Reload replaces the in-memory term dates with the repository's.
func (svc *Service) Reload(ctx context.Context) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	dates, err := svc.repo.QueryTermDates(ctx)
	if err != nil {
		return errors.Wrap(err, "querying term dates")
	}
	if err = svc.Load(dates); err != nil {
		return errors.Wrap(err, "loading term dates")
	}
	svc.logger.Info(fmt.Sprintf("term dates loaded for %d year(s)", len(dates)))
	return nil
}

// SaveTermDates persists the term list of a year then makes it visible to readers.
// Invalid terms are rejected before reaching the repository.
func (svc *Service) SaveTermDates(ctx context.Context, year int, terms []SchoolTerm) error {
	if err := ValidateTermDates(year, terms); err != nil {
		return err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.repo.ReplaceTermDates(ctx, year, terms); err != nil {
		return errors.Wrap(err, "replacing term dates")
	}
	if err := svc.SetTermDates(year, terms); err != nil {
		return errors.Wrap(err, "setting term dates")
	}
	svc.logger.Info(fmt.Sprintf("term dates saved for %d", year))
	return nil
}
