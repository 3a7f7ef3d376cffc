package dummydb

import (
	"context"

	"github.com/trezcool/lessonflow/core/calendar"
)

type termRepository struct {
	db *termTable
}

var _ calendar.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *DB) calendar.Repository {
	return &termRepository{db: db.term}
}

func (repo *termRepository) QueryTermDates(context.Context) (map[int][]calendar.SchoolTerm, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	dates := make(map[int][]calendar.SchoolTerm, len(repo.db.table))
	for year, terms := range repo.db.table {
		dates[year] = copyTerms(terms)
	}
	return dates, nil
}

func (repo *termRepository) ReplaceTermDates(_ context.Context, year int, terms []calendar.SchoolTerm) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[year] = copyTerms(terms)
	return nil
}

func copyTerms(terms []calendar.SchoolTerm) []calendar.SchoolTerm {
	c := make([]calendar.SchoolTerm, len(terms))
	copy(c, terms)
	return c
}
