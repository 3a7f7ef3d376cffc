package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
)

type (
	termRepository struct {
		db *sqlx.DB
	}

	termRow struct {
		Year      int       `db:"year"`
		Number    int       `db:"number"`
		StartDate time.Time `db:"start_date"`
		EndDate   time.Time `db:"end_date"`
	}
)

var _ calendar.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *sqlx.DB) calendar.Repository {
	return &termRepository{db: db}
}

func (repo *termRepository) QueryTermDates(ctx context.Context) (map[int][]calendar.SchoolTerm, error) {
	var rows []termRow
	q := `SELECT year, number, start_date, end_date FROM school_term ORDER BY year, number`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting term dates")
	}

	dates := make(map[int][]calendar.SchoolTerm)
	for _, r := range rows {
		dates[r.Year] = append(dates[r.Year], calendar.SchoolTerm{
			Number: r.Number,
			Start:  core.Date(r.StartDate),
			End:    core.Date(r.EndDate),
		})
	}
	return dates, nil
}

func (repo *termRepository) ReplaceTermDates(ctx context.Context, year int, terms []calendar.SchoolTerm) error {
	return transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM school_term WHERE year = $1`, year); err != nil {
			return errors.Wrap(err, "deleting term dates")
		}

		q := `INSERT INTO school_term (year, number, start_date, end_date) VALUES (:year, :number, :start_date, :end_date)`
		for _, t := range terms {
			row := termRow{Year: year, Number: t.Number, StartDate: core.Date(t.Start), EndDate: core.Date(t.End)}
			if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
				return errors.Wrapf(err, "inserting term %d", t.Number)
			}
		}
		return nil
	})
}
