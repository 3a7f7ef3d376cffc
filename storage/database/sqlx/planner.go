package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/planner"
)

// templateColumns maps orderable fields to columns.
var templateColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type (
	templateRepository struct {
		db *sqlx.DB
	}

	templateRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	periodRow struct {
		TemplateID  string      `db:"template_id"`
		StartPeriod int         `db:"start_period"`
		Type        string      `db:"type"`
		Name        null.String `db:"name"`
		StartTime   string      `db:"start_time"`
		EndTime     string      `db:"end_time"`
	}

	cellRow struct {
		TemplateID      string   `db:"template_id"`
		Weekday         int      `db:"weekday"`
		StartPeriod     int      `db:"start_period"`
		Type            string   `db:"type"`
		NumberOfPeriods int      `db:"number_of_periods"`
		RowSpans        rowSpans `db:"row_spans"`
	}

	// rowSpans is stored as a JSONB array of {start, end} objects.
	rowSpans []planner.RowSpan
)

func (rs rowSpans) Value() (driver.Value, error) {
	if rs == nil {
		rs = rowSpans{}
	}
	return json.Marshal(rs)
}

func (rs *rowSpans) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*rs = nil
		return nil
	default:
		return fmt.Errorf("rowSpans.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, (*[]planner.RowSpan)(rs))
}

var _ planner.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db *sqlx.DB) planner.Repository {
	return &templateRepository{db: db}
}

func (repo *templateRepository) unmarshal(row templateRow, periods []periodRow) planner.WeekTemplate {
	tmpl := planner.WeekTemplate{
		ID:        row.ID,
		Name:      row.Name,
		Periods:   make([]planner.TemplatePeriod, 0, len(periods)),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	for _, p := range periods {
		tmpl.Periods = append(tmpl.Periods, planner.TemplatePeriod{
			Type:        planner.PeriodType(p.Type),
			StartPeriod: p.StartPeriod,
			Name:        p.Name,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
		})
	}
	return tmpl
}

func (repo *templateRepository) insertPeriods(ctx context.Context, tx *sqlx.Tx, tmpl planner.WeekTemplate) error {
	q := `INSERT INTO template_period (template_id, start_period, type, name, start_time, end_time)
		VALUES (:template_id, :start_period, :type, :name, :start_time, :end_time)`
	for _, p := range tmpl.Periods {
		row := periodRow{
			TemplateID:  tmpl.ID,
			StartPeriod: p.StartPeriod,
			Type:        string(p.Type),
			Name:        p.Name,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return errors.Wrapf(err, "inserting period %d", p.StartPeriod)
		}
	}
	return nil
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tmpl planner.WeekTemplate) (planner.WeekTemplate, error) {
	err := transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		row := templateRow{ID: tmpl.ID, Name: tmpl.Name, CreatedAt: tmpl.CreatedAt, UpdatedAt: tmpl.UpdatedAt}
		q := `INSERT INTO week_template (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			if isUniqueViolation(err) {
				return planner.ErrTemplateNameExists
			}
			return errors.Wrap(err, "inserting template")
		}
		return repo.insertPeriods(ctx, tx, tmpl)
	})
	if err != nil {
		return planner.WeekTemplate{}, err
	}
	return repo.GetTemplate(ctx, tmpl.ID)
}

func (repo *templateRepository) GetTemplate(ctx context.Context, id string) (planner.WeekTemplate, error) {
	var row templateRow
	q := `SELECT id, name, created_at, updated_at FROM week_template WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return planner.WeekTemplate{}, trapNoRowsErr(err, planner.ErrTemplateNotFound, "selecting template")
	}

	var periods []periodRow
	q = `SELECT template_id, start_period, type, name, start_time, end_time
		FROM template_period WHERE template_id = $1 ORDER BY start_period`
	if err := repo.db.SelectContext(ctx, &periods, q, id); err != nil {
		return planner.WeekTemplate{}, errors.Wrap(err, "selecting periods")
	}
	return repo.unmarshal(row, periods), nil
}

func (repo *templateRepository) QueryTemplates(ctx context.Context, ordering []core.DBOrdering) ([]planner.WeekTemplate, error) {
	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		col, ok := templateColumns[ord.Field]
		if !ok {
			return nil, errors.Errorf("unknown ordering field %q", ord.Field)
		}
		orderBy = append(orderBy, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "name ASC")
	}
	orderBy = append(orderBy, "id ASC")

	var rows []templateRow
	q := `SELECT id, name, created_at, updated_at FROM week_template ORDER BY ` + strings.Join(orderBy, ", ")
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting templates")
	}
	if len(rows) == 0 {
		return []planner.WeekTemplate{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	var periods []periodRow
	q = `SELECT template_id, start_period, type, name, start_time, end_time
		FROM template_period WHERE template_id = ANY($1::uuid[]) ORDER BY template_id, start_period`
	if err := repo.db.SelectContext(ctx, &periods, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting periods")
	}
	byTemplate := make(map[string][]periodRow, len(rows))
	for _, p := range periods {
		byTemplate[p.TemplateID] = append(byTemplate[p.TemplateID], p)
	}

	tmpls := make([]planner.WeekTemplate, 0, len(rows))
	for _, r := range rows {
		tmpls = append(tmpls, repo.unmarshal(r, byTemplate[r.ID]))
	}
	return tmpls, nil
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tmpl planner.WeekTemplate) (planner.WeekTemplate, error) {
	err := transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE week_template SET name = $2, updated_at = $3 WHERE id = $1`,
			tmpl.ID, tmpl.Name, tmpl.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return planner.ErrTemplateNameExists
			}
			return trapNoRowsErr(err, planner.ErrTemplateNotFound, "updating template")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "updating template")
		} else if n == 0 {
			return planner.ErrTemplateNotFound
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM template_period WHERE template_id = $1`, tmpl.ID); err != nil {
			return errors.Wrap(err, "deleting periods")
		}
		if err = repo.insertPeriods(ctx, tx, tmpl); err != nil {
			return err
		}

		// the layouts' rows no longer match the periods
		if _, err = tx.ExecContext(ctx, `DELETE FROM day_layout_cell WHERE template_id = $1`, tmpl.ID); err != nil {
			return errors.Wrap(err, "deleting layouts")
		}
		return nil
	})
	if err != nil {
		return planner.WeekTemplate{}, err
	}
	return repo.GetTemplate(ctx, tmpl.ID)
}

func (repo *templateRepository) DeleteTemplate(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM week_template WHERE id = $1`, id)
	if err != nil {
		return trapNoRowsErr(err, planner.ErrTemplateNotFound, "deleting template")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting template")
	} else if n == 0 {
		return planner.ErrTemplateNotFound
	}
	return nil
}

func (repo *templateRepository) GetDayLayout(ctx context.Context, templateID string, weekday time.Weekday) (planner.DayLayout, error) {
	var rows []cellRow
	q := `SELECT template_id, weekday, start_period, type, number_of_periods, row_spans
		FROM day_layout_cell WHERE template_id = $1 AND weekday = $2 ORDER BY start_period`
	if err := repo.db.SelectContext(ctx, &rows, q, templateID, int(weekday)); err != nil {
		return planner.DayLayout{}, trapNoRowsErr(err, planner.ErrLayoutNotFound, "selecting layout cells")
	}
	if len(rows) == 0 {
		return planner.DayLayout{}, planner.ErrLayoutNotFound
	}

	layout := planner.DayLayout{Weekday: weekday, Cells: make([]planner.GridCell, 0, len(rows))}
	for _, r := range rows {
		layout.Cells = append(layout.Cells, planner.GridCell{
			Type:            planner.PeriodType(r.Type),
			StartPeriod:     r.StartPeriod,
			NumberOfPeriods: r.NumberOfPeriods,
			RowSpans:        []planner.RowSpan(r.RowSpans),
		})
	}
	return layout, nil
}

func (repo *templateRepository) SaveDayLayout(ctx context.Context, tmpl planner.WeekTemplate, layout planner.DayLayout) error {
	templateID := tmpl.ID
	return transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		// the row lock orders this save against UpdateTemplate
		var updatedAt time.Time
		q := `SELECT updated_at FROM week_template WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &updatedAt, q, templateID); err != nil {
			return trapNoRowsErr(err, planner.ErrTemplateNotFound, "locking template")
		}
		if !updatedAt.Equal(tmpl.UpdatedAt) {
			return planner.ErrTemplateChanged
		}

		q = `DELETE FROM day_layout_cell WHERE template_id = $1 AND weekday = $2`
		if _, err := tx.ExecContext(ctx, q, templateID, int(layout.Weekday)); err != nil {
			return trapNoRowsErr(err, planner.ErrTemplateNotFound, "deleting layout cells")
		}

		q = `INSERT INTO day_layout_cell (template_id, weekday, start_period, type, number_of_periods, row_spans)
			VALUES (:template_id, :weekday, :start_period, :type, :number_of_periods, :row_spans)`
		for _, c := range layout.Cells {
			row := cellRow{
				TemplateID:      templateID,
				Weekday:         int(layout.Weekday),
				StartPeriod:     c.StartPeriod,
				Type:            string(c.Type),
				NumberOfPeriods: c.NumberOfPeriods,
				RowSpans:        rowSpans(c.RowSpans),
			}
			if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
				if isForeignKeyViolation(err) {
					return planner.ErrTemplateNotFound
				}
				return errors.Wrapf(err, "inserting cell %d", c.StartPeriod)
			}
		}
		return nil
	})
}
