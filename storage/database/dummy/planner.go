package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/planner"
)

type templateRepository struct {
	db *templateTable
}

var _ planner.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db *DB) planner.Repository {
	return &templateRepository{db: db.template}
}

// nameExists must be called with the lock held.
func (repo *templateRepository) nameExists(name, excludedID string) bool {
	for id, tmpl := range repo.db.table {
		if id != excludedID && strings.EqualFold(tmpl.Name, name) {
			return true
		}
	}
	return false
}

func (repo *templateRepository) CreateTemplate(_ context.Context, tmpl planner.WeekTemplate) (planner.WeekTemplate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameExists(tmpl.Name, "") {
		return planner.WeekTemplate{}, planner.ErrTemplateNameExists
	}
	tmpl = copyTemplate(tmpl)
	repo.db.table[tmpl.ID] = &tmpl
	return copyTemplate(tmpl), nil
}

func (repo *templateRepository) GetTemplate(_ context.Context, id string) (planner.WeekTemplate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tmpl, ok := repo.db.table[id]; ok {
		return copyTemplate(*tmpl), nil
	}
	return planner.WeekTemplate{}, planner.ErrTemplateNotFound
}

func (repo *templateRepository) QueryTemplates(_ context.Context, ordering []core.DBOrdering) ([]planner.WeekTemplate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tmpls := make([]planner.WeekTemplate, 0, len(repo.db.table))
	for _, tmpl := range repo.db.table {
		tmpls = append(tmpls, copyTemplate(*tmpl))
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(tmpls, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareTemplates(tmpls[i], tmpls[j], ord.Field)
			if c == 0 {
				continue
			}
			return (c < 0) == ord.Ascending
		}
		return tmpls[i].ID < tmpls[j].ID
	})
	return tmpls, nil
}

func compareTemplates(a, b planner.WeekTemplate, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func (repo *templateRepository) UpdateTemplate(_ context.Context, tmpl planner.WeekTemplate) (planner.WeekTemplate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[tmpl.ID]; !ok {
		return planner.WeekTemplate{}, planner.ErrTemplateNotFound
	}
	if repo.nameExists(tmpl.Name, tmpl.ID) {
		return planner.WeekTemplate{}, planner.ErrTemplateNameExists
	}
	tmpl = copyTemplate(tmpl)
	repo.db.table[tmpl.ID] = &tmpl
	delete(repo.db.layouts, tmpl.ID)
	return copyTemplate(tmpl), nil
}

func (repo *templateRepository) DeleteTemplate(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return planner.ErrTemplateNotFound
	}
	delete(repo.db.table, id)
	delete(repo.db.layouts, id)
	return nil
}

func (repo *templateRepository) GetDayLayout(_ context.Context, templateID string, weekday time.Weekday) (planner.DayLayout, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if layout, ok := repo.db.layouts[templateID][weekday]; ok {
		return copyLayout(layout), nil
	}
	return planner.DayLayout{}, planner.ErrLayoutNotFound
}

func (repo *templateRepository) SaveDayLayout(_ context.Context, tmpl planner.WeekTemplate, layout planner.DayLayout) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[tmpl.ID]
	if !ok {
		return planner.ErrTemplateNotFound
	}
	if !stored.UpdatedAt.Equal(tmpl.UpdatedAt) {
		return planner.ErrTemplateChanged
	}
	days, ok := repo.db.layouts[tmpl.ID]
	if !ok {
		days = make(map[time.Weekday]planner.DayLayout)
		repo.db.layouts[tmpl.ID] = days
	}
	days[layout.Weekday] = copyLayout(layout)
	return nil
}

func copyTemplate(tmpl planner.WeekTemplate) planner.WeekTemplate {
	tmpl.Periods = append([]planner.TemplatePeriod(nil), tmpl.Periods...)
	return tmpl
}

func copyLayout(layout planner.DayLayout) planner.DayLayout {
	cells := make([]planner.GridCell, len(layout.Cells))
	for i, c := range layout.Cells {
		c.RowSpans = append([]planner.RowSpan(nil), c.RowSpans...)
		cells[i] = c
	}
	layout.Cells = cells
	return layout
}
