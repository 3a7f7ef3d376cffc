package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
)

func TestTermRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewTermRepository(db)

	terms := []calendar.SchoolTerm{
		{Number: 1, Start: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, repo.ReplaceTermDates(ctx, 2025, terms))

	// callers cannot mutate stored dates
	terms[0].Number = 9
	dates, err := repo.QueryTermDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates[2025], 1)
	assert.Equal(t, 1, dates[2025][0].Number)

	dates[2025][0].Number = 7
	again, _ := repo.QueryTermDates(ctx)
	assert.Equal(t, 1, again[2025][0].Number)
}

func TestTemplateRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewTemplateRepository(db)

	now := time.Now().UTC()
	tmpl := planner.WeekTemplate{
		ID:        "t1",
		Name:      "Standard",
		Periods:   []planner.TemplatePeriod{{Type: planner.Lesson, StartPeriod: 1, StartTime: "08:00", EndTime: "08:45"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = repo.CreateTemplate(ctx, tmpl)
	require.NoError(t, err)

	t.Run("unique name", func(t *testing.T) {
		dup := tmpl
		dup.ID = "t2"
		dup.Name = "STANDARD"
		_, err := repo.CreateTemplate(ctx, dup)
		assert.Equal(t, planner.ErrTemplateNameExists, err)
	})

	t.Run("ordering", func(t *testing.T) {
		other := tmpl
		other.ID = "t0"
		other.Name = "Exams"
		other.CreatedAt = now.Add(time.Hour)
		_, err := repo.CreateTemplate(ctx, other)
		require.NoError(t, err)

		tmpls, err := repo.QueryTemplates(ctx, nil)
		require.NoError(t, err)
		require.Len(t, tmpls, 2)
		assert.Equal(t, "Exams", tmpls[0].Name)

		tmpls, err = repo.QueryTemplates(ctx, []core.DBOrdering{{Field: "created_at", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, "Standard", tmpls[0].Name)

		require.NoError(t, repo.DeleteTemplate(ctx, other.ID))
	})

	t.Run("layouts", func(t *testing.T) {
		_, err := repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		assert.Equal(t, planner.ErrLayoutNotFound, err)

		day, _ := tmpl.Day(time.Monday)
		layout := planner.LayoutDay(day)
		require.NoError(t, repo.SaveDayLayout(ctx, tmpl, layout))

		got, err := repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		require.NoError(t, err)
		assert.Equal(t, layout, got)

		got.Cells[0].RowSpans[0].End = 99
		again, _ := repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		assert.Equal(t, layout, again)

		missing := tmpl
		missing.ID = "missing"
		assert.Equal(t, planner.ErrTemplateNotFound, repo.SaveDayLayout(ctx, missing, layout))
	})

	t.Run("update and delete", func(t *testing.T) {
		updated := tmpl
		updated.Name = "Renamed"
		updated.UpdatedAt = tmpl.UpdatedAt.Add(time.Minute)
		got, err := repo.UpdateTemplate(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)

		// layouts are dropped with the update, and layouts built from the old template are refused
		_, err = repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		assert.Equal(t, planner.ErrLayoutNotFound, err)
		day, _ := tmpl.Day(time.Monday)
		assert.Equal(t, planner.ErrTemplateChanged, repo.SaveDayLayout(ctx, tmpl, planner.LayoutDay(day)))
		require.NoError(t, repo.SaveDayLayout(ctx, got, planner.LayoutDay(day)))

		missing := tmpl
		missing.ID = "missing"
		_, err = repo.UpdateTemplate(ctx, missing)
		assert.Equal(t, planner.ErrTemplateNotFound, err)

		require.NoError(t, repo.DeleteTemplate(ctx, tmpl.ID))
		_, err = repo.GetTemplate(ctx, tmpl.ID)
		assert.Equal(t, planner.ErrTemplateNotFound, err)
		assert.Equal(t, planner.ErrTemplateNotFound, repo.DeleteTemplate(ctx, tmpl.ID))
	})
}
