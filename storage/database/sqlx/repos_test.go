package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
	testutil "github.com/trezcool/lessonflow/tests"
)

func TestTermRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	repo := NewTermRepository(db)

	terms := []calendar.SchoolTerm{
		{Number: 1, Start: testutil.Date(t, "2025-02-03"), End: testutil.Date(t, "2025-04-11")},
		{Number: 2, Start: testutil.Date(t, "2025-04-28"), End: testutil.Date(t, "2025-07-04")},
	}
	require.NoError(t, repo.ReplaceTermDates(ctx, 2025, terms))
	require.NoError(t, repo.ReplaceTermDates(ctx, 2026, terms[:1]))

	dates, err := repo.QueryTermDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, terms, dates[2025])
	assert.Len(t, dates[2026], 1)

	// replacing drops the previous terms of the year
	require.NoError(t, repo.ReplaceTermDates(ctx, 2025, terms[1:]))
	dates, err = repo.QueryTermDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, terms[1:], dates[2025])
}

func TestTemplateRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tmpl := planner.WeekTemplate{
		ID:   uuid.New().String(),
		Name: "Standard",
		Periods: []planner.TemplatePeriod{
			{Type: planner.Lesson, StartPeriod: 1, Name: null.StringFrom("Maths"), StartTime: "08:00", EndTime: "08:45"},
			{Type: planner.Break, StartPeriod: 2, StartTime: "08:45", EndTime: "09:00"},
			{Type: planner.Lesson, StartPeriod: 3, StartTime: "09:00", EndTime: "09:45"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	got, err := repo.CreateTemplate(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, tmpl, got)

	t.Run("unique name", func(t *testing.T) {
		dup := tmpl
		dup.ID = uuid.New().String()
		_, err := repo.CreateTemplate(ctx, dup)
		assert.Equal(t, planner.ErrTemplateNameExists, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetTemplate(ctx, uuid.New().String())
		assert.Equal(t, planner.ErrTemplateNotFound, err)
		_, err = repo.GetTemplate(ctx, "not-a-uuid")
		assert.Equal(t, planner.ErrTemplateNotFound, err)
		assert.Equal(t, planner.ErrTemplateNotFound, repo.DeleteTemplate(ctx, uuid.New().String()))
	})

	t.Run("query", func(t *testing.T) {
		other := tmpl
		other.ID = uuid.New().String()
		other.Name = "Exams"
		other.Periods = tmpl.Periods[:1]
		_, err := repo.CreateTemplate(ctx, other)
		require.NoError(t, err)

		tmpls, err := repo.QueryTemplates(ctx, []core.DBOrdering{{Field: "name", Ascending: true}})
		require.NoError(t, err)
		require.Len(t, tmpls, 2)
		assert.Equal(t, "Exams", tmpls[0].Name)
		assert.Len(t, tmpls[0].Periods, 1)
		assert.Len(t, tmpls[1].Periods, 3)

		_, err = repo.QueryTemplates(ctx, []core.DBOrdering{{Field: "id; DROP TABLE week_template"}})
		assert.Error(t, err)

		require.NoError(t, repo.DeleteTemplate(ctx, other.ID))
	})

	t.Run("layouts", func(t *testing.T) {
		_, err := repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		assert.Equal(t, planner.ErrLayoutNotFound, err)

		day, _ := tmpl.Day(time.Monday)
		layout := planner.LayoutDay(day)
		require.NoError(t, layout.ChangeDuration(1, 2, tmpl.Periods))
		require.NoError(t, repo.SaveDayLayout(ctx, tmpl, layout))

		got, err := repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		require.NoError(t, err)
		assert.Equal(t, layout, got)

		missing := tmpl
		missing.ID = uuid.New().String()
		assert.Equal(t, planner.ErrTemplateNotFound, repo.SaveDayLayout(ctx, missing, layout))
	})

	t.Run("update", func(t *testing.T) {
		updated := tmpl
		updated.Name = "Renamed"
		updated.Periods = tmpl.Periods[:2]
		updated.UpdatedAt = now.Add(time.Minute)

		got, err := repo.UpdateTemplate(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		// the update drops the stored layouts in the same transaction
		_, err = repo.GetDayLayout(ctx, tmpl.ID, time.Monday)
		assert.Equal(t, planner.ErrLayoutNotFound, err)

		day, _ := tmpl.Day(time.Monday)
		assert.Equal(t, planner.ErrTemplateChanged, repo.SaveDayLayout(ctx, tmpl, planner.LayoutDay(day)))

		missing := updated
		missing.ID = uuid.New().String()
		_, err = repo.UpdateTemplate(ctx, missing)
		assert.Equal(t, planner.ErrTemplateNotFound, err)
	})
}
