package planner

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateTemplate(ctx context.Context, tmpl WeekTemplate) (WeekTemplate, error)
		GetTemplate(ctx context.Context, id string) (WeekTemplate, error)
		// QueryTemplates returns all templates ordered by ordering (by name when empty).
		QueryTemplates(ctx context.Context, ordering []core.DBOrdering) ([]WeekTemplate, error)
		// UpdateTemplate replaces the name and periods of a template and drops its day layouts.
		UpdateTemplate(ctx context.Context, tmpl WeekTemplate) (WeekTemplate, error)
		DeleteTemplate(ctx context.Context, id string) error
		GetDayLayout(ctx context.Context, templateID string, weekday time.Weekday) (DayLayout, error)
		// SaveDayLayout stores a layout built from tmpl. It fails with ErrTemplateChanged when the stored
		// template was updated after tmpl was read.
		SaveDayLayout(ctx context.Context, tmpl WeekTemplate, layout DayLayout) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// TemplateOrderingFields are the fields templates can be ordered by.
var TemplateOrderingFields = map[string]bool{"name": true, "created_at": true, "updated_at": true}

func (svc *Service) CreateTemplate(ctx context.Context, nt NewTemplate) (WeekTemplate, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return WeekTemplate{}, err
	}
	now := nowFunc().UTC()
	tmpl := WeekTemplate{
		ID:        uuid.New().String(),
		Name:      nt.Name,
		Periods:   nt.Periods,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tmpl, err := svc.repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		return WeekTemplate{}, nameTaken(err, "creating template")
	}
	return tmpl, nil
}

func (svc *Service) GetTemplate(ctx context.Context, id string) (WeekTemplate, error) {
	return svc.repo.GetTemplate(ctx, id)
}

func (svc *Service) QueryTemplates(ctx context.Context, ordering []core.DBOrdering) ([]WeekTemplate, error) {
	for _, ord := range ordering {
		if !TemplateOrderingFields[ord.Field] {
			return nil, core.NewValidationError(
				errors.New("invalid ordering"),
				core.FieldError{Field: "ordering", Error: "unknown field " + ord.Field},
			)
		}
	}
	return svc.repo.QueryTemplates(ctx, ordering)
}

// UpdateTemplate replaces the name and periods of a template, dropping its stored day layouts.
func (svc *Service) UpdateTemplate(ctx context.Context, id string, nt NewTemplate) (WeekTemplate, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return WeekTemplate{}, err
	}
	tmpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return WeekTemplate{}, err
	}
	tmpl.Name = nt.Name
	tmpl.Periods = nt.Periods
	tmpl.UpdatedAt = nowFunc().UTC()

	if tmpl, err = svc.repo.UpdateTemplate(ctx, tmpl); err != nil {
		return WeekTemplate{}, nameTaken(err, "updating template")
	}
	return tmpl, nil
}

func (svc *Service) DeleteTemplate(ctx context.Context, id string) error {
	return svc.repo.DeleteTemplate(ctx, id)
}

// GetDayLayout returns the stored layout of a school day, or its initial layout when none is stored.
func (svc *Service) GetDayLayout(ctx context.Context, templateID string, weekday time.Weekday) (DayLayout, error) {
	_, _, layout, err := svc.dayLayout(ctx, templateID, weekday)
	return layout, err
}

// ChangeDuration changes the duration of the cell starting at startPeriod and stores the re-flowed layout.
func (svc *Service) ChangeDuration(
	ctx context.Context,
	templateID string,
	weekday time.Weekday,
	startPeriod, newDuration int,
) (DayLayout, error) {
	tmpl, day, layout, err := svc.dayLayout(ctx, templateID, weekday)
	if err != nil {
		return DayLayout{}, err
	}
	if err = layout.ChangeDuration(startPeriod, newDuration, day.Periods); err != nil {
		return DayLayout{}, err
	}
	if err = svc.repo.SaveDayLayout(ctx, tmpl, layout); err != nil {
		if core.IsInvalidOperation(err) || core.IsNotFound(err) {
			return DayLayout{}, err
		}
		return DayLayout{}, errors.Wrap(err, "saving day layout")
	}
	return layout, nil
}

func (svc *Service) dayLayout(
	ctx context.Context,
	templateID string,
	weekday time.Weekday,
) (WeekTemplate, DayTemplate, DayLayout, error) {
	tmpl, err := svc.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return WeekTemplate{}, DayTemplate{}, DayLayout{}, err
	}
	day, err := tmpl.Day(weekday)
	if err != nil {
		return WeekTemplate{}, DayTemplate{}, DayLayout{}, err
	}

	layout, err := svc.repo.GetDayLayout(ctx, templateID, weekday)
	switch {
	case err == nil:
		return tmpl, day, layout, nil
	case errors.Cause(err) == ErrLayoutNotFound:
		return tmpl, day, LayoutDay(day), nil
	default:
		return WeekTemplate{}, DayTemplate{}, DayLayout{}, errors.Wrap(err, "getting day layout")
	}
}

// nameTaken maps ErrTemplateNameExists to a validation error on the name field.
func nameTaken(err error, msg string) error {
	if errors.Cause(err) == ErrTemplateNameExists {
		return core.NewValidationError(ErrTemplateNameExists, core.FieldError{Field: "name", Error: ErrTemplateNameExists.Error()})
	}
	return errors.Wrap(err, msg)
}
