package planner

import (
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/lessonflow/core"
)

var (
	periodOrderTag  = "periodorder"
	periodOrderText = "start periods must strictly increase"

	periodEndTag  = "periodend"
	periodEndText = "every period must end after it starts"
)

// InitValidators registers the planner validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(templateStructValidation, NewTemplate{})
	core.RegisterCustomTranslation(validate, translator, periodOrderTag, periodOrderText)
	core.RegisterCustomTranslation(validate, translator, periodEndTag, periodEndText)
}

// Validate validates the template and cleans its name.
func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

func templateStructValidation(sl validator.StructLevel) {
	nt, ok := sl.Current().Interface().(NewTemplate)
	if !ok {
		return
	}
	validatePeriodOrder(nt.Periods, sl)
	validatePeriodTimes(nt.Periods, sl)
}

// validatePeriodOrder checks that StartPeriod strictly increases across the template.
func validatePeriodOrder(periods []TemplatePeriod, sl validator.StructLevel) {
	for i := 1; i < len(periods); i++ {
		if periods[i].StartPeriod <= periods[i-1].StartPeriod {
			sl.ReportError(periods, "periods", "Periods", periodOrderTag, fmt.Sprint(i))
			return
		}
	}
}

func validatePeriodTimes(periods []TemplatePeriod, sl validator.StructLevel) {
	for _, p := range periods {
		start, sErr := time.Parse(core.WallClockLayout, p.StartTime)
		end, eErr := time.Parse(core.WallClockLayout, p.EndTime)
		if sErr != nil || eErr != nil {
			continue // reported by the wallclock tag
		}
		if !end.After(start) {
			sl.ReportError(periods, "periods", "Periods", periodEndTag, fmt.Sprint(p.StartPeriod))
			return
		}
	}
}
