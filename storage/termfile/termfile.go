// Package termfile reads and writes term dates as YAML:
//
//	years:
//	  2025:
//	    - term: 1
//	      start: 2025-02-03
//	      end: 2025-04-11
package termfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
)

type (
	document struct {
		Years map[int][]term `yaml:"years"`
	}

	term struct {
		Number int    `yaml:"term"`
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
	}

	// Saver persists the term list of a year.
	Saver interface {
		SaveTermDates(ctx context.Context, year int, terms []calendar.SchoolTerm) error
	}
)

// Decode reads term dates keyed by calendar year.
func Decode(r io.Reader) (map[int][]calendar.SchoolTerm, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return map[int][]calendar.SchoolTerm{}, nil
		}
		return nil, errors.Wrap(err, "decoding term dates")
	}

	dates := make(map[int][]calendar.SchoolTerm, len(doc.Years))
	for year, terms := range doc.Years {
		dates[year] = make([]calendar.SchoolTerm, 0, len(terms)) // an emptied year is kept for validation
		for _, t := range terms {
			start, err := core.ParseDate(t.Start)
			if err != nil {
				return nil, errors.Wrapf(err, "%d term %d: start", year, t.Number)
			}
			end, err := core.ParseDate(t.End)
			if err != nil {
				return nil, errors.Wrapf(err, "%d term %d: end", year, t.Number)
			}
			dates[year] = append(dates[year], calendar.SchoolTerm{Number: t.Number, Start: start, End: end})
		}
	}
	return dates, nil
}

// Load reads the term dates file at path.
func Load(path string) (map[int][]calendar.SchoolTerm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening term dates file")
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes term dates, years and terms in ascending order.
func Encode(w io.Writer, dates map[int][]calendar.SchoolTerm) error {
	doc := document{Years: make(map[int][]term, len(dates))}
	for year, terms := range dates {
		sorted := append([]calendar.SchoolTerm(nil), terms...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

		out := make([]term, 0, len(sorted))
		for _, t := range sorted {
			out = append(out, term{Number: t.Number, Start: core.FormatDate(t.Start), End: core.FormatDate(t.End)})
		}
		doc.Years[year] = out
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding term dates")
	}
	return enc.Close()
}

// Save writes the term dates file at path.
func Save(path string, dates map[int][]calendar.SchoolTerm) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating term dates file")
	}
	if err = Encode(f, dates); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Apply saves every year of dates in ascending order, stopping at the first failure.
func Apply(ctx context.Context, saver Saver, dates map[int][]calendar.SchoolTerm) error {
	years := make([]int, 0, len(dates))
	for year := range dates {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		if err := saver.SaveTermDates(ctx, year, dates[year]); err != nil {
			return errors.Wrap(err, fmt.Sprintf("saving %d term dates", year))
		}
	}
	return nil
}
