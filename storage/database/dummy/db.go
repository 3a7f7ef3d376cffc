package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
)

type (
	DB struct {
		term     *termTable
		template *templateTable
	}

	termTable struct {
		sync.RWMutex
		table map[int][]calendar.SchoolTerm
	}

	templateTable struct {
		sync.RWMutex
		table   map[string]*planner.WeekTemplate
		layouts map[string]map[time.Weekday]planner.DayLayout // {templateID: {weekday: layout}}
	}
)

func Open() (*DB, error) {
	db := &DB{
		term: &termTable{table: make(map[int][]calendar.SchoolTerm)},
		template: &templateTable{
			table:   make(map[string]*planner.WeekTemplate),
			layouts: make(map[string]map[time.Weekday]planner.DayLayout),
		},
	}
	return db, nil
}
