package shared

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
	"github.com/trezcool/lessonflow/storage/database"
	dummydb "github.com/trezcool/lessonflow/storage/database/dummy"
	sqlxrepos "github.com/trezcool/lessonflow/storage/database/sqlx"
)

// Storage holds the repositories of the configured backend.
type Storage struct {
	DB           *sqlx.DB // nil when in memory
	TermRepo     calendar.Repository
	TemplateRepo planner.Repository
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidate returns a validator with every application validator registered.
func NewValidate(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	planner.InitValidators(validate, translator)
	return validate
}

// OpenStorage opens the in-memory repositories when conf.Database.InMemory, else a migrated postgres database.
func OpenStorage(conf *core.Config) (*Storage, error) {
	if conf.Database.InMemory {
		db, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening in-memory database")
		}
		return &Storage{
			TermRepo:     dummydb.NewTermRepository(db),
			TemplateRepo: dummydb.NewTemplateRepository(db),
		}, nil
	}

	db, err := OpenDatabase(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{
		DB:           db,
		TermRepo:     sqlxrepos.NewTermRepository(db),
		TemplateRepo: sqlxrepos.NewTemplateRepository(db),
	}, nil
}

// OpenDatabase creates the configured postgres database if needed and connects to it, without migrating.
func OpenDatabase(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	return database.Open(conf)
}

func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
