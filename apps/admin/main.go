package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/apps/shared"
	"github.com/trezcool/lessonflow/core"
	dummydb "github.com/trezcool/lessonflow/storage/database/dummy"
	sqlxrepos "github.com/trezcool/lessonflow/storage/database/sqlx"
	logsvc "github.com/trezcool/lessonflow/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	cli := commandLine{
		conf:   conf,
		logger: logger,
		out:    os.Stdout,
	}

	// set up DB
	if conf.Database.InMemory {
		db, err := dummydb.Open()
		if err != nil {
			logger.Fatal("opening in-memory database", err)
		}
		cli.termRepo = dummydb.NewTermRepository(db)
	} else {
		db, err := shared.OpenDatabase(conf)
		if err != nil {
			logger.Fatal("setting up database", err)
		}
		defer db.Close()
		cli.db = db.DB
		cli.termRepo = sqlxrepos.NewTermRepository(db)
	}

	// start CLI
	if err := cli.run(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, errHelp) {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
