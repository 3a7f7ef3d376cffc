package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/lessonflow/apps/api/echo"
	"github.com/trezcool/lessonflow/apps/shared"
	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
	logsvc "github.com/trezcool/lessonflow/services/logger"
	"github.com/trezcool/lessonflow/storage/termfile"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	storage, err := shared.OpenStorage(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = storage.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up services
	calSvc, err := calendar.NewService(ctx, storage.TermRepo, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading term dates: %v", err), err)
	}

	translator := shared.NewTranslator()
	validate := shared.NewValidate(translator)
	plnSvc := planner.NewService(storage.TemplateRepo, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if conf.CalendarFile != "" {
		dates, err := termfile.Load(conf.CalendarFile)
		if err != nil {
			logger.Fatal(fmt.Sprintf("reading %s: %v", conf.CalendarFile, err), err)
		}
		if err = termfile.Apply(ctx, calSvc, dates); err != nil {
			logger.Fatal(fmt.Sprintf("importing %s: %v", conf.CalendarFile, err), err)
		}
		if err = termfile.Watch(ctx, conf.CalendarFile, calSvc, logger); err != nil {
			logger.Error(fmt.Sprintf("watching %s: %v", conf.CalendarFile, err), err)
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("calendar_years", expvar.Func(func() interface{} { return calSvc.Years() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.Deps{
			Conf:        conf,
			Logger:      logger,
			CalendarSvc: calSvc,
			PlannerSvc:  plnSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
