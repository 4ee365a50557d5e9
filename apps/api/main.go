package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/edusuite/honoris/apps/api/echo"
	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
	logsvc "github.com/edusuite/honoris/services/logger"
	"github.com/edusuite/honoris/storage/database"
	sqlxrepos "github.com/edusuite/honoris/storage/database/sqlx"
)

func main() {
	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	appDB := &database.AppDB{DB: db}

	// set up services
	academicSvc := academic.NewService(sqlxrepos.NewAcademicRepository(db))
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	gradeSvc := grade.NewService(sqlxrepos.NewGradeRepository(db), academicSvc)
	honorSvc := honor.NewService(appDB, sqlxrepos.NewHonorRepository(db), academicSvc, studentSvc, gradeSvc, logger)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	server := echoapi.NewServer(&echoapi.Options{
		Addr:        core.Conf.Server.Addr,
		Logger:      logger,
		AcademicSvc: academicSvc,
		StudentSvc:  studentSvc,
		GradeSvc:    gradeSvc,
		HonorSvc:    honorSvc,
	})

	go server.Start()

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
