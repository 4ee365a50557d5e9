package main

import (
	"log"
	"os"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
	logsvc "github.com/edusuite/honoris/services/logger"
	"github.com/edusuite/honoris/storage/database"
	sqlxrepos "github.com/edusuite/honoris/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	appLogger := logsvc.NewRollbarLogger(logger, core.Conf)
	appLogger.Enable(false) // CLI output only

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up services
	academicSvc := academic.NewService(sqlxrepos.NewAcademicRepository(db))
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	gradeSvc := grade.NewService(sqlxrepos.NewGradeRepository(db), academicSvc)
	honorSvc := honor.NewService(
		&database.AppDB{DB: db}, sqlxrepos.NewHonorRepository(db),
		academicSvc, studentSvc, gradeSvc, appLogger,
	)

	// start CLI
	cli := commandLine{
		db:       db,
		honorSvc: honorSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
