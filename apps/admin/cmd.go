package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edusuite/honoris/core/honor"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	honorSvc *honor.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  generatehonors -level LEVEL_ID [-year YYYY-YYYY] [-section S] [-department D] [-course C] - compute honor results")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	generateCmd := flag.NewFlagSet("generatehonors", flag.ExitOnError)
	generateLevel := generateCmd.String("level", "", "The academic level id to generate honors for.")
	generateYear := generateCmd.String("year", "", "The school year (YYYY-YYYY). Defaults to the active school year.")
	generateSection := generateCmd.String("section", "", "Restrict to a section.")
	generateDepartment := generateCmd.String("department", "", "Restrict to a department.")
	generateCourse := generateCmd.String("course", "", "Restrict to a course.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "generatehonors":
		if err := generateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *generateLevel == "" {
			generateCmd.Usage()
			return errHelp
		}
		return cli.generateHonors(
			*generateLevel, *generateYear, *generateSection, *generateDepartment, *generateCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}
