package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/edusuite/honoris/core/student"
)

func (cli *commandLine) generateHonors(levelID, schoolYear, section, department, course string) error {
	filter := student.QueryFilter{
		Section:    section,
		Department: department,
		Course:     course,
	}
	summary, err := cli.honorSvc.Generate(context.Background(), levelID, schoolYear, filter)
	if err != nil {
		return err
	}

	fmt.Printf("Processed: %d\nQualified: %d\nSkipped:   %d\n", summary.Processed, summary.Qualified, summary.Skipped)
	if len(summary.SkippedID) > 0 {
		fmt.Printf("Skipped students: %s\n", strings.Join(summary.SkippedID, ", "))
	}
	return nil
}
