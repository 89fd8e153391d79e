// Package exportsvc renders submissions into spreadsheet workbooks for the
// professor-facing export endpoint.
package exportsvc

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/darasahq/darasa/core/analytics"
	"github.com/darasahq/darasa/core/submission"
)

const sheetName = "Submissions"

var headers = []string{"Student", "Course", "Subject", "Status", "Grade", "Submitted", "Graded", "Late"}

// SubmissionsWorkbook renders the given submissions into an xlsx workbook.
// Lateness is computed against each course deadline.
func SubmissionsWorkbook(subs []submission.Submission) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	if err = f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "dropping default sheet")
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, "locating header cell")
		}
		if err = f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
	}

	for i, sub := range subs {
		var subject string
		if name, ok := sub.SubjectName(); ok {
			subject = name
		}
		var courseTitle string
		if sub.Course != nil {
			courseTitle = sub.Course.Title
		}
		grade := ""
		if sub.Grade.Valid {
			grade = fmt.Sprintf("%.1f", sub.Grade.Float64)
		}
		submitted := ""
		if sub.SubmittedAt.Valid {
			submitted = sub.SubmittedAt.Time.Format("02 Jan 2006 15:04")
		}
		graded := ""
		if sub.GradedAt.Valid {
			graded = sub.GradedAt.Time.Format("02 Jan 2006 15:04")
		}
		lateCell := "No"
		if late, days := analytics.Lateness(sub); late {
			lateCell = fmt.Sprintf("Yes (%dd)", days)
		}

		row := []interface{}{sub.StudentName, courseTitle, subject, sub.Status, grade, submitted, graded, lateCell}
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, errors.Wrap(err, "locating cell")
			}
			if err = f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, errors.Wrap(err, "writing row")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "rendering workbook")
	}
	return buf, nil
}
