package services

import (
	"fmt"
	"io"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/xuri/excelize/v2"
)

const candidatesSheet = "Candidates"

var exportHeaders = []string{
	"Name", "Email", "Stage", "Applied", "Availability", "Source",
	"Score", "Summary", "Intro (s)", "Manual Input", "Resume", "Video",
}

// ExportCandidates writes a job's candidates as an xlsx workbook.
func ExportCandidates(w io.Writer, job *models.Job, candidates []models.Candidate) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", candidatesSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(candidatesSheet, "A", "B", 28)
	f.SetColWidth(candidatesSheet, "C", "G", 15)
	f.SetColWidth(candidatesSheet, "H", "H", 60)
	f.SetColWidth(candidatesSheet, "I", "L", 14)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, c := range candidates {
		row := i + 2
		f.SetCellValue(candidatesSheet, fmt.Sprintf("A%d", row), c.Name)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("B%d", row), c.Email)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("C%d", row), c.Stage)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("D%d", row), c.AppliedAt)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("E%d", row), c.Availability)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("F%d", row), c.Source)
		if c.ScreeningScore != nil {
			f.SetCellValue(candidatesSheet, fmt.Sprintf("G%d", row), *c.ScreeningScore)
		}
		f.SetCellValue(candidatesSheet, fmt.Sprintf("H%d", row), c.ScreeningSummary)
		f.SetCellStyle(candidatesSheet, fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), wrapStyle)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("I%d", row), c.Metrics.IntroVideoDuration)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("J%d", row), c.ManualInput)

		setLink(f, fmt.Sprintf("K%d", row), "Open resume", c.ResumeURL, linkStyle)
		setLink(f, fmt.Sprintf("L%d", row), "Watch intro", c.VideoURL, linkStyle)
	}

	if len(candidates) > 0 {
		f.AutoFilter(candidatesSheet, fmt.Sprintf("A1:L%d", len(candidates)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(candidatesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if job != nil {
		f.SetDocProps(&excelize.DocProperties{
			Title:   job.Title,
			Created: time.Now().UTC().Format(time.RFC3339),
		})
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setLink(f *excelize.File, cell, label, url string, style int) {
	if url == "" {
		return
	}
	f.SetCellValue(candidatesSheet, cell, label)
	f.SetCellHyperLink(candidatesSheet, cell, url, "External")
	f.SetCellStyle(candidatesSheet, cell, cell, style)
}
