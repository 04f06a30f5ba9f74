package services

import (
	"bytes"
	"testing"

	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestExportCandidates(t *testing.T) {
	score := 87.5
	candidates := []models.Candidate{
		{
			Name: "Ada Lovelace", Email: "ada@example.com", Stage: models.StageNew,
			AppliedAt: "2026-03-01T10:00:00Z", ScreeningScore: &score, ScreeningSummary: "Strong.",
			ResumeURL: "https://assets/ada.pdf", VideoURL: "https://assets/ada.webm",
			Metrics: models.CandidateMetrics{IntroVideoDuration: 7},
		},
		{
			Name: "Grace Hopper", Email: "grace@example.com", Stage: models.StageNew,
			AppliedAt: "2026-03-02T10:00:00Z", ManualInput: true,
		},
	}

	var buf bytes.Buffer
	if err := ExportCandidates(&buf, &models.Job{Title: "Backend Engineer"}, candidates); err != nil {
		t.Fatalf("ExportCandidates() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(candidatesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Name" || rows[1][0] != "Ada Lovelace" || rows[2][1] != "grace@example.com" {
		t.Errorf("unexpected rows: %v", rows)
	}

	if v, _ := f.GetCellValue(candidatesSheet, "G2"); v != "87.5" {
		t.Errorf("score cell = %q, want 87.5", v)
	}
	if v, _ := f.GetCellValue(candidatesSheet, "G3"); v != "" {
		t.Errorf("unscored candidate has score %q", v)
	}
	if ok, target, _ := f.GetCellHyperLink(candidatesSheet, "K2"); !ok || target != "https://assets/ada.pdf" {
		t.Errorf("resume link = %v %q", ok, target)
	}
	if ok, _, _ := f.GetCellHyperLink(candidatesSheet, "K3"); ok {
		t.Errorf("link set for candidate without resume url")
	}
}

func TestExportCandidatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCandidates(&buf, nil, nil); err != nil {
		t.Fatalf("ExportCandidates() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty workbook not written")
	}
}
