package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rushteam/courserec/core"
)

var testHeader = []string{
	"course_id", "user_id", "course_name", "instructor",
	"course_duration_hours", "course_price", "difficulty_level",
	"certification_offered", "study_material_available", "feedback_score",
	"enrollment_numbers", "time_spent_hours", "previous_courses_taken", "rating",
}

var testRecords = [][]string{
	{"1", "10", "Go Basics", "Ann", "10", "100", "Beginner", "Yes", "No", "4.0", "1000", "5", "1", "3"},
	{"2", "10", "Go Advanced", "Bob", "20", "300", "Advanced", "No", "Yes", "4.5", "500", "15", "3", "5"},
	{"1", "11", "Go Basics", "Ann", "30", "200", "Expert", "", "Yes", "", "1500", "25", "2", "4"},
}

func writeCSV(t *testing.T, header []string, records [][]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, ",") + "\n")
	for _, r := range records {
		b.WriteString(strings.Join(r, ",") + "\n")
	}
	path := filepath.Join(t.TempDir(), "courses.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestRead_NotFound(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	if !core.IsDataSourceNotFound(err) {
		t.Fatalf("Read() error = %v, want DATA_SOURCE_NOT_FOUND", err)
	}
}

func TestRead_MissingColumn(t *testing.T) {
	header := append([]string{}, testHeader[:len(testHeader)-1]...)
	records := [][]string{testRecords[0][:len(testRecords[0])-1]}
	_, err := Read(writeCSV(t, header, records))
	if !core.IsSchemaError(err) {
		t.Fatalf("Read() error = %v, want SCHEMA_ERROR", err)
	}
	if !strings.Contains(err.Error(), "rating") {
		t.Errorf("error should name the missing column, got %v", err)
	}
}

func TestRead_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !core.IsSchemaError(err) {
		t.Fatalf("Read() error = %v, want SCHEMA_ERROR", err)
	}
}

func TestLoad_CSV(t *testing.T) {
	table, err := Load(writeCSV(t, testHeader, testRecords))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Rows) != len(testRecords) {
		t.Fatalf("rows = %d, want %d", len(table.Rows), len(testRecords))
	}

	first := table.Rows[0]
	if first.UserID != 10 || first.Course.ID != 1 {
		t.Errorf("row identity changed: %+v", first)
	}
	if first.Course.Name != "Go Basics" || first.Course.Instructor != "Ann" {
		t.Errorf("descriptive fields = %q/%q", first.Course.Name, first.Course.Instructor)
	}

	// 类别编码
	if got := table.Rows[1].Course.Difficulty; got != 3 {
		t.Errorf("Advanced difficulty = %v, want 3", got)
	}
	if got := table.Rows[2].Course.Difficulty; got != 0 {
		t.Errorf("unmapped difficulty = %v, want 0", got)
	}
	if got := table.Rows[2].Course.Certification; got != 0 {
		t.Errorf("missing certification = %v, want 0", got)
	}
	if got := table.Rows[1].Course.StudyMaterial; got != 1 {
		t.Errorf("study material Yes = %v, want 1", got)
	}

	// Min-Max 归一化
	wantDuration := []float64{0, 0.5, 1}
	for i, want := range wantDuration {
		if got := table.Rows[i].Course.DurationHours; math.Abs(got-want) > 1e-12 {
			t.Errorf("row %d duration = %v, want %v", i, got, want)
		}
	}
	// feedback 缺失先填 0 再参与归一化：列为 {4.0, 4.5, 0}
	if got := table.Rows[2].Course.FeedbackScore; got != 0 {
		t.Errorf("missing feedback normalized = %v, want 0", got)
	}
	if got := table.Rows[1].Course.FeedbackScore; got != 1 {
		t.Errorf("max feedback normalized = %v, want 1", got)
	}
	if got := table.Rows[0].Course.Rating; got != 0 {
		t.Errorf("min rating normalized = %v, want 0", got)
	}
}

func TestPrepare_ConstantColumn(t *testing.T) {
	records := [][]string{
		{"1", "10", "A", "X", "10", "100", "Beginner", "Yes", "Yes", "4", "10", "1", "1", "5"},
		{"2", "11", "B", "Y", "10", "100", "Beginner", "Yes", "Yes", "4", "10", "1", "1", "5"},
	}
	raw, err := FromRecords(testHeader, records)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	table, err := Prepare(raw)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	for _, r := range table.Rows {
		if r.Course.DurationHours != 0 || r.Course.Price != 0 || r.Course.Rating != 0 {
			t.Errorf("constant columns should normalize to 0, got %+v", r.Course)
		}
	}
}

func TestPrepare_NonFiniteCellIsMissing(t *testing.T) {
	records := [][]string{
		{"1", "10", "A", "X", "10", "100", "Beginner", "Yes", "Yes", "4", "10", "1", "1", "5"},
		{"2", "11", "B", "Y", "20", "Inf", "Beginner", "Yes", "Yes", "-Inf", "10", "1", "1", "4"},
		{"3", "12", "C", "Z", "30", "300", "Beginner", "Yes", "Yes", "NaN", "10", "1", "1", "3"},
	}
	raw, err := FromRecords(testHeader, records)
	if err != nil {
		t.Fatal(err)
	}
	table, err := Prepare(raw)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	wantPrice := []float64{1.0 / 3, 0, 1}
	for i, r := range table.Rows {
		if math.Abs(r.Course.Price-wantPrice[i]) > 1e-9 {
			t.Errorf("row %d price = %v, want %v", i, r.Course.Price, wantPrice[i])
		}
		for j, v := range r.Course.Vector() {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 3 {
				t.Errorf("row %d feature %d = %v, want finite normalized value", i, j, v)
			}
		}
	}
}

func TestPrepare_InvalidID(t *testing.T) {
	records := [][]string{
		{"abc", "10", "A", "X", "10", "100", "Beginner", "Yes", "Yes", "4", "10", "1", "1", "5"},
	}
	raw, err := FromRecords(testHeader, records)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Prepare(raw)
	if !core.IsSchemaError(err) {
		t.Fatalf("Prepare() error = %v, want SCHEMA_ERROR", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should carry the line number, got %v", err)
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(testHeader))
	for i, h := range testHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, rec := range testRecords {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "courses.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Rows) != len(testRecords) {
		t.Fatalf("rows = %d, want %d", len(table.Rows), len(testRecords))
	}
	if table.Rows[1].Course.Name != "Go Advanced" {
		t.Errorf("name = %q", table.Rows[1].Course.Name)
	}
}
