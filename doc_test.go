package courserec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/dataset"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	body := strings.Join(dataset.RequiredColumns, ",") + "\n" +
		"1,10,Go,Ann,10,100,Beginner,Yes,Yes,4.5,1000,5,1,5\n" +
		"2,10,SQL,Bob,20,50,Advanced,No,Yes,3.5,300,8,2,3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	rec, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	course := int64(1)
	got, err := rec.Recommend(context.Background(), Query{CourseID: &course, TopN: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CourseID != 1 || got[0].CourseName != "Go" {
		t.Errorf("Recommend() = %+v", got)
	}

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx")); !core.IsDataSourceNotFound(err) {
		t.Errorf("Open(missing) error = %v, want data source not found", err)
	}
}
