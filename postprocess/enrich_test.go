package postprocess

import (
	"context"
	"testing"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/dataset"
	"github.com/rushteam/courserec/model"
)

func TestEnrichNode_Process(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Row{
		{UserID: 1, Course: core.Course{ID: 1, Name: "Go", Instructor: "Ann", Rating: 0.4}},
		{UserID: 2, Course: core.Course{ID: 1, Name: "Go (dup)", Instructor: "Zed", Rating: 0.9}},
		{UserID: 1, Course: core.Course{ID: 2, Name: "Rust", Instructor: "Bob", Rating: 1}},
	}}
	snap, err := model.Build(context.Background(), table, model.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := model.NewContext(context.Background(), snap)

	in := []*core.Item{core.NewItem(2), core.NewItem(99), core.NewItem(1)}
	out, err := (&EnrichNode{}).Process(ctx, &core.RecommendContext{}, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	recs := Records(append(out, out[1]))
	want := []core.CourseRecord{
		{CourseID: 2, CourseName: "Rust", Instructor: "Bob", Rating: 1},
		{CourseID: 1, CourseName: "Go", Instructor: "Ann", Rating: 0.4},
	}
	if len(recs) != len(want) {
		t.Fatalf("Records() = %+v, want %+v", recs, want)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("Records()[%d] = %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestEnrichNode_NoSnapshot(t *testing.T) {
	if _, err := (&EnrichNode{}).Process(context.Background(), nil, []*core.Item{core.NewItem(1)}); err == nil {
		t.Error("Process() without snapshot should fail")
	}
}
