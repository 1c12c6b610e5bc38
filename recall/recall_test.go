package recall

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/dataset"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pkg/utils"
)

func course(id int64, duration, price, rating float64) core.Course {
	return core.Course{ID: id, Name: "course", DurationHours: duration, Price: price, Rating: rating}
}

// testSnapshot：
//   - 课程 1、2 特征完全相同，课程 3 不同
//   - 用户 10、11 评分模式相同，用户 12 只评了课程 3
func testSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	table := &dataset.Table{Rows: []dataset.Row{
		{UserID: 10, Course: course(1, 0.5, 0.5, 1)},
		{UserID: 10, Course: course(2, 0.5, 0.5, 0.5)},
		{UserID: 11, Course: course(1, 0.5, 0.5, 1)},
		{UserID: 11, Course: course(2, 0.5, 0.5, 0.5)},
		{UserID: 11, Course: course(3, 1, 0, 0.8)},
		{UserID: 12, Course: course(3, 1, 0, 0.8)},
	}}
	snap, err := model.Build(context.Background(), table, model.BuildOptions{})
	if err != nil {
		t.Fatalf("model.Build() error = %v", err)
	}
	return snap
}

func TestContentRecall_Scores(t *testing.T) {
	snap := testSnapshot(t)
	r := &ContentRecall{}

	scores := r.Scores(snap, 1)
	if len(scores) != 3 {
		t.Fatalf("Scores() len = %d, want 3", len(scores))
	}
	if scores[1] != 1 {
		t.Errorf("self score = %v, want 1", scores[1])
	}
	// 课程 1 与课程 2 仅 rating 列不同：(0.5,0.5,1) vs (0.5,0.5,0.5)
	if scores[2] <= 0.9 || scores[2] > 1 {
		t.Errorf("similar course score = %v", scores[2])
	}
	if scores[3] >= scores[2] {
		t.Errorf("dissimilar course should rank lower: %v >= %v", scores[3], scores[2])
	}

	if got := r.Scores(snap, 999); len(got) != 0 {
		t.Errorf("unknown course Scores() = %v, want empty", got)
	}
}

func TestContentRecall_IdenticalFeatures(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Row{
		{UserID: 1, Course: course(1, 0.3, 0.7, 0.5)},
		{UserID: 1, Course: course(2, 0.3, 0.7, 0.5)},
	}}
	snap, err := model.Build(context.Background(), table, model.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	scores := (&ContentRecall{}).Scores(snap, 1)
	if math.Abs(scores[2]-1) > 1e-9 {
		t.Errorf("identical features score = %v, want ≈1", scores[2])
	}
}

func TestUserBasedCF_Scores(t *testing.T) {
	snap := testSnapshot(t)
	r := &UserBasedCF{}

	scores := r.Scores(snap, 10)
	// 邻居：11（相似度 <1 但 >0），12（与 10 无共同课程，相似度 0）
	sim11, _ := snap.Similarity.Get(10, 11)
	if sim11 <= 0 {
		t.Fatalf("sim(10,11) = %v, want > 0", sim11)
	}
	want1 := sim11 * 1
	if math.Abs(scores[1]-want1) > 1e-12 {
		t.Errorf("scores[1] = %v, want %v", scores[1], want1)
	}
	want3 := sim11*0.8 + 0*0.8
	if math.Abs(scores[3]-want3) > 1e-12 {
		t.Errorf("scores[3] = %v, want %v", scores[3], want3)
	}

	if got := r.Scores(snap, 999); len(got) != 0 {
		t.Errorf("unknown user Scores() = %v, want empty", got)
	}
}

func TestUserBasedCF_NeverUsesSelf(t *testing.T) {
	// 用户 1 是唯一评过课程 5 的人；若把自己算作邻居，课程 5 会得分
	table := &dataset.Table{Rows: []dataset.Row{
		{UserID: 1, Course: course(5, 0, 0, 1)},
		{UserID: 1, Course: course(6, 0, 0, 1)},
		{UserID: 2, Course: course(6, 0, 0, 1)},
	}}
	snap, err := model.Build(context.Background(), table, model.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	scores := (&UserBasedCF{NeighborCount: 5}).Scores(snap, 1)
	if _, ok := scores[5]; ok {
		t.Errorf("course 5 rated only by the user itself must not be scored: %v", scores)
	}
	if scores[6] <= 0 {
		t.Errorf("scores[6] = %v, want > 0", scores[6])
	}
}

func TestUserBasedCF_NegativeSimilaritySubtracts(t *testing.T) {
	snap := &model.Snapshot{
		UserItem: &model.UserItem{
			Users:     []int64{1, 2},
			Courses:   []int64{7},
			Ratings:   [][]float64{{0}, {0.5}},
			UserIndex: map[int64]int{1: 0, 2: 1},
		},
		Similarity: &model.UserSimilarity{
			Users:  []int64{1, 2},
			Index:  map[int64]int{1: 0, 2: 1},
			Values: [][]float64{{1, -0.4}, {-0.4, 1}},
		},
	}
	scores := (&UserBasedCF{}).Scores(snap, 1)
	if math.Abs(scores[7]-(-0.2)) > 1e-12 {
		t.Errorf("scores[7] = %v, want -0.2", scores[7])
	}
}

func TestFanout_MergesSources(t *testing.T) {
	snap := testSnapshot(t)
	ctx := model.NewContext(context.Background(), snap)
	user, courseID := int64(10), int64(3)
	rctx := &core.RecommendContext{UserID: &user, CourseID: &courseID}

	n := &Fanout{Sources: []Source{&ContentRecall{}, &UserBasedCF{}}}
	items, err := n.Process(ctx, rctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID >= items[i].ID {
			t.Errorf("items not ordered by ID: %d before %d", items[i-1].ID, items[i].ID)
		}
	}
	// 课程 3 同时被两个源命中
	c3 := items[2]
	if c3.ID != 3 {
		t.Fatalf("items[2].ID = %d", c3.ID)
	}
	if c3.Feature(model.FeatureContentScore) != 1 {
		t.Errorf("content_score = %v, want 1", c3.Feature(model.FeatureContentScore))
	}
	if c3.Feature(model.FeatureCollabScore) <= 0 {
		t.Errorf("collab_score = %v, want > 0", c3.Feature(model.FeatureCollabScore))
	}
	if got := c3.Labels[utils.LabelRecallSource].Value; got != "content|u2i" {
		t.Errorf("recall_source = %q", got)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "recall.failing" }
func (failingSource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, errors.New("unavailable")
}

func TestFanout_SourceErrorIsIsolated(t *testing.T) {
	snap := testSnapshot(t)
	ctx := model.NewContext(context.Background(), snap)
	courseID := int64(1)

	var failed []string
	n := &Fanout{
		Sources:       []Source{failingSource{}, &ContentRecall{}},
		MaxConcurrent: 1,
		OnError:       func(source string, _ error) { failed = append(failed, source) },
	}
	items, err := n.Process(ctx, &core.RecommendContext{CourseID: &courseID}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}
	if len(failed) != 1 || failed[0] != "recall.failing" {
		t.Errorf("OnError calls = %v", failed)
	}
}

func TestRecall_NoSignal(t *testing.T) {
	ctx := model.NewContext(context.Background(), testSnapshot(t))
	rctx := &core.RecommendContext{}
	if items, err := (&ContentRecall{}).Recall(ctx, rctx); err != nil || items != nil {
		t.Errorf("ContentRecall without course = (%v, %v)", items, err)
	}
	if items, err := (&UserBasedCF{}).Recall(ctx, rctx); err != nil || items != nil {
		t.Errorf("UserBasedCF without user = (%v, %v)", items, err)
	}

	courseID := int64(1)
	if _, err := (&ContentRecall{}).Recall(context.Background(), &core.RecommendContext{CourseID: &courseID}); err == nil {
		t.Error("Recall without snapshot should fail")
	}
}
