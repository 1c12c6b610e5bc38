package model

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/courserec/dataset"
)

// UserItem 是用户 × 课程评分矩阵。
//
// 行为用户（按 ID 升序），列为课程（按 ID 升序），单元格为评分，0 表示未评分。
// 注意：评分在建矩阵之前已做 Min-Max 归一化，最低分会变为 0，与"未评分"不可区分。
type UserItem struct {
	Users     []int64
	Courses   []int64
	Ratings   [][]float64
	UserIndex map[int64]int
}

// BuildUserItem 透视全部评分事件。同一 (user, course) 出现多次时以最后一行为准。
func BuildUserItem(table *dataset.Table) *UserItem {
	userSet := make(map[int64]struct{})
	courseSet := make(map[int64]struct{})
	for _, row := range table.Rows {
		userSet[row.UserID] = struct{}{}
		courseSet[row.Course.ID] = struct{}{}
	}

	m := &UserItem{
		Users:     sortedKeys(userSet),
		Courses:   sortedKeys(courseSet),
		UserIndex: make(map[int64]int, len(userSet)),
	}
	courseIndex := make(map[int64]int, len(m.Courses))
	for i, id := range m.Courses {
		courseIndex[id] = i
	}
	for i, id := range m.Users {
		m.UserIndex[id] = i
	}

	m.Ratings = make([][]float64, len(m.Users))
	for i := range m.Ratings {
		m.Ratings[i] = make([]float64, len(m.Courses))
	}
	for _, row := range table.Rows {
		m.Ratings[m.UserIndex[row.UserID]][courseIndex[row.Course.ID]] = row.Course.Rating
	}
	return m
}

// Row 返回用户的评分向量。
func (m *UserItem) Row(userID int64) ([]float64, bool) {
	i, ok := m.UserIndex[userID]
	if !ok {
		return nil, false
	}
	return m.Ratings[i], true
}

// UserSimilarity 是用户 × 用户余弦相似度表，对称；对角线为 1（零向量用户为 0）。
type UserSimilarity struct {
	Users  []int64
	Index  map[int64]int
	Values [][]float64
}

// BuildUserSimilarity 计算所有用户两两之间的余弦相似度。
//
// 按行并发计算，workers <= 0 时使用 GOMAXPROCS；每个单元格只由一个 goroutine 写入，
// 结果与串行计算一致。
func BuildUserSimilarity(ctx context.Context, ui *UserItem, workers int) (*UserSimilarity, error) {
	n := len(ui.Users)
	s := &UserSimilarity{
		Users:  ui.Users,
		Index:  ui.UserIndex,
		Values: make([][]float64, n),
	}
	if n == 0 {
		return s, nil
	}

	norms := make([]float64, n)
	for i, row := range ui.Ratings {
		norms[i] = norm(row)
		s.Values[i] = make([]float64, n)
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// 只算上三角，第 i 行负责 (i, j>=i) 以及对称位置 (j, i)
			for j := i; j < n; j++ {
				var sim float64
				if norms[i] != 0 && norms[j] != 0 {
					if i == j {
						sim = 1
					} else {
						var dot float64
						a, b := ui.Ratings[i], ui.Ratings[j]
						for k := range a {
							dot += a[k] * b[k]
						}
						sim = dot / (norms[i] * norms[j])
					}
				}
				s.Values[i][j] = sim
				s.Values[j][i] = sim
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len 返回用户数。
func (s *UserSimilarity) Len() int {
	return len(s.Users)
}

// Get 返回两个用户的相似度；任一用户不存在时返回 (0, false)。
func (s *UserSimilarity) Get(a, b int64) (float64, bool) {
	i, ok := s.Index[a]
	if !ok {
		return 0, false
	}
	j, ok := s.Index[b]
	if !ok {
		return 0, false
	}
	return s.Values[i][j], true
}

// Neighbor 是一个相似用户。
type Neighbor struct {
	UserID     int64
	Similarity float64
}

// Neighbors 返回与 userID 最相似的 k 个其他用户（不含自身）。
// 排序：相似度降序，相同相似度按用户 ID 升序。userID 不存在时返回 nil。
func (s *UserSimilarity) Neighbors(userID int64, k int) []Neighbor {
	i, ok := s.Index[userID]
	if !ok || k <= 0 {
		return nil
	}
	out := make([]Neighbor, 0, len(s.Users)-1)
	for j, other := range s.Users {
		if j == i {
			continue
		}
		out = append(out, Neighbor{UserID: other, Similarity: s.Values[i][j]})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Similarity != out[b].Similarity {
			return out[a].Similarity > out[b].Similarity
		}
		return out[a].UserID < out[b].UserID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func sortedKeys(set map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
