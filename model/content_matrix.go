package model

import (
	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/dataset"
)

// FeatureNames 是内容特征矩阵的列顺序，与 core.Course.Vector 一致。
var FeatureNames = []string{
	dataset.ColDurationHours,
	dataset.ColPrice,
	dataset.ColDifficulty,
	dataset.ColCertification,
	dataset.ColStudyMaterial,
	dataset.ColFeedbackScore,
	dataset.ColEnrollment,
	dataset.ColTimeSpentHours,
	dataset.ColPreviousCourses,
	dataset.ColRating,
}

// ContentMatrix 是课程内容特征矩阵：一门课程一行，行号由 Index 映射。
// Courses[i] 与 Rows[i] 对齐。
type ContentMatrix struct {
	Courses []core.Course
	Rows    [][]float64
	Index   map[int64]int
}

// BuildContentMatrix 按 course_id 去重（保留首次出现的行，保持出现顺序）后构建特征矩阵。
func BuildContentMatrix(table *dataset.Table) *ContentMatrix {
	m := &ContentMatrix{
		Index: make(map[int64]int),
	}
	for _, row := range table.Rows {
		if _, seen := m.Index[row.Course.ID]; seen {
			continue
		}
		m.Index[row.Course.ID] = len(m.Courses)
		m.Courses = append(m.Courses, row.Course)
		m.Rows = append(m.Rows, row.Course.Vector())
	}
	return m
}

// Len 返回课程数。
func (m *ContentMatrix) Len() int {
	return len(m.Courses)
}

// Course 按 ID 查找课程。
func (m *ContentMatrix) Course(id int64) (*core.Course, bool) {
	i, ok := m.Index[id]
	if !ok {
		return nil, false
	}
	return &m.Courses[i], true
}

// Vector 按 ID 查找特征向量。
func (m *ContentMatrix) Vector(id int64) ([]float64, bool) {
	i, ok := m.Index[id]
	if !ok {
		return nil, false
	}
	return m.Rows[i], true
}
