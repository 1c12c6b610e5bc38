package dataset

import (
	"fmt"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/feature"
	"github.com/rushteam/courserec/pkg/conv"
)

// Row 是预处理之后的一行（一次评分事件 + 该行携带的课程属性）。
type Row struct {
	UserID int64
	Course core.Course
}

// Table 是预处理之后的数据集，行数与行顺序与输入一致。
type Table struct {
	Source string
	Rows   []Row
}

// Load 读取并预处理数据集。
func Load(path string) (*Table, error) {
	raw, err := Read(path)
	if err != nil {
		return nil, err
	}
	return Prepare(raw)
}

// Prepare 对 Raw 做类别编码、缺失值填 0 和 Min-Max 归一化。
//
// course_id / user_id 无法解析为整数时返回 SCHEMA_ERROR（行号从 2 开始，与表格一致）。
func Prepare(raw *Raw) (*Table, error) {
	encoder := feature.NewLabelEncoder(CategoricalMappings)

	n := raw.Len()
	rows := make([]Row, n)
	columns := make(map[string][]float64, len(ScaleColumns))
	for _, col := range ScaleColumns {
		columns[col] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		line := i + 2
		courseID, ok := conv.ParseInt64(raw.Cell(i, ColCourseID))
		if !ok {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
				fmt.Sprintf("dataset: %s line %d: invalid %s %q", raw.Source, line, ColCourseID, raw.Cell(i, ColCourseID)))
		}
		userID, ok := conv.ParseInt64(raw.Cell(i, ColUserID))
		if !ok {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
				fmt.Sprintf("dataset: %s line %d: invalid %s %q", raw.Source, line, ColUserID, raw.Cell(i, ColUserID)))
		}

		for _, col := range ScaleColumns {
			v, _ := conv.ParseFloat(raw.Cell(i, col)) // 缺失填 0
			columns[col][i] = v
		}

		rows[i] = Row{
			UserID: userID,
			Course: core.Course{
				ID:            courseID,
				Name:          raw.Cell(i, ColCourseName),
				Instructor:    raw.Cell(i, ColInstructor),
				Difficulty:    encoder.EncodeWithKey(ColDifficulty, raw.Cell(i, ColDifficulty)),
				Certification: encoder.EncodeWithKey(ColCertification, raw.Cell(i, ColCertification)),
				StudyMaterial: encoder.EncodeWithKey(ColStudyMaterial, raw.Cell(i, ColStudyMaterial)),
			},
		}
	}

	normalizer := feature.FitMinMax(columns)
	for _, col := range ScaleColumns {
		normalizer.NormalizeColumn(col, columns[col])
	}

	for i := range rows {
		c := &rows[i].Course
		c.DurationHours = columns[ColDurationHours][i]
		c.Price = columns[ColPrice][i]
		c.FeedbackScore = columns[ColFeedbackScore][i]
		c.Enrollment = columns[ColEnrollment][i]
		c.TimeSpentHours = columns[ColTimeSpentHours][i]
		c.PreviousCourses = columns[ColPreviousCourses][i]
		c.Rating = columns[ColRating][i]
	}

	return &Table{Source: raw.Source, Rows: rows}, nil
}
