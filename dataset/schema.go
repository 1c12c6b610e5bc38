// Package dataset 负责读取课程评分数据集并做预处理（类别编码 + Min-Max 归一化）。
package dataset

// 数据集列名。
const (
	ColCourseID        = "course_id"
	ColUserID          = "user_id"
	ColCourseName      = "course_name"
	ColInstructor      = "instructor"
	ColDurationHours   = "course_duration_hours"
	ColPrice           = "course_price"
	ColDifficulty      = "difficulty_level"
	ColCertification   = "certification_offered"
	ColStudyMaterial   = "study_material_available"
	ColFeedbackScore   = "feedback_score"
	ColEnrollment      = "enrollment_numbers"
	ColTimeSpentHours  = "time_spent_hours"
	ColPreviousCourses = "previous_courses_taken"
	ColRating          = "rating"
)

// RequiredColumns 是数据集必须包含的列，顺序不限。
var RequiredColumns = []string{
	ColCourseID,
	ColUserID,
	ColCourseName,
	ColInstructor,
	ColDurationHours,
	ColPrice,
	ColDifficulty,
	ColCertification,
	ColStudyMaterial,
	ColFeedbackScore,
	ColEnrollment,
	ColTimeSpentHours,
	ColPreviousCourses,
	ColRating,
}

// ScaleColumns 是需要 Min-Max 归一化的数值列。
var ScaleColumns = []string{
	ColDurationHours,
	ColPrice,
	ColEnrollment,
	ColFeedbackScore,
	ColTimeSpentHours,
	ColPreviousCourses,
	ColRating,
}

// CategoricalMappings 是类别列的编码表，未命中的取值编码为 0。
var CategoricalMappings = map[string]map[string]int{
	ColCertification: {"Yes": 1, "No": 0},
	ColStudyMaterial: {"Yes": 1, "No": 0},
	ColDifficulty:    {"Beginner": 1, "Intermediate": 2, "Advanced": 3},
}
