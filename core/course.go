package core

// Course 是去重后的课程：一门课程只对应一条特征向量，取自源数据中该课程的第一行。
type Course struct {
	ID         int64
	Name       string
	Instructor string

	// 以下数值均为预处理之后的值（编码 + Min-Max 归一化）
	DurationHours   float64
	Price           float64
	Difficulty      float64 // 1..3，未知为 0
	Certification   float64 // 0/1
	StudyMaterial   float64 // 0/1
	FeedbackScore   float64
	Enrollment      float64
	TimeSpentHours  float64
	PreviousCourses float64
	Rating          float64
}

// Vector 按固定列顺序返回内容特征向量。
func (c *Course) Vector() []float64 {
	return []float64{
		c.DurationHours,
		c.Price,
		c.Difficulty,
		c.Certification,
		c.StudyMaterial,
		c.FeedbackScore,
		c.Enrollment,
		c.TimeSpentHours,
		c.PreviousCourses,
		c.Rating,
	}
}

// CourseRecord 是推荐结果中的一行。Rating 为归一化后的评分。
type CourseRecord struct {
	CourseID   int64   `json:"course_id"`
	CourseName string  `json:"course_name"`
	Instructor string  `json:"instructor"`
	Rating     float64 `json:"rating"`
}
