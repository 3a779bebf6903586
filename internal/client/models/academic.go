package models

// CourseGrade is one graded course inside a semester.
type CourseGrade struct {
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Instructor string  `json:"instructor"`
	Credits    int     `json:"credits"`
	TotalGrade float64 `json:"totalGrade"`
	Status     string  `json:"status"` // Passed | Failed
}

// SemesterGrades groups course grades of one semester.
type SemesterGrades struct {
	Semester int           `json:"semester"`
	Courses  []CourseGrade `json:"courses"`
}

// YearGrades groups semesters of one study year.
type YearGrades struct {
	Year      int              `json:"year"`
	Semesters []SemesterGrades `json:"semesters"`
}

// Course is one enrolled course as listed by the courses endpoint.
type Course struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Instructor string `json:"instructor"`
	Credits    int    `json:"credits"`
}

// Message is one inbox message.
type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
	Time    string `json:"time"`
	Unread  bool   `json:"unread"`
}
