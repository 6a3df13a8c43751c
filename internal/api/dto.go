package api

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse may carry a rotated refresh credential.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type ProfileResponse struct {
	ID              int64    `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	EnrolledCourses []string `json:"enrolled_courses,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OptionDTO struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type QuestionDTO struct {
	ID      int64       `json:"id"`
	Text    string      `json:"text"`
	Options []OptionDTO `json:"options"`
}

type QuizDetail struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	DurationMinutes int           `json:"duration_minutes"`
	Questions       []QuestionDTO `json:"questions"`
}

type AnswerDTO struct {
	QuestionID       int64 `json:"question_id"`
	SelectedOptionID int64 `json:"selected_option_id"`
}

type SubmitRequest struct {
	QuizID  int64       `json:"quiz_id"`
	Answers []AnswerDTO `json:"answers"`
}

type SubmitResponse struct {
	Message string  `json:"message"`
	Score   float64 `json:"score"`
}

type ScoreOption struct {
	OptionID  int64  `json:"option_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type ScoreQuestion struct {
	QuestionID       int64         `json:"question_id"`
	QuestionText     string        `json:"question_text"`
	SelectedOptionID *int64        `json:"selected_option_id"`
	Options          []ScoreOption `json:"options"`
}

type ScoreResponse struct {
	QuizTitle string          `json:"quiz_title"`
	Score     float64         `json:"score"`
	Completed bool            `json:"completed"`
	Questions []ScoreQuestion `json:"questions"`
}

type Course struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type TeacherCoursesResponse struct {
	Courses []Course `json:"courses"`
}

type QuizSummary struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	NumQuestions    int    `json:"num_questions"`
}

type CreateQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

type CreateQuizRequest struct {
	CourseID        int64            `json:"course_id"`
	Title           string           `json:"title"`
	NumQuestions    int              `json:"num_questions"`
	DurationMinutes int              `json:"duration_minutes"`
	Questions       []CreateQuestion `json:"questions"`
}
