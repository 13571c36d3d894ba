package httpapi

import (
	"encoding/json"

	"mathmate/internal/auth"
	"mathmate/internal/report"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Users

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type currentUserResponse struct {
	User auth.Identity `json:"user"`
}

type tokenRequest struct {
	Email string `json:"email" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type protectedResponse struct {
	Message string        `json:"message"`
	User    auth.Identity `json:"user"`
}

// Classes

type classRequest struct {
	Name      string `json:"name" validate:"required"`
	TeacherID int64  `json:"teacherId" validate:"required,gt=0"`
}

type createClassResponse struct {
	Message string `json:"message"`
	ClassID int64  `json:"classId"`
}

// Quizzes

type questionRequest struct {
	QuestionText  string   `json:"questionText" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Options       []string `json:"options"`
}

// Quiz bodies take the class as classId or, from older clients, class_id.
// One of the two is required; classId wins when both are sent.
type createQuizRequest struct {
	Title         string            `json:"title" validate:"required"`
	ClassID       int64             `json:"classId" validate:"omitempty,gt=0"`
	LegacyClassID int64             `json:"class_id" validate:"omitempty,gt=0"`
	Questions     []questionRequest `json:"questions" validate:"dive"`
}

type createQuizResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ClassID       int64  `json:"class_id"`
	QuestionCount int    `json:"question_count"`
}

// updateQuestionRequest leaves questionId optional; questions without one
// are skipped and reported rather than rejected.
type updateQuestionRequest struct {
	QuestionID    int64    `json:"questionId"`
	QuestionText  string   `json:"questionText" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Options       []string `json:"options"`
}

type updateQuizRequest struct {
	Title         string                  `json:"title" validate:"required"`
	ClassID       int64                   `json:"classId" validate:"omitempty,gt=0"`
	LegacyClassID int64                   `json:"class_id" validate:"omitempty,gt=0"`
	Questions     []updateQuestionRequest `json:"questions" validate:"dive"`
}

func (req createQuizRequest) classID() int64 { return pickClassID(req.ClassID, req.LegacyClassID) }

func (req updateQuizRequest) classID() int64 { return pickClassID(req.ClassID, req.LegacyClassID) }

func pickClassID(classID, legacy int64) int64 {
	if classID > 0 {
		return classID
	}
	return legacy
}

type updateQuizResponse struct {
	Message          string   `json:"message"`
	UpdatedQuestions int      `json:"updated_questions"`
	SkippedQuestions int      `json:"skipped_questions"`
	Warnings         []string `json:"warnings"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Students

type gradeRequest struct {
	Name    string   `json:"name" validate:"required"`
	QuizID  *int64   `json:"quiz_id" validate:"omitempty,gt=0"`
	ClassID *int64   `json:"class_id" validate:"omitempty,gt=0"`
	Score   *float64 `json:"score" validate:"required"`
}

type gradeResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type averageResponse struct {
	StudentID    int64    `json:"studentId"`
	AverageScore *float64 `json:"average_score"`
}

type scoresRangeResponse struct {
	StudentID    int64    `json:"studentId"`
	HighestScore *float64 `json:"highest_score"`
	LowestScore  *float64 `json:"lowest_score"`
}

type quizCountResponse struct {
	StudentID int64 `json:"studentId"`
	QuizCount int64 `json:"quiz_count"`
}

// Reports

type generateReportRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

type generateReportResponse struct {
	StudentID       int64                     `json:"student_id"`
	PerformanceData []report.PerformanceEntry `json:"performance_data"`
}

// reportRequest carries performance_data as raw JSON; any value is accepted.
type reportRequest struct {
	StudentID       int64           `json:"student_id" validate:"required,gt=0"`
	TeacherID       int64           `json:"teacher_id" validate:"required,gt=0"`
	QuizID          int64           `json:"quiz_id" validate:"required,gt=0"`
	PerformanceData json.RawMessage `json:"performance_data"`
}

type createReportResponse struct {
	ReportID        int64           `json:"reportId"`
	StudentID       int64           `json:"student_id"`
	TeacherID       int64           `json:"teacher_id"`
	QuizID          int64           `json:"quiz_id"`
	PerformanceData json.RawMessage `json:"performance_data"`
}

type summaryResponse struct {
	StudentID    int64    `json:"student_id"`
	AverageScore *float64 `json:"average_score"`
	HighestScore *float64 `json:"highest_score"`
	LowestScore  *float64 `json:"lowest_score"`
}

type healthResponse struct {
	Status string `json:"status"`
}
