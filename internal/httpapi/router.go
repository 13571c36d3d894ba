package httpapi

import (
	"net/http"
)

// NewRouter registers every route under /api plus /healthz and /metrics.
// Method-qualified patterns let ServeMux answer 405 for the wrong verb.
func NewRouter(api *API) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", api.HandleRegister)
	mux.HandleFunc("POST /api/users/login", api.HandleLogin)
	mux.HandleFunc("POST /api/users/logout", api.HandleLogout)
	mux.HandleFunc("GET /api/users/current", api.HandleCurrentUser)
	mux.HandleFunc("POST /api/users/jwt", api.HandleIssueToken)
	mux.Handle("GET /api/protected", api.requireBearer(http.HandlerFunc(api.HandleProtected)))

	resource := func(pattern string, handler http.HandlerFunc) {
		if api.requireAuth {
			mux.Handle(pattern, api.requireIdentity(handler))
			return
		}
		mux.Handle(pattern, handler)
	}

	resource("POST /api/classes", api.HandleCreateClass)
	resource("GET /api/classes", api.HandleListClasses)
	resource("GET /api/classes/{classId}", api.HandleGetClass)
	resource("PUT /api/classes/{classId}", api.HandleUpdateClass)
	resource("DELETE /api/classes/{classId}", api.HandleDeleteClass)

	resource("POST /api/quizzes", api.HandleCreateQuiz)
	resource("GET /api/quizzes", api.HandleListQuizzes)
	resource("GET /api/quizzes/{id}", api.HandleGetQuiz)
	resource("PUT /api/quizzes/{id}", api.HandleUpdateQuiz)
	resource("DELETE /api/quizzes/{id}", api.HandleDeleteQuiz)
	resource("GET /api/quizzes/class/{classId}", api.HandleListQuizzesByClass)
	resource("POST /api/quizzes/{id}/comments", api.HandleAddComment)
	resource("GET /api/quizzes/comments/{id}", api.HandleListComments)

	resource("POST /api/students/grades", api.HandleAddGrade)
	resource("POST /api/students/grades/import", api.HandleImportGrades)
	resource("GET /api/students/grades/{studentId}", api.HandleGetGrades)
	resource("PUT /api/students/grades/{studentId}", api.HandleUpdateGrade)
	resource("DELETE /api/students/grades/{studentId}", api.HandleDeleteGrade)
	resource("GET /api/students/quiz/{quizId}", api.HandleGradesByQuiz)
	resource("GET /api/students/quiz/{quizId}/grades", api.HandleGradebook)
	resource("GET /api/students/class/{classId}", api.HandleGradesByClass)
	resource("GET /api/students/average/{studentId}", api.HandleAverage)
	resource("GET /api/students/scores-range/{studentId}", api.HandleScoresRange)
	resource("GET /api/students/quiz-count/{studentId}", api.HandleQuizCount)

	resource("POST /api/reports", api.HandleGenerateReport)
	resource("POST /api/reports/create", api.HandleCreateReport)
	resource("GET /api/reports/student/{studentId}", api.HandleReportsByStudent)
	resource("GET /api/reports/class/{classId}", api.HandleReportsByClass)
	resource("GET /api/reports/summary/student/{studentId}", api.HandleReportSummary)
	resource("GET /api/reports/{reportId}", api.HandleGetReport)
	resource("PUT /api/reports/{reportId}", api.HandleUpdateReport)
	resource("DELETE /api/reports/{reportId}", api.HandleDeleteReport)

	mux.HandleFunc("GET /healthz", api.HandleHealth)
	mux.Handle("GET /metrics", api.metrics.Handler())

	return withRequestID(api.withLogging(api.withMetrics(mux)))
}
