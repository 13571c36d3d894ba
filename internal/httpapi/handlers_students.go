package httpapi

import (
	"context"
	"net/http"

	"mathmate/internal/student"
)

const maxUploadBytes = 10 << 20

func (a *API) HandleAddGrade(w http.ResponseWriter, r *http.Request) {
	var request gradeRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	grade, err := a.students.AddGrade(r.Context(), request.input())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gradeResponse{ID: grade.ID, Name: grade.Name, Score: grade.Score})
}

// HandleImportGrades accepts a multipart form with an xlsx "file" and
// optional quiz_id and class_id fields applied to every row.
func (a *API) HandleImportGrades(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart form with a file field is required"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file is required"})
		return
	}
	defer file.Close()

	quizID, err := parseOptionalIDForm(r, "quiz_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	classID, err := parseOptionalIDForm(r, "class_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := a.students.ImportGrades(r.Context(), file, quizID, classID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) HandleGetGrades(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	grades, err := a.students.GetGrades(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grades)
}

func (a *API) HandleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}
	var request gradeRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := a.students.UpdateGrade(r.Context(), id, request.input()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Grade updated")
}

func (a *API) HandleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	if err := a.students.DeleteGrade(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Grade deleted")
}

func (a *API) HandleGradesByQuiz(w http.ResponseWriter, r *http.Request) {
	a.listGrades(w, r, "quizId", a.students.ListByQuiz)
}

func (a *API) HandleGradebook(w http.ResponseWriter, r *http.Request) {
	a.listGrades(w, r, "quizId", a.students.GradesForQuiz)
}

func (a *API) HandleGradesByClass(w http.ResponseWriter, r *http.Request) {
	a.listGrades(w, r, "classId", a.students.ListByClass)
}

func (a *API) listGrades(w http.ResponseWriter, r *http.Request, key string, list func(ctx context.Context, id int64) ([]student.Grade, error)) {
	id, ok := parseIDParam(w, r, key)
	if !ok {
		return
	}

	grades, err := list(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grades)
}

func (a *API) HandleAverage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	avg, err := a.students.Average(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, averageResponse{StudentID: id, AverageScore: avg})
}

func (a *API) HandleScoresRange(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	scoreRange, err := a.students.ScoresRange(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoresRangeResponse{
		StudentID:    id,
		HighestScore: scoreRange.Highest,
		LowestScore:  scoreRange.Lowest,
	})
}

func (a *API) HandleQuizCount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	count, err := a.students.QuizCount(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizCountResponse{StudentID: id, QuizCount: count})
}

func (req gradeRequest) input() student.GradeInput {
	return student.GradeInput{
		Name:    req.Name,
		QuizID:  req.QuizID,
		ClassID: req.ClassID,
		Score:   req.Score,
	}
}
