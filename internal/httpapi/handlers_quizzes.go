package httpapi

import (
	"net/http"

	"mathmate/internal/quiz"
)

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var request createQuizRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	questions := make([]quiz.NewQuestion, 0, len(request.Questions))
	for _, item := range request.Questions {
		questions = append(questions, quiz.NewQuestion{
			Text:    item.QuestionText,
			Answer:  item.CorrectAnswer,
			Options: item.Options,
		})
	}

	created, err := a.quizzes.CreateQuiz(r.Context(), request.Title, request.classID(), questions)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createQuizResponse{
		ID:            created.ID,
		Title:         created.Title,
		ClassID:       created.ClassID,
		QuestionCount: len(created.Questions),
	})
}

func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.quizzes.ListQuizzes(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) HandleListQuizzesByClass(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "classId")
	if !ok {
		return
	}

	quizzes, err := a.quizzes.ListQuizzesByClass(r.Context(), classID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	found, err := a.quizzes.GetQuiz(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *API) HandleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var request updateQuizRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	updates := make([]quiz.QuestionUpdate, 0, len(request.Questions))
	for _, item := range request.Questions {
		updates = append(updates, quiz.QuestionUpdate{
			ID:      item.QuestionID,
			Text:    item.QuestionText,
			Answer:  item.CorrectAnswer,
			Options: item.Options,
		})
	}

	result, err := a.quizzes.UpdateQuiz(r.Context(), id, request.Title, request.classID(), updates)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateQuizResponse{
		Message:          "Quiz updated",
		UpdatedQuestions: result.Updated,
		SkippedQuestions: result.Skipped,
		Warnings:         result.Warnings,
	})
}

func (a *API) HandleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := a.quizzes.DeleteQuiz(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Quiz and associated questions deleted")
}

func (a *API) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	var request commentRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	id, err := a.quizzes.AddComment(r.Context(), quizID, request.Comment)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Message: "Comment added successfully", ID: id})
}

func (a *API) HandleListComments(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	comments, err := a.quizzes.ListComments(r.Context(), quizID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
