package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"mathmate/internal/report"
)

func (a *API) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var request generateReportRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	entries, err := a.reports.Generate(r.Context(), request.StudentID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateReportResponse{StudentID: request.StudentID, PerformanceData: entries})
}

func (a *API) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	var request reportRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	created, err := a.reports.Create(r.Context(), request.report(0))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createReportResponse{
		ReportID:        created.ID,
		StudentID:       created.StudentID,
		TeacherID:       created.TeacherID,
		QuizID:          created.QuizID,
		PerformanceData: request.PerformanceData,
	})
}

func (a *API) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "reportId")
	if !ok {
		return
	}

	found, err := a.reports.Get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *API) HandleUpdateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "reportId")
	if !ok {
		return
	}
	var request reportRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := a.reports.Update(r.Context(), request.report(id)); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Report updated")
}

func (a *API) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "reportId")
	if !ok {
		return
	}

	if err := a.reports.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Report deleted")
}

func (a *API) HandleReportsByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	reports, err := a.reports.ListByStudent(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (a *API) HandleReportsByClass(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "classId")
	if !ok {
		return
	}

	reports, err := a.reports.ListByClass(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (a *API) HandleReportSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "studentId")
	if !ok {
		return
	}

	summary, err := a.reports.Summary(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		StudentID:    id,
		AverageScore: summary.Average,
		HighestScore: summary.Highest,
		LowestScore:  summary.Lowest,
	})
}

func (req reportRequest) report(id int64) report.Report {
	return report.Report{
		ID:              id,
		StudentID:       req.StudentID,
		TeacherID:       req.TeacherID,
		QuizID:          req.QuizID,
		PerformanceData: performanceText(req.PerformanceData),
	}
}

// performanceText stores a JSON string as its text and any other value as
// its compact encoding. Missing and null become empty text.
func performanceText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, trimmed); err != nil {
		return string(trimmed)
	}
	return compacted.String()
}
