package httpapi

import (
	"net/http"
)

func (a *API) HandleCreateClass(w http.ResponseWriter, r *http.Request) {
	var request classRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	id, err := a.classes.Create(r.Context(), request.Name, request.TeacherID)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createClassResponse{Message: "Class created successfully", ClassID: id})
}

func (a *API) HandleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := a.classes.List(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (a *API) HandleGetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "classId")
	if !ok {
		return
	}

	class, err := a.classes.Get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

func (a *API) HandleUpdateClass(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "classId")
	if !ok {
		return
	}
	var request classRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := a.classes.Update(r.Context(), id, request.Name, request.TeacherID); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Class updated successfully")
}

func (a *API) HandleDeleteClass(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "classId")
	if !ok {
		return
	}

	if err := a.classes.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Class deleted successfully")
}
