package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"mathmate/internal/apperr"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports field names by their json tag so error bodies use
// the names clients sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(requireQuizClass, createQuizRequest{}, updateQuizRequest{})
	return v
}

// requireQuizClass reports classId as missing when neither class key was
// sent.
func requireQuizClass(sl validator.StructLevel) {
	var classID int64
	switch req := sl.Current().Interface().(type) {
	case createQuizRequest:
		classID = req.classID()
	case updateQuizRequest:
		classID = req.classID()
	}
	if classID == 0 {
		sl.ReportError(classID, "classId", "ClassID", "required", "")
	}
}

// decodeAndValidate fills dst from the JSON body and runs the struct tags.
// It writes the 400 response itself and returns false on any failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body is required"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return validateRequest(w, dst)
}

func validateRequest(w http.ResponseWriter, dst any) bool {
	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return false
	}

	fields := make(map[string]string, len(fieldErrs))
	message := "Invalid field values"
	for _, fieldErr := range fieldErrs {
		fields[fieldPath(fieldErr)] = fieldErr.Tag()
		if fieldErr.Tag() == "required" {
			message = "Missing required fields"
		}
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Fields: fields})
	return false
}

// fieldPath drops the top-level struct name from the namespace, so nested
// question fields read as questions[1].questionText.
func fieldPath(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return fieldErr.Field()
}

// parseIDParam reads a positive integer path value. It writes the 400
// response and returns false when the value is malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue(key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: key + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// parseOptionalIDForm reads an optional positive integer form value.
func parseOptionalIDForm(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New(key + " must be a positive integer")
	}
	return &id, nil
}

func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnavailable):
		a.logger(r).WithError(err).Warn("store unavailable")
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"})
	default:
		a.logger(r).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		body.Reset()
		_ = json.NewEncoder(&body).Encode(errorResponse{Error: "request failed"})
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body.Bytes())
}

type message struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, statusCode int, text string) {
	writeJSON(w, statusCode, message{Message: text})
}
