package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mathmate/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	maxLogBodyBytes = 512
)

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID accepts a caller supplied X-Request-ID or generates one, and
// echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder keeps the status code and byte count. For error responses
// it also keeps the first maxLogBytes of the body for the access log.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	wroteHeader  bool
	bytesWritten int
	maxLogBytes  int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.statusCode >= http.StatusBadRequest {
		r.capture(payload)
	}
	written, err := r.ResponseWriter.Write(payload)
	r.bytesWritten += written
	return written, err
}

func (r *statusRecorder) capture(payload []byte) {
	remaining := r.maxLogBytes - r.logBody.Len()
	if remaining <= 0 {
		if len(payload) > 0 {
			r.truncated = true
		}
		return
	}
	if len(payload) > remaining {
		r.logBody.Write(payload[:remaining])
		r.truncated = true
		return
	}
	r.logBody.Write(payload)
}

// withLogging writes one access log line per request.
func (a *API) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLogBodyBytes,
		}

		next.ServeHTTP(recorder, r)

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"route":       routeLabel(r),
			"status":      recorder.statusCode,
			"bytes":       recorder.bytesWritten,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		entry := a.logger(r).WithFields(fields)
		switch {
		case recorder.statusCode >= http.StatusInternalServerError:
			entry.WithField("response", recorder.logBody.String()).Error("request completed")
		case recorder.statusCode >= http.StatusBadRequest:
			entry.WithFields(logrus.Fields{
				"response":  recorder.logBody.String(),
				"truncated": recorder.truncated,
			}).Warn("request completed")
		default:
			entry.Info("request completed")
		}
	})
}

// withMetrics must hand its own request to the mux, which records the
// matched pattern on it.
func (a *API) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		a.metrics.RequestsInFlight.Inc()
		defer a.metrics.RequestsInFlight.Dec()

		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routeLabel(r)
		a.metrics.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		a.metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps metric cardinality bounded: unmatched paths share one
// label.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

// requireBearer admits requests with a valid HS256 token and answers 403
// otherwise.
func (a *API) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := bearerToken(r)
		identity, err := a.auth.VerifyToken(token)
		if err != nil {
			a.writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// requireIdentity admits requests carrying either a valid bearer token or a
// live session cookie. Anything else is 401.
func (a *API) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, present := bearerToken(r); present {
			identity, err := a.auth.VerifyToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
			return
		}

		identity, err := a.auth.CurrentUser(r.Context(), sessionID(r))
		if err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			a.writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
