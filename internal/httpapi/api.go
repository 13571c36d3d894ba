// Package httpapi exposes the resource services over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/logging"
	"mathmate/internal/metrics"
	"mathmate/internal/quiz"
	"mathmate/internal/report"
	"mathmate/internal/student"
)

const sessionCookieName = "mathmate_session"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Auth     *auth.Service
	Classes  *classroom.Service
	Quizzes  *quiz.Service
	Students *student.Service
	Reports  *report.Service
	Health   Pinger
}

type Options struct {
	Logger  *logrus.Entry
	Metrics *metrics.Metrics
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// RequireAuth gates every resource route behind a token or session.
	RequireAuth bool
}

type API struct {
	auth     *auth.Service
	classes  *classroom.Service
	quizzes  *quiz.Service
	students *student.Service
	reports  *report.Service
	health   Pinger

	log          *logrus.Entry
	metrics      *metrics.Metrics
	secureCookie bool
	requireAuth  bool
}

func NewAPI(services Services, opts Options) *API {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New("mathmate")
	}
	return &API{
		auth:         services.Auth,
		classes:      services.Classes,
		quizzes:      services.Quizzes,
		students:     services.Students,
		reports:      services.Reports,
		health:       services.Health,
		log:          opts.Logger,
		metrics:      opts.Metrics,
		secureCookie: opts.SecureCookie,
		requireAuth:  opts.RequireAuth,
	}
}

// logger returns the base logger tagged with the request id.
func (a *API) logger(r *http.Request) *logrus.Entry {
	if id := requestIDFromContext(r.Context()); id != "" {
		return a.log.WithField("request_id", id)
	}
	return a.log
}
