package sqlstore

import (
	"context"
)

// Foreign keys are deliberately not declared: class, teacher and quiz
// references stay loose and the only cascade is the one DeleteQuiz performs
// in its transaction.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		email TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS classes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		teacher_id INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		class_id INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id INTEGER NOT NULL,
		question TEXT NOT NULL CHECK (length(question) > 0),
		answer TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE TABLE IF NOT EXISTS quiz_comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id INTEGER NOT NULL,
		comment TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quiz_id INTEGER,
		class_id INTEGER,
		-- REAL keeps partial marks; no range is enforced.
		score REAL NOT NULL,
		graded_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		teacher_id INTEGER NOT NULL,
		quiz_id INTEGER NOT NULL,
		performance_data TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_quiz ON quiz_comments(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_class ON quizzes(class_id);`,
	`CREATE INDEX IF NOT EXISTS idx_students_quiz ON students(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_students_class ON students(class_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_student ON reports(student_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		email TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS classes (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		teacher_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		class_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS questions (
		id BIGSERIAL PRIMARY KEY,
		quiz_id BIGINT NOT NULL,
		question TEXT NOT NULL CHECK (length(question) > 0),
		answer TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE TABLE IF NOT EXISTS quiz_comments (
		id BIGSERIAL PRIMARY KEY,
		quiz_id BIGINT NOT NULL,
		comment TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		quiz_id BIGINT,
		class_id BIGINT,
		score DOUBLE PRECISION NOT NULL,
		graded_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL,
		teacher_id BIGINT NOT NULL,
		quiz_id BIGINT NOT NULL,
		performance_data TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_quiz ON quiz_comments(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_class ON quizzes(class_id);`,
	`CREATE INDEX IF NOT EXISTS idx_students_quiz ON students(quiz_id);`,
	`CREATE INDEX IF NOT EXISTS idx_students_class ON students(class_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_student ON reports(student_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);`,
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := sqliteSchema
	if s.db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
