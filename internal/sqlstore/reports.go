package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"mathmate/internal/apperr"
	"mathmate/internal/report"
)

const reportColumns = `id, student_id, teacher_id, quiz_id, performance_data, created_at`

func (s *Store) CreateReport(ctx context.Context, r report.Report) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.insert(ctx, s.db,
		`INSERT INTO reports (student_id, teacher_id, quiz_id, performance_data, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.StudentID, r.TeacherID, r.QuizID, r.PerformanceData, s.timestamp(),
	)
	return id, apperr.Store("insert report", err)
}

func (s *Store) GetReport(ctx context.Context, id int64) (report.Report, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var r report.Report
	err := s.db.GetContext(ctx, &r, s.rebind(`SELECT `+reportColumns+` FROM reports WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Report{}, report.ErrReportNotFound
		}
		return report.Report{}, apperr.Store("select report", err)
	}
	return r, nil
}

func (s *Store) selectReports(ctx context.Context, op, query string, args ...any) ([]report.Report, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reports := make([]report.Report, 0)
	if err := s.db.SelectContext(ctx, &reports, s.rebind(query), args...); err != nil {
		return nil, apperr.Store(op, err)
	}
	return reports, nil
}

func (s *Store) ReportsByStudent(ctx context.Context, studentID int64) ([]report.Report, error) {
	return s.selectReports(ctx, "select reports by student",
		`SELECT `+reportColumns+` FROM reports WHERE student_id = ? ORDER BY id`, studentID)
}

func (s *Store) ReportsByClass(ctx context.Context, classID int64) ([]report.Report, error) {
	return s.selectReports(ctx, "select reports by class",
		`SELECT r.id, r.student_id, r.teacher_id, r.quiz_id, r.performance_data, r.created_at
		 FROM reports r
		 JOIN quizzes q ON q.id = r.quiz_id
		 WHERE q.class_id = ?
		 ORDER BY r.id`, classID)
}

func (s *Store) UpdateReport(ctx context.Context, r report.Report) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, report.ErrReportNotFound,
		`UPDATE reports SET student_id = ?, teacher_id = ?, quiz_id = ?, performance_data = ? WHERE id = ?`,
		r.StudentID, r.TeacherID, r.QuizID, r.PerformanceData, r.ID,
	)
	return apperr.Store("update report", err)
}

func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, report.ErrReportNotFound, `DELETE FROM reports WHERE id = ?`, id)
	return apperr.Store("delete report", err)
}

// Performance reads grade rows, not stored reports.
func (s *Store) Performance(ctx context.Context, studentID int64) ([]report.PerformanceEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entries := make([]report.PerformanceEntry, 0)
	err := s.db.SelectContext(ctx, &entries,
		s.rebind(`SELECT quiz_id, score FROM students WHERE id = ? ORDER BY id`), studentID)
	if err != nil {
		return nil, apperr.Store("select performance", err)
	}
	return entries, nil
}

func (s *Store) Summary(ctx context.Context, studentID int64) (report.Summary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var summary report.Summary
	err := s.db.GetContext(ctx, &summary,
		s.rebind(`SELECT AVG(score) AS average_score, MAX(score) AS highest_score, MIN(score) AS lowest_score
		 FROM students WHERE id = ?`), studentID)
	return summary, apperr.Store("summarize grades", err)
}
