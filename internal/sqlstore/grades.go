package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"mathmate/internal/apperr"
	"mathmate/internal/student"
)

const gradeColumns = `id, name, quiz_id, class_id, score, graded_at`

func (s *Store) AddGrade(ctx context.Context, grade student.Grade) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.insert(ctx, s.db,
		`INSERT INTO students (name, quiz_id, class_id, score, graded_at) VALUES (?, ?, ?, ?, ?)`,
		grade.Name, grade.QuizID, grade.ClassID, grade.Score, s.timestamp(),
	)
	return id, apperr.Store("insert grade", err)
}

func (s *Store) AddGrades(ctx context.Context, grades []student.Grade) error {
	return s.inTx(ctx, "import grades", func(ctx context.Context, tx *sqlx.Tx) error {
		gradedAt := s.timestamp()
		stmt, err := tx.PreparexContext(ctx,
			s.rebind(`INSERT INTO students (name, quiz_id, class_id, score, graded_at) VALUES (?, ?, ?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, grade := range grades {
			if _, err := stmt.ExecContext(ctx, grade.Name, grade.QuizID, grade.ClassID, grade.Score, gradedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) selectGrades(ctx context.Context, op, query string, args ...any) ([]student.Grade, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	grades := make([]student.Grade, 0)
	if err := s.db.SelectContext(ctx, &grades, s.rebind(query), args...); err != nil {
		return nil, apperr.Store(op, err)
	}
	return grades, nil
}

func (s *Store) GradesForStudent(ctx context.Context, studentID int64) ([]student.Grade, error) {
	return s.selectGrades(ctx, "select grades", `SELECT `+gradeColumns+` FROM students WHERE id = ?`, studentID)
}

func (s *Store) GradesByQuiz(ctx context.Context, quizID int64) ([]student.Grade, error) {
	return s.selectGrades(ctx, "select grades by quiz", `SELECT `+gradeColumns+` FROM students WHERE quiz_id = ? ORDER BY id`, quizID)
}

func (s *Store) GradesByClass(ctx context.Context, classID int64) ([]student.Grade, error) {
	return s.selectGrades(ctx, "select grades by class", `SELECT `+gradeColumns+` FROM students WHERE class_id = ? ORDER BY id`, classID)
}

func (s *Store) Gradebook(ctx context.Context, quizID int64) ([]student.Grade, error) {
	return s.selectGrades(ctx, "select gradebook", `SELECT `+gradeColumns+` FROM students WHERE quiz_id = ? ORDER BY score DESC, id`, quizID)
}

// AverageScore is nil over zero rows.
func (s *Store) AverageScore(ctx context.Context, studentID int64) (*float64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var avg *float64
	err := s.db.QueryRowxContext(ctx, s.rebind(`SELECT AVG(score) FROM students WHERE id = ?`), studentID).Scan(&avg)
	return avg, apperr.Store("average score", err)
}

func (s *Store) ScoreRange(ctx context.Context, studentID int64) (student.ScoreRange, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var scoreRange student.ScoreRange
	err := s.db.GetContext(ctx, &scoreRange,
		s.rebind(`SELECT MAX(score) AS highest_score, MIN(score) AS lowest_score FROM students WHERE id = ?`), studentID)
	return scoreRange, apperr.Store("score range", err)
}

func (s *Store) CountGrades(ctx context.Context, studentID int64) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	err := s.db.GetContext(ctx, &count, s.rebind(`SELECT COUNT(*) FROM students WHERE id = ?`), studentID)
	return count, apperr.Store("count grades", err)
}

func (s *Store) UpdateGrade(ctx context.Context, grade student.Grade) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, student.ErrGradeNotFound,
		`UPDATE students SET name = ?, quiz_id = ?, class_id = ?, score = ? WHERE id = ?`,
		grade.Name, grade.QuizID, grade.ClassID, grade.Score, grade.ID,
	)
	return apperr.Store("update grade", err)
}

func (s *Store) DeleteGrade(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, student.ErrGradeNotFound, `DELETE FROM students WHERE id = ?`, id)
	return apperr.Store("delete grade", err)
}
