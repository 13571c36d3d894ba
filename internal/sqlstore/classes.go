package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"mathmate/internal/apperr"
	"mathmate/internal/classroom"
)

func (s *Store) CreateClass(ctx context.Context, class classroom.Class) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.insert(ctx, s.db,
		`INSERT INTO classes (name, teacher_id, created_at) VALUES (?, ?, ?)`,
		class.Name, class.TeacherID, s.timestamp(),
	)
	return id, apperr.Store("insert class", err)
}

func (s *Store) ListClasses(ctx context.Context) ([]classroom.Class, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	classes := make([]classroom.Class, 0)
	err := s.db.SelectContext(ctx, &classes, `SELECT id, name, teacher_id, created_at FROM classes ORDER BY id`)
	if err != nil {
		return nil, apperr.Store("select classes", err)
	}
	return classes, nil
}

func (s *Store) GetClass(ctx context.Context, id int64) (classroom.Class, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var class classroom.Class
	err := s.db.GetContext(ctx, &class, s.rebind(`SELECT id, name, teacher_id, created_at FROM classes WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return classroom.Class{}, classroom.ErrClassNotFound
		}
		return classroom.Class{}, apperr.Store("select class", err)
	}
	return class, nil
}

func (s *Store) UpdateClass(ctx context.Context, class classroom.Class) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, classroom.ErrClassNotFound,
		`UPDATE classes SET name = ?, teacher_id = ? WHERE id = ?`,
		class.Name, class.TeacherID, class.ID,
	)
	return apperr.Store("update class", err)
}

// DeleteClass leaves the class's quizzes in place.
func (s *Store) DeleteClass(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.execAffecting(ctx, s.db, classroom.ErrClassNotFound, `DELETE FROM classes WHERE id = ?`, id)
	return apperr.Store("delete class", err)
}
