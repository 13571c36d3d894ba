package classroom

import (
	"context"
	"strings"
	"time"

	"mathmate/internal/apperr"
)

var ErrClassNotFound = apperr.NotFound("Class not found")

type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Repository reports ErrClassNotFound when a lookup, update or delete
// touches no row.
type Repository interface {
	CreateClass(ctx context.Context, class Class) (int64, error)
	ListClasses(ctx context.Context) ([]Class, error)
	GetClass(ctx context.Context, id int64) (Class, error)
	UpdateClass(ctx context.Context, class Class) error
	DeleteClass(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create does not check that the teacher exists.
func (s *Service) Create(ctx context.Context, name string, teacherID int64) (int64, error) {
	class, err := newClass(0, name, teacherID)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateClass(ctx, class)
}

func (s *Service) List(ctx context.Context) ([]Class, error) {
	return s.repo.ListClasses(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Class, error) {
	return s.repo.GetClass(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, name string, teacherID int64) error {
	class, err := newClass(id, name, teacherID)
	if err != nil {
		return err
	}
	return s.repo.UpdateClass(ctx, class)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteClass(ctx, id)
}

func newClass(id int64, name string, teacherID int64) (Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Class{}, apperr.Validation("name is required")
	}
	if teacherID <= 0 {
		return Class{}, apperr.Validation("teacherId is required")
	}
	return Class{ID: id, Name: name, TeacherID: teacherID}, nil
}
