package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmate/internal/apperr"
)

type fakeRepo struct {
	reports map[int64]Report
	nextID  int64
	summary Summary
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reports: map[int64]Report{}}
}

func (f *fakeRepo) CreateReport(_ context.Context, report Report) (int64, error) {
	f.nextID++
	report.ID = f.nextID
	f.reports[report.ID] = report
	return report.ID, nil
}

func (f *fakeRepo) GetReport(_ context.Context, id int64) (Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return report, nil
}

func (f *fakeRepo) ReportsByStudent(_ context.Context, studentID int64) ([]Report, error) {
	out := []Report{}
	for _, report := range f.reports {
		if report.StudentID == studentID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (f *fakeRepo) ReportsByClass(context.Context, int64) ([]Report, error) {
	return []Report{}, nil
}

func (f *fakeRepo) UpdateReport(_ context.Context, report Report) error {
	if _, ok := f.reports[report.ID]; !ok {
		return ErrReportNotFound
	}
	f.reports[report.ID] = report
	return nil
}

func (f *fakeRepo) DeleteReport(_ context.Context, id int64) error {
	if _, ok := f.reports[id]; !ok {
		return ErrReportNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeRepo) Performance(context.Context, int64) ([]PerformanceEntry, error) {
	return []PerformanceEntry{}, nil
}

func (f *fakeRepo) Summary(context.Context, int64) (Summary, error) {
	return f.summary, nil
}

func TestCreateRequiresReferences(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Report{TeacherID: 1, QuizID: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	created, err := svc.Create(ctx, Report{StudentID: 1, TeacherID: 1, QuizID: 1, PerformanceData: `{"score":90}`})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, `{"score":90}`, created.PerformanceData)
}

func TestUpdateOverwritesAndDeleteReportsMissing(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	err := svc.Update(ctx, Report{ID: 3, StudentID: 1, TeacherID: 1, QuizID: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	created, err := svc.Create(ctx, Report{StudentID: 1, TeacherID: 1, QuizID: 1, PerformanceData: "good"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, Report{ID: created.ID, StudentID: 2, TeacherID: 1, QuizID: 4}))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.StudentID)
	assert.Empty(t, got.PerformanceData, "update is a full overwrite")

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrReportNotFound)
}

func TestGenerateRequiresStudent(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Generate(context.Background(), 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	entries, err := svc.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
