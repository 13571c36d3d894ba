package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"mathmate/internal/quiz"
)

type quizRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	ClassID   int64     `db:"class_id"`
	CreatedAt time.Time `db:"created_at"`
}

type questionRow struct {
	ID      int64  `db:"id"`
	QuizID  int64  `db:"quiz_id"`
	Text    string `db:"question"`
	Answer  string `db:"answer"`
	Options string `db:"options"`
}

type commentRow struct {
	ID        int64     `db:"id"`
	QuizID    int64     `db:"quiz_id"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

func encodeOptions(options []string) (string, error) {
	if options == nil {
		options = []string{}
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeOptions(raw string) ([]string, error) {
	options := []string{}
	if raw == "" {
		return options, nil
	}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, err
	}
	if options == nil {
		options = []string{}
	}
	return options, nil
}

// CreateQuiz inserts the quiz row and then each question inside one
// transaction. A failing question insert rolls back the quiz as well.
func (s *Store) CreateQuiz(ctx context.Context, q quiz.Quiz) (int64, error) {
	var quizID int64
	err := s.inTx(ctx, "create quiz", func(ctx context.Context, tx *sqlx.Tx) error {
		id, err := s.insert(ctx, tx,
			`INSERT INTO quizzes (title, class_id, created_at) VALUES (?, ?, ?)`,
			q.Title, q.ClassID, s.timestamp(),
		)
		if err != nil {
			return err
		}

		for idx, question := range q.Questions {
			options, err := encodeOptions(question.Options)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				s.rebind(`INSERT INTO questions (quiz_id, question, answer, options) VALUES (?, ?, ?, ?)`),
				id, question.Text, question.Answer, options,
			); err != nil {
				return fmt.Errorf("insert question %d: %w", idx, err)
			}
		}

		quizID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return quizID, nil
}

func (s *Store) GetQuiz(ctx context.Context, id int64) (quiz.Quiz, error) {
	var quizzes []quiz.Quiz
	err := s.inTx(ctx, "get quiz", func(ctx context.Context, tx *sqlx.Tx) error {
		var row quizRow
		err := tx.GetContext(ctx, &row, s.rebind(`SELECT id, title, class_id, created_at FROM quizzes WHERE id = ?`), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return quiz.ErrQuizNotFound
			}
			return err
		}
		quizzes, err = s.attachQuestions(ctx, tx, []quizRow{row})
		return err
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	return quizzes[0], nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	return s.listQuizzes(ctx, "list quizzes", `SELECT id, title, class_id, created_at FROM quizzes ORDER BY id`)
}

func (s *Store) ListQuizzesByClass(ctx context.Context, classID int64) ([]quiz.Quiz, error) {
	return s.listQuizzes(ctx, "list quizzes by class",
		`SELECT id, title, class_id, created_at FROM quizzes WHERE class_id = ? ORDER BY id`, classID)
}

func (s *Store) listQuizzes(ctx context.Context, op, query string, args ...any) ([]quiz.Quiz, error) {
	var quizzes []quiz.Quiz
	err := s.inTx(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		rows := make([]quizRow, 0)
		if err := tx.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
			return err
		}
		var err error
		quizzes, err = s.attachQuestions(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// attachQuestions loads the questions of every quiz with one IN query and
// returns the quizzes in the order given.
func (s *Store) attachQuestions(ctx context.Context, tx *sqlx.Tx, rows []quizRow) ([]quiz.Quiz, error) {
	quizzes := make([]quiz.Quiz, 0, len(rows))
	if len(rows) == 0 {
		return quizzes, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	query, args, err := sqlx.In(`SELECT id, quiz_id, question, answer, options FROM questions WHERE quiz_id IN (?) ORDER BY quiz_id, id`, ids)
	if err != nil {
		return nil, err
	}
	questionRows := make([]questionRow, 0)
	if err := tx.SelectContext(ctx, &questionRows, tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	byQuiz := make(map[int64][]quiz.Question, len(rows))
	for _, row := range questionRows {
		options, err := decodeOptions(row.Options)
		if err != nil {
			return nil, fmt.Errorf("decode options of question %d: %w", row.ID, err)
		}
		byQuiz[row.QuizID] = append(byQuiz[row.QuizID], quiz.Question{
			ID:      row.ID,
			QuizID:  row.QuizID,
			Text:    row.Text,
			Answer:  row.Answer,
			Options: options,
		})
	}

	for _, row := range rows {
		questions := byQuiz[row.ID]
		if questions == nil {
			questions = []quiz.Question{}
		}
		quizzes = append(quizzes, quiz.Quiz{
			ID:        row.ID,
			Title:     row.Title,
			ClassID:   row.ClassID,
			CreatedAt: row.CreatedAt,
			Questions: questions,
		})
	}
	return quizzes, nil
}

func (s *Store) UpdateQuiz(ctx context.Context, q quiz.Quiz, updates []quiz.QuestionUpdate) ([]int64, error) {
	missing := make([]int64, 0)
	err := s.inTx(ctx, "update quiz", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.execAffecting(ctx, tx, quiz.ErrQuizNotFound,
			`UPDATE quizzes SET title = ?, class_id = ? WHERE id = ?`,
			q.Title, q.ClassID, q.ID,
		); err != nil {
			return err
		}

		for _, update := range updates {
			options, err := encodeOptions(update.Options)
			if err != nil {
				return err
			}
			result, err := tx.ExecContext(ctx,
				s.rebind(`UPDATE questions SET question = ?, answer = ?, options = ? WHERE quiz_id = ? AND id = ?`),
				update.Text, update.Answer, options, q.ID, update.ID,
			)
			if err != nil {
				return fmt.Errorf("update question %d: %w", update.ID, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				missing = append(missing, update.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}

// DeleteQuiz removes comments, questions and the quiz in that order. A
// missing quiz rolls the whole transaction back.
func (s *Store) DeleteQuiz(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete quiz", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM quiz_comments WHERE quiz_id = ?`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM questions WHERE quiz_id = ?`), id); err != nil {
			return err
		}
		return s.execAffecting(ctx, tx, quiz.ErrQuizNotFound, `DELETE FROM quizzes WHERE id = ?`, id)
	})
}

func (s *Store) AddComment(ctx context.Context, comment quiz.Comment) (int64, error) {
	var commentID int64
	err := s.inTx(ctx, "add comment", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := quizExists(ctx, tx, s.rebind(`SELECT 1 FROM quizzes WHERE id = ?`), comment.QuizID); err != nil {
			return err
		}
		id, err := s.insert(ctx, tx,
			`INSERT INTO quiz_comments (quiz_id, comment, created_at) VALUES (?, ?, ?)`,
			comment.QuizID, comment.Comment, s.timestamp(),
		)
		commentID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return commentID, nil
}

func (s *Store) ListComments(ctx context.Context, quizID int64) ([]quiz.Comment, error) {
	comments := make([]quiz.Comment, 0)
	err := s.inTx(ctx, "list comments", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := quizExists(ctx, tx, s.rebind(`SELECT 1 FROM quizzes WHERE id = ?`), quizID); err != nil {
			return err
		}
		rows := make([]commentRow, 0)
		if err := tx.SelectContext(ctx, &rows,
			s.rebind(`SELECT id, quiz_id, comment, created_at FROM quiz_comments WHERE quiz_id = ? ORDER BY id`), quizID,
		); err != nil {
			return err
		}
		for _, row := range rows {
			comments = append(comments, quiz.Comment(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func quizExists(ctx context.Context, tx *sqlx.Tx, query string, id int64) error {
	var found int
	if err := tx.QueryRowxContext(ctx, query, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.ErrQuizNotFound
		}
		return err
	}
	return nil
}
