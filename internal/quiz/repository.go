package quiz

import (
	"context"

	"github.com/saulo-duarte/quizclient/internal/api"
)

// QuizRepository is the server-side store of quizzes, attempts and grades.
type QuizRepository interface {
	Take(ctx context.Context, quizID int64) (*Attempt, error)
	Submit(ctx context.Context, quizID int64, answers []api.AnswerDTO) error
	Score(ctx context.Context, quizID int64) (*Result, error)
}

type quizRepository struct {
	api *api.QuizAPI
}

func NewRepository(d api.Doer) QuizRepository {
	return &quizRepository{api: api.NewQuizAPI(d)}
}

func (r *quizRepository) Take(ctx context.Context, quizID int64) (*Attempt, error) {
	detail, err := r.api.TakeQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		QuizID:          detail.ID,
		Title:           detail.Title,
		DurationMinutes: detail.DurationMinutes,
		Questions:       make([]Question, 0, len(detail.Questions)),
	}
	if attempt.QuizID == 0 {
		attempt.QuizID = quizID
	}
	for _, q := range detail.Questions {
		question := Question{ID: q.ID, Text: q.Text, Options: make([]Option, 0, len(q.Options))}
		for _, o := range q.Options {
			question.Options = append(question.Options, Option{ID: o.ID, Text: o.Text})
		}
		attempt.Questions = append(attempt.Questions, question)
	}
	return attempt, nil
}

func (r *quizRepository) Submit(ctx context.Context, quizID int64, answers []api.AnswerDTO) error {
	_, err := r.api.SubmitQuiz(ctx, api.SubmitRequest{QuizID: quizID, Answers: answers})
	return err
}

func (r *quizRepository) Score(ctx context.Context, quizID int64) (*Result, error) {
	resp, err := r.api.ViewScore(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return BuildResult(quizID, resp), nil
}
