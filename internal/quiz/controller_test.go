package quiz_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/apitest"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/credential"
	"github.com/saulo-duarte/quizclient/internal/quiz"
)

const quizID = 7

func fourQuestionQuiz() apitest.Quiz {
	q := apitest.Quiz{ID: quizID, Title: "Basics", CourseCode: "CS101", DurationMinutes: 10}
	for i := int64(1); i <= 4; i++ {
		question := apitest.Question{ID: i, Text: fmt.Sprintf("Question %d", i)}
		for k := int64(1); k <= 4; k++ {
			question.Options = append(question.Options, apitest.Option{
				ID:      i*10 + k,
				Text:    fmt.Sprintf("Option %d", k),
				Correct: k == 2,
			})
		}
		q.Questions = append(q.Questions, question)
	}
	return q
}

func newController(t *testing.T) (*apitest.Server, *quiz.Controller) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.AddUser(apitest.User{Username: "alice", Password: "pw1", Role: "student", Enrolled: []string{"CS101"}})
	srv.AddQuiz(fourQuestionQuiz())

	manager := auth.NewManager(api.NewClient(srv.BaseURL(), 5*time.Second), credential.NewMemoryStore())
	_, err := manager.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	return srv, quiz.NewController(quiz.NewRepository(manager))
}

func TestControllerFullAttempt(t *testing.T) {
	ctx := context.Background()
	srv, c := newController(t)

	require.NoError(t, c.Open(ctx, quizID))
	assert.Equal(t, quiz.StatusReady, c.Status())
	assert.False(t, c.CanSubmit())

	attempt := c.Attempt()
	require.Len(t, attempt.Questions, 4)
	assert.Equal(t, "Basics", attempt.Title)

	for _, qid := range []int64{1, 2, 3} {
		require.NoError(t, c.Select(qid, qid*10+2))
	}
	assert.Equal(t, quiz.StatusAnswering, c.Status())

	err := c.Submit(ctx)
	require.ErrorIs(t, err, quiz.ErrIncompleteAnswers)
	assert.Zero(t, srv.Hits(apitest.EndpointSubmit), "incomplete answers must not reach the server")
	assert.Equal(t, quiz.StatusAnswering, c.Status())

	require.NoError(t, c.Select(4, 41))
	require.NoError(t, c.Select(4, 42))
	assert.Len(t, c.Answers(), 4, "reselecting overwrites")
	assert.Equal(t, int64(42), c.Answers()[4])
	assert.True(t, c.CanSubmit())

	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, quiz.StatusCompleted, c.Status())
	assert.Nil(t, c.Attempt())
	assert.Empty(t, c.Answers())

	res, status, err := c.Result()
	require.NoError(t, err)
	assert.Equal(t, quiz.ResultReady, status)
	assert.Equal(t, 4.0, res.Score)
	for _, q := range res.Questions {
		assert.True(t, q.AnsweredCorrectly())
	}

	assert.ErrorIs(t, c.Select(1, 11), quiz.ErrNotAnswering)
	assert.ErrorIs(t, c.Submit(ctx), quiz.ErrNotAnswering)
	assert.Equal(t, 1, srv.Hits(apitest.EndpointSubmit))
}

func TestControllerAlreadyCompleted(t *testing.T) {
	ctx := context.Background()
	srv, c := newController(t)
	srv.CompleteQuiz("alice", quizID, map[int64]int64{1: 12, 2: 21, 3: 32, 4: 44})

	require.NoError(t, c.Open(ctx, quizID))
	assert.Equal(t, quiz.StatusAlreadyCompleted, c.Status())
	assert.Nil(t, c.LastError())
	assert.Equal(t, 1, srv.Hits(apitest.EndpointViewScore), "result is fetched automatically")

	res, status, err := c.Result()
	require.NoError(t, err)
	assert.Equal(t, quiz.ResultReady, status)
	assert.Equal(t, 2.0, res.Score)
}

func TestControllerOpenFailure(t *testing.T) {
	ctx := context.Background()
	_, c := newController(t)

	err := c.Open(ctx, 99)
	require.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, quiz.StatusFailed, c.Status())
	assert.ErrorIs(t, c.LastError(), api.ErrNotFound)
	assert.ErrorIs(t, c.Select(1, 11), quiz.ErrNotAnswering)
}

func TestControllerSubmitFailureKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	srv, c := newController(t)

	require.NoError(t, c.Open(ctx, quizID))
	for qid := int64(1); qid <= 4; qid++ {
		require.NoError(t, c.Select(qid, qid*10+1))
	}

	srv.FailNextSubmits(1)
	err := c.Submit(ctx)
	require.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, quiz.StatusAnswering, c.Status())
	assert.Len(t, c.Answers(), 4)
	assert.ErrorIs(t, c.LastError(), api.ErrNetwork)

	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, quiz.StatusCompleted, c.Status())
	assert.Nil(t, c.LastError())
}

func TestControllerSelectValidation(t *testing.T) {
	ctx := context.Background()
	_, c := newController(t)
	require.NoError(t, c.Open(ctx, quizID))

	assert.ErrorIs(t, c.Select(9, 11), quiz.ErrUnknownQuestion)
	assert.ErrorIs(t, c.Select(1, 21), quiz.ErrUnknownOption)
	assert.Empty(t, c.Answers())
	assert.Equal(t, quiz.StatusReady, c.Status())
}

func TestControllerRemaining(t *testing.T) {
	ctx := context.Background()
	_, c := newController(t)

	_, ok := c.Remaining(time.Now())
	assert.False(t, ok)

	require.NoError(t, c.Open(ctx, quizID))
	started := c.Attempt().StartedAt

	left, ok := c.Remaining(started.Add(4 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 6*time.Minute, left)

	left, _ = c.Remaining(started.Add(time.Hour))
	assert.Zero(t, left)
}

// blockingRepo holds Take and Submit replies until released.
type blockingRepo struct {
	entered    chan int64
	takeGate   map[int64]chan struct{}
	submitGate chan struct{}
	submitErr  error
}

func (r *blockingRepo) Take(ctx context.Context, id int64) (*quiz.Attempt, error) {
	if gate, ok := r.takeGate[id]; ok {
		r.entered <- id
		<-gate
	}
	return &quiz.Attempt{
		QuizID: id,
		Title:  fmt.Sprintf("Quiz %d", id),
		Questions: []quiz.Question{
			{ID: 1, Text: "only", Options: []quiz.Option{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}},
		},
	}, nil
}

func (r *blockingRepo) Submit(ctx context.Context, id int64, answers []api.AnswerDTO) error {
	if r.submitGate != nil {
		<-r.submitGate
	}
	return r.submitErr
}

func (r *blockingRepo) Score(ctx context.Context, id int64) (*quiz.Result, error) {
	return &quiz.Result{QuizID: id}, nil
}

func TestControllerDiscardsStaleFetch(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		entered:  make(chan int64, 1),
		takeGate: map[int64]chan struct{}{1: make(chan struct{})},
	}
	c := quiz.NewController(repo)
	assert.Equal(t, quiz.StatusIdle, c.Status())

	first := make(chan error, 1)
	go func() { first <- c.Open(ctx, 1) }()

	<-repo.entered
	require.NoError(t, c.Open(ctx, 2))

	close(repo.takeGate[1])
	assert.ErrorIs(t, <-first, quiz.ErrStaleResponse)
	assert.Equal(t, int64(2), c.Attempt().QuizID)
	assert.Equal(t, quiz.StatusReady, c.Status())
}

func TestControllerSingleSubmission(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{submitGate: make(chan struct{})}
	c := quiz.NewController(repo)

	require.NoError(t, c.Open(ctx, 1))
	require.NoError(t, c.Select(1, 2))

	first := make(chan error, 1)
	go func() { first <- c.Submit(ctx) }()

	require.Eventually(t, func() bool { return c.Status() == quiz.StatusSubmitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, c.Submit(ctx), quiz.ErrSubmitInProgress)
	assert.ErrorIs(t, c.Select(1, 1), quiz.ErrNotAnswering)

	close(repo.submitGate)
	require.NoError(t, <-first)
	assert.Equal(t, quiz.StatusCompleted, c.Status())
}

func TestControllerAlreadySubmittedCountsAsDone(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{submitErr: &api.StatusError{Status: 403, Message: "You have already submitted this quiz."}}
	c := quiz.NewController(repo)

	require.NoError(t, c.Open(ctx, 1))
	require.NoError(t, c.Select(1, 1))
	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, quiz.StatusCompleted, c.Status())

	_, status, _ := c.Result()
	assert.Equal(t, quiz.ResultReady, status)
}

func TestControllerAuthInvalidDiscardsAttempt(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{submitErr: fmt.Errorf("%w: refresh rejected", auth.ErrAuthInvalid)}
	c := quiz.NewController(repo)

	require.NoError(t, c.Open(ctx, 1))
	require.NoError(t, c.Select(1, 1))

	err := c.Submit(ctx)
	require.True(t, errors.Is(err, auth.ErrAuthInvalid))
	assert.Equal(t, quiz.StatusFailed, c.Status())
	assert.Nil(t, c.Attempt())
	assert.Empty(t, c.Answers())
}
