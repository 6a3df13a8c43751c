// Package quiz drives a single attempt at a quiz: fetch once, collect one answer per
// question, submit once, then show the server's grade.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/config"
)

var (
	ErrIncompleteAnswers = errors.New("every question must be answered before submitting")
	ErrSubmitInProgress  = errors.New("submission already in progress")
	ErrNotAnswering      = errors.New("quiz is not accepting answers")
	ErrUnknownQuestion   = errors.New("question is not part of this quiz")
	ErrUnknownOption     = errors.New("option does not belong to the question")
	// ErrStaleResponse means a reply arrived for an operation that was superseded; it
	// was discarded.
	ErrStaleResponse = errors.New("response belongs to a superseded operation")
)

// Controller is owned by one view. All methods are safe for concurrent use, and every
// network completion is checked against the token of the operation that issued it.
type Controller struct {
	repo QuizRepository
	now  func() time.Time

	mu      sync.Mutex
	status  Status
	quizID  int64
	token   uuid.UUID
	attempt *Attempt
	answers map[int64]int64
	lastErr error

	resultStatus ResultStatus
	resultToken  uuid.UUID
	result       *Result
	resultErr    error
}

func NewController(repo QuizRepository) *Controller {
	return &Controller{repo: repo, now: time.Now}
}

// Open fetches quizID for a fresh attempt. A quiz the user already finished is not an
// error: the status becomes StatusAlreadyCompleted and the result is loaded instead.
func (c *Controller) Open(ctx context.Context, quizID int64) error {
	log := config.WithContext(ctx).WithField("quiz_id", quizID)

	c.mu.Lock()
	token := uuid.New()
	c.token = token
	c.quizID = quizID
	c.status = StatusLoading
	c.attempt = nil
	c.answers = make(map[int64]int64)
	c.lastErr = nil
	c.resultToken = uuid.Nil
	c.resultStatus = ResultIdle
	c.result = nil
	c.resultErr = nil
	c.mu.Unlock()

	attempt, err := c.repo.Take(ctx, quizID)

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		log.Debug("discarding quiz fetched for a superseded attempt")
		return ErrStaleResponse
	}
	switch {
	case err == nil:
		attempt.StartedAt = c.now()
		c.attempt = attempt
		c.status = StatusReady
	case errors.Is(err, api.ErrAlreadyAttempted):
		c.status = StatusAlreadyCompleted
	default:
		c.status = StatusFailed
		c.lastErr = err
	}
	status := c.status
	c.mu.Unlock()

	switch status {
	case StatusReady:
		log.WithField("questions", len(attempt.Questions)).Info("quiz ready")
		return nil
	case StatusAlreadyCompleted:
		log.Info("quiz already completed, loading result")
		return c.LoadResult(ctx, quizID)
	}
	log.WithError(err).Error("Failed to fetch quiz")
	return fmt.Errorf("take quiz %d: %w", quizID, err)
}

// Select records optionID as the answer to questionID, replacing any earlier choice.
func (c *Controller) Select(questionID, optionID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusReady && c.status != StatusAnswering {
		return fmt.Errorf("%w: status is %s", ErrNotAnswering, c.status)
	}
	q, ok := c.attempt.question(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !q.hasOption(optionID) {
		return fmt.Errorf("%w: option %d, question %d", ErrUnknownOption, optionID, questionID)
	}

	c.answers[questionID] = optionID
	c.status = StatusAnswering
	return nil
}

func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Controller) canSubmitLocked() bool {
	if c.status != StatusReady && c.status != StatusAnswering {
		return false
	}
	return len(c.answers) == len(c.attempt.Questions)
}

// Submit sends one answer per question. An incomplete answer set is rejected without
// contacting the server. On failure the answers are kept and the attempt stays in
// StatusAnswering so the user can retry.
func (c *Controller) Submit(ctx context.Context) error {
	log := config.WithContext(ctx)

	c.mu.Lock()
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if c.status != StatusReady && c.status != StatusAnswering {
		status := c.status
		c.mu.Unlock()
		return fmt.Errorf("%w: status is %s", ErrNotAnswering, status)
	}
	if !c.canSubmitLocked() {
		answered, total := len(c.answers), len(c.attempt.Questions)
		c.mu.Unlock()
		return fmt.Errorf("%w: %d of %d answered", ErrIncompleteAnswers, answered, total)
	}

	token, quizID := c.token, c.quizID
	answers := c.orderedAnswersLocked()
	c.status = StatusSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	log = log.WithField("quiz_id", quizID)
	err := c.repo.Submit(ctx, quizID, answers)

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		log.Debug("discarding submission reply for a superseded attempt")
		return ErrStaleResponse
	}
	switch {
	case err == nil || errors.Is(err, api.ErrAlreadyAttempted):
		c.status = StatusCompleted
		c.attempt = nil
		c.answers = nil
	case errors.Is(err, auth.ErrAuthInvalid):
		c.status = StatusFailed
		c.attempt = nil
		c.answers = nil
		c.lastErr = err
	default:
		c.status = StatusAnswering
		c.lastErr = err
	}
	status := c.status
	c.mu.Unlock()

	if status != StatusCompleted {
		log.WithError(err).Error("Failed to submit quiz")
		return fmt.Errorf("submit quiz %d: %w", quizID, err)
	}

	if err != nil {
		log.Info("server reports quiz already submitted, showing result")
	} else {
		log.Info("quiz submitted")
	}
	return c.LoadResult(ctx, quizID)
}

// LoadResult fetches the graded result. It is independent of the attempt state.
func (c *Controller) LoadResult(ctx context.Context, quizID int64) error {
	log := config.WithContext(ctx).WithField("quiz_id", quizID)

	c.mu.Lock()
	token := uuid.New()
	c.resultToken = token
	c.resultStatus = ResultLoading
	c.result = nil
	c.resultErr = nil
	c.mu.Unlock()

	res, err := c.repo.Score(ctx, quizID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resultToken != token {
		log.Debug("discarding superseded result")
		return ErrStaleResponse
	}
	if err != nil {
		c.resultStatus = ResultFailed
		c.resultErr = err
		log.WithError(err).Error("Failed to load quiz result")
		return fmt.Errorf("load result %d: %w", quizID, err)
	}
	c.resultStatus = ResultReady
	c.result = res
	return nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Attempt returns a copy of the active attempt, or nil once it has been discarded.
func (c *Controller) Attempt() *Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.clone()
}

func (c *Controller) Answers() map[int64]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]int64, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Result() (*Result, ResultStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.resultStatus, c.resultErr
}

// Remaining reports the time left on a timed attempt; ok is false when there is no
// active timed attempt.
func (c *Controller) Remaining(now time.Time) (left time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt == nil {
		return 0, false
	}
	deadline := c.attempt.Deadline()
	if deadline.IsZero() {
		return 0, false
	}
	left = deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	return left, true
}

func (c *Controller) orderedAnswersLocked() []api.AnswerDTO {
	out := make([]api.AnswerDTO, 0, len(c.answers))
	for _, q := range c.attempt.Questions {
		if sel, ok := c.answers[q.ID]; ok {
			out = append(out, api.AnswerDTO{QuestionID: q.ID, SelectedOptionID: sel})
		}
	}
	return out
}
