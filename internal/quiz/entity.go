package quiz

import (
	"time"
)

type Status int

const (
	// StatusIdle is a controller that has not opened a quiz yet.
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusAnswering
	StatusSubmitting
	StatusCompleted
	StatusAlreadyCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusAnswering:
		return "answering"
	case StatusSubmitting:
		return "submitting"
	case StatusCompleted:
		return "completed"
	case StatusAlreadyCompleted:
		return "already_completed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

type ResultStatus int

const (
	ResultIdle ResultStatus = iota
	ResultLoading
	ResultReady
	ResultFailed
)

func (s ResultStatus) String() string {
	switch s {
	case ResultIdle:
		return "idle"
	case ResultLoading:
		return "loading"
	case ResultReady:
		return "ready"
	case ResultFailed:
		return "failed"
	}
	return "unknown"
}

type Option struct {
	ID   int64
	Text string
}

type Question struct {
	ID      int64
	Text    string
	Options []Option
}

func (q Question) hasOption(id int64) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

type Attempt struct {
	QuizID          int64
	Title           string
	DurationMinutes int
	Questions       []Question
	StartedAt       time.Time
}

// Deadline is zero for untimed quizzes.
func (a *Attempt) Deadline() time.Time {
	if a.DurationMinutes <= 0 || a.StartedAt.IsZero() {
		return time.Time{}
	}
	return a.StartedAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (a *Attempt) question(id int64) (Question, bool) {
	for _, q := range a.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (a *Attempt) clone() *Attempt {
	if a == nil {
		return nil
	}
	c := *a
	c.Questions = make([]Question, len(a.Questions))
	for i, q := range a.Questions {
		q.Options = append([]Option(nil), q.Options...)
		c.Questions[i] = q
	}
	return &c
}
