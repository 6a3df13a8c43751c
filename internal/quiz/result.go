package quiz

import (
	"strconv"

	"github.com/saulo-duarte/quizclient/internal/api"
)

type ResultOption struct {
	ID         int64
	Text       string
	IsCorrect  bool
	IsSelected bool
}

type ResultQuestion struct {
	ID      int64
	Text    string
	Options []ResultOption
}

// Result is the graded, read-only view of a finished attempt. Score comes from the server.
type Result struct {
	QuizID    int64
	QuizTitle string
	Score     float64
	Questions []ResultQuestion
}

// BuildResult pairs the server's correctness flags with the user's selection. At most
// one option is marked selected; any number may be marked correct.
func BuildResult(quizID int64, resp *api.ScoreResponse) *Result {
	res := &Result{
		QuizID:    quizID,
		QuizTitle: resp.QuizTitle,
		Score:     resp.Score,
		Questions: make([]ResultQuestion, 0, len(resp.Questions)),
	}
	for _, q := range resp.Questions {
		rq := ResultQuestion{ID: q.QuestionID, Text: q.QuestionText, Options: make([]ResultOption, 0, len(q.Options))}
		marked := false
		for _, o := range q.Options {
			selected := !marked && q.SelectedOptionID != nil && o.OptionID == *q.SelectedOptionID
			if selected {
				marked = true
			}
			rq.Options = append(rq.Options, ResultOption{
				ID:         o.OptionID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
				IsSelected: selected,
			})
		}
		res.Questions = append(res.Questions, rq)
	}
	return res
}

func (q ResultQuestion) SelectedOption() (ResultOption, bool) {
	for _, o := range q.Options {
		if o.IsSelected {
			return o, true
		}
	}
	return ResultOption{}, false
}

func (q ResultQuestion) CorrectOptions() []ResultOption {
	var out []ResultOption
	for _, o := range q.Options {
		if o.IsCorrect {
			out = append(out, o)
		}
	}
	return out
}

func (q ResultQuestion) AnsweredCorrectly() bool {
	o, ok := q.SelectedOption()
	return ok && o.IsCorrect
}

// Letter labels the i-th option: A, B, C and so on.
func Letter(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}
