// Package authoring holds the instructor's quiz form and publishes it to the backend.
package authoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/saulo-duarte/quizclient/internal/aiquiz"
	"github.com/saulo-duarte/quizclient/internal/api"
)

var (
	ErrInvalidForm     = errors.New("quiz form is incomplete")
	ErrQuestionIndex   = errors.New("question index out of range")
	ErrNoQuestionCount = errors.New("a quiz needs at least one question")
)

type Form struct {
	CourseID        int64
	Title           string
	DurationMinutes int
	Questions       []aiquiz.Draft `copier:"-"`
}

func NewForm(numQuestions int) (*Form, error) {
	if numQuestions <= 0 {
		return nil, ErrNoQuestionCount
	}
	return &Form{Questions: make([]aiquiz.Draft, numQuestions)}, nil
}

// ApplyOptions keeps the question text already typed and takes the generated
// options and answer index.
func (f *Form) ApplyOptions(i int, d aiquiz.Draft) error {
	if i < 0 || i >= len(f.Questions) {
		return fmt.Errorf("%w: %d", ErrQuestionIndex, i)
	}
	f.Questions[i].Options = d.Options
	f.Questions[i].CorrectOption = d.CorrectOption
	return nil
}

// ReplaceAll swaps in a fully generated quiz; the question count follows the drafts.
func (f *Form) ReplaceAll(drafts []aiquiz.Draft) {
	f.Questions = append([]aiquiz.Draft(nil), drafts...)
}

func (f *Form) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if f.CourseID <= 0 {
		errs = append(errs, errors.New("course is required"))
	}
	if f.DurationMinutes <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	if len(f.Questions) == 0 {
		errs = append(errs, ErrNoQuestionCount)
	}
	for i, q := range f.Questions {
		if !q.Complete() {
			errs = append(errs, fmt.Errorf("question %d needs text and four options", i+1))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidForm, errors.Join(errs...))
	}
	return nil
}

var optionsConverter = copier.TypeConverter{
	SrcType: [aiquiz.OptionCount]string{},
	DstType: []string{},
	Fn: func(src any) (any, error) {
		opts, ok := src.([aiquiz.OptionCount]string)
		if !ok {
			return nil, fmt.Errorf("unexpected options type %T", src)
		}
		out := make([]string, len(opts))
		for i, o := range opts {
			out[i] = strings.TrimSpace(o)
		}
		return out, nil
	},
}

// Payload maps the form onto the create_quiz request body.
func (f *Form) Payload() (api.CreateQuizRequest, error) {
	var req api.CreateQuizRequest
	if err := copier.Copy(&req, f); err != nil {
		return req, fmt.Errorf("map quiz form: %w", err)
	}
	req.Title = strings.TrimSpace(req.Title)
	req.NumQuestions = len(f.Questions)

	opt := copier.Option{Converters: []copier.TypeConverter{optionsConverter}}
	req.Questions = make([]api.CreateQuestion, len(f.Questions))
	for i := range f.Questions {
		if err := copier.CopyWithOption(&req.Questions[i], &f.Questions[i], opt); err != nil {
			return req, fmt.Errorf("map question %d: %w", i+1, err)
		}
		req.Questions[i].Text = strings.TrimSpace(req.Questions[i].Text)
	}
	return req, nil
}
