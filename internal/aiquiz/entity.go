package aiquiz

import "strings"

const OptionCount = 4

// Draft is a generated question awaiting review. It always has exactly OptionCount
// options and a CorrectOption in [0, OptionCount).
type Draft struct {
	Text          string              `json:"text"`
	Options       [OptionCount]string `json:"options"`
	CorrectOption int                 `json:"correct_option"`
}

// Complete reports whether the draft has question text and four non-blank options.
func (d Draft) Complete() bool {
	if strings.TrimSpace(d.Text) == "" {
		return false
	}
	for _, o := range d.Options {
		if strings.TrimSpace(o) == "" {
			return false
		}
	}
	return true
}

type QuestionRequest struct {
	Topic         string
	Difficulty    string
	Count         int
	CourseContext string
}

type Stage string

const (
	StageStrict   Stage = "strict"
	StageFallback Stage = "fallback"
	StageJSON     Stage = "json"
	StageNone     Stage = "none"
)

type ParseResult struct {
	Draft Draft
	OK    bool
	Stage Stage
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > OptionCount-1 {
		return OptionCount - 1
	}
	return i
}
