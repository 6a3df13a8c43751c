package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/quiz"
)

func ptr(v int64) *int64 { return &v }

func TestBuildResult(t *testing.T) {
	resp := &api.ScoreResponse{
		QuizTitle: "Basics",
		Score:     1,
		Questions: []api.ScoreQuestion{
			{
				QuestionID: 1, QuestionText: "pick b", SelectedOptionID: ptr(12),
				Options: []api.ScoreOption{
					{OptionID: 11, Text: "a"},
					{OptionID: 12, Text: "b", IsCorrect: true},
				},
			},
			{
				QuestionID: 2, QuestionText: "two correct", SelectedOptionID: ptr(21),
				Options: []api.ScoreOption{
					{OptionID: 21, Text: "a"},
					{OptionID: 22, Text: "b", IsCorrect: true},
					{OptionID: 23, Text: "c", IsCorrect: true},
				},
			},
			{
				QuestionID: 3, QuestionText: "unanswered",
				Options: []api.ScoreOption{{OptionID: 31, Text: "a", IsCorrect: true}},
			},
			{
				QuestionID: 4, QuestionText: "duplicate ids", SelectedOptionID: ptr(41),
				Options: []api.ScoreOption{{OptionID: 41, Text: "a"}, {OptionID: 41, Text: "a again"}},
			},
		},
	}

	res := quiz.BuildResult(7, resp)
	require.Len(t, res.Questions, 4)
	assert.Equal(t, "Basics", res.QuizTitle)
	assert.Equal(t, 1.0, res.Score)

	t.Run("SelectedAndCorrect", func(t *testing.T) {
		q := res.Questions[0]
		sel, ok := q.SelectedOption()
		require.True(t, ok)
		assert.Equal(t, int64(12), sel.ID)
		assert.True(t, q.AnsweredCorrectly())
	})

	t.Run("ManyCorrect", func(t *testing.T) {
		q := res.Questions[1]
		assert.Len(t, q.CorrectOptions(), 2)
		assert.False(t, q.AnsweredCorrectly())
		assert.True(t, q.Options[0].IsSelected)
		assert.False(t, q.Options[0].IsCorrect)
	})

	t.Run("NothingSelected", func(t *testing.T) {
		_, ok := res.Questions[2].SelectedOption()
		assert.False(t, ok)
		assert.False(t, res.Questions[2].AnsweredCorrectly())
	})

	t.Run("AtMostOneSelected", func(t *testing.T) {
		q := res.Questions[3]
		assert.True(t, q.Options[0].IsSelected)
		assert.False(t, q.Options[1].IsSelected)
	})
}

func TestLetter(t *testing.T) {
	assert.Equal(t, "A", quiz.Letter(0))
	assert.Equal(t, "D", quiz.Letter(3))
	assert.Equal(t, "27", quiz.Letter(26))
}
