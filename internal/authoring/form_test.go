package authoring_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/quizclient/internal/aiquiz"
	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/apitest"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/authoring"
	"github.com/saulo-duarte/quizclient/internal/credential"
)

func filledForm(t *testing.T) *authoring.Form {
	t.Helper()
	f, err := authoring.NewForm(2)
	require.NoError(t, err)
	f.CourseID = 1
	f.Title = " Arithmetic "
	f.DurationMinutes = 15
	f.Questions[0].Text = "What is 2+2?"
	f.Questions[1].Text = "What is 3+3?"
	require.NoError(t, f.ApplyOptions(0, aiquiz.Draft{Text: "ignored", Options: [4]string{"4", "5", "6", "7"}, CorrectOption: 0}))
	require.NoError(t, f.ApplyOptions(1, aiquiz.Draft{Options: [4]string{"5", " 6 ", "7", "8"}, CorrectOption: 1}))
	return f
}

func TestNewForm(t *testing.T) {
	_, err := authoring.NewForm(0)
	assert.ErrorIs(t, err, authoring.ErrNoQuestionCount)

	f, err := authoring.NewForm(3)
	require.NoError(t, err)
	assert.Len(t, f.Questions, 3)
}

func TestApplyOptions(t *testing.T) {
	f := filledForm(t)
	assert.Equal(t, "What is 2+2?", f.Questions[0].Text, "typed text is kept")
	assert.ErrorIs(t, f.ApplyOptions(5, aiquiz.Draft{}), authoring.ErrQuestionIndex)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, filledForm(t).Validate())

	f := filledForm(t)
	f.Title = ""
	f.Questions[1].Options[2] = " "
	err := f.Validate()
	require.ErrorIs(t, err, authoring.ErrInvalidForm)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "question 2")

	f = filledForm(t)
	f.ReplaceAll(make([]aiquiz.Draft, 4))
	assert.ErrorIs(t, f.Validate(), authoring.ErrInvalidForm)
}

func TestPayload(t *testing.T) {
	req, err := filledForm(t).Payload()
	require.NoError(t, err)

	assert.Equal(t, int64(1), req.CourseID)
	assert.Equal(t, "Arithmetic", req.Title)
	assert.Equal(t, 15, req.DurationMinutes)
	assert.Equal(t, 2, req.NumQuestions)
	require.Len(t, req.Questions, 2)
	assert.Equal(t, api.CreateQuestion{Text: "What is 3+3?", Options: []string{"5", "6", "7", "8"}, CorrectOption: 1}, req.Questions[1])
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	srv.AddUser(apitest.User{Username: "tina", Password: "pw2", Role: "teacher"})

	manager := auth.NewManager(api.NewClient(srv.BaseURL(), 5*time.Second), credential.NewMemoryStore())
	_, err := manager.Login(ctx, "tina", "pw2")
	require.NoError(t, err)
	svc := authoring.NewService(manager)

	courses, err := svc.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)

	invalid := filledForm(t)
	invalid.DurationMinutes = 0
	require.ErrorIs(t, svc.Publish(ctx, invalid), authoring.ErrInvalidForm)
	assert.Zero(t, srv.Hits(apitest.EndpointCreateQuiz))

	require.NoError(t, svc.Publish(ctx, filledForm(t)))

	created := srv.CreatedQuizzes()
	require.Len(t, created, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(created[0], &body))
	assert.Equal(t, "Arithmetic", body["title"])
	assert.EqualValues(t, 2, body["num_questions"])
	questions := body["questions"].([]any)
	first := questions[0].(map[string]any)
	assert.Equal(t, []any{"4", "5", "6", "7"}, first["options"])
	assert.EqualValues(t, 0, first["correct_option"])
}
