package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/apitest"
	"github.com/saulo-duarte/quizclient/internal/config"
)

func newBackend(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.AddUser(apitest.User{Username: "alice", Password: "pw1", Role: "student", Enrolled: []string{"CS101"}})
	srv.AddQuiz(apitest.Quiz{
		ID: 7, Title: "Basics", CourseCode: "CS101", DurationMinutes: 10,
		Questions: []apitest.Question{{
			ID: 1, Text: "2+2?",
			Options: []apitest.Option{{ID: 11, Text: "3"}, {ID: 12, Text: "4", Correct: true}},
		}},
	})
	return srv, api.NewClient(srv.BaseURL(), 5*time.Second)
}

func TestRequestRetried(t *testing.T) {
	req := api.Get("/profile")
	retried := req.Retried()

	assert.Equal(t, 0, req.Attempt())
	assert.Equal(t, 1, retried.Attempt())
	assert.Equal(t, req.Path, retried.Path)
}

func TestStatusErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  *api.StatusError
		is   error
		not  []error
	}{
		{"unauthorized", &api.StatusError{Status: http.StatusUnauthorized}, api.ErrAuthExpired, []error{api.ErrForbidden}},
		{"take already completed", &api.StatusError{Status: http.StatusBadRequest, Message: "You have already completed this quiz."}, api.ErrAlreadyAttempted, nil},
		{"submit already submitted", &api.StatusError{Status: http.StatusForbidden, Message: "You have already submitted this quiz."}, api.ErrAlreadyAttempted, []error{api.ErrForbidden}},
		{"plain forbidden", &api.StatusError{Status: http.StatusForbidden, Message: "Only teachers can access this."}, api.ErrForbidden, []error{api.ErrAlreadyAttempted}},
		{"not found", &api.StatusError{Status: http.StatusNotFound}, api.ErrNotFound, nil},
		{"server error", &api.StatusError{Status: http.StatusBadGateway}, api.ErrNetwork, []error{api.ErrAuthExpired}},
		{"other bad request", &api.StatusError{Status: http.StatusBadRequest, Message: "quiz_id is required."}, nil, []error{api.ErrAlreadyAttempted, api.ErrNetwork}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.is != nil {
				assert.ErrorIs(t, tt.err, tt.is)
			}
			for _, target := range tt.not {
				assert.NotErrorIs(t, tt.err, target)
			}
		})
	}
}

func TestClientEndpoints(t *testing.T) {
	ctx := context.Background()
	srv, client := newBackend(t)

	t.Run("obtain token with bad password", func(t *testing.T) {
		_, err := client.ObtainToken(ctx, "alice", "nope")
		require.ErrorIs(t, err, api.ErrAuthExpired)

		var statusErr *api.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Contains(t, statusErr.Message, "No active account")
	})

	t.Run("token and profile", func(t *testing.T) {
		pair, err := client.ObtainToken(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)

		profile, err := client.Profile(ctx, pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "student", profile.Role)
		assert.Equal(t, []string{"CS101"}, profile.EnrolledCourses)

		renewed, err := client.RefreshToken(ctx, pair.Refresh)
		require.NoError(t, err)
		assert.NotEqual(t, pair.Access, renewed.Access)
	})

	t.Run("anonymous doer is rejected on protected routes", func(t *testing.T) {
		quizzes := api.NewQuizAPI(api.Anonymous{Client: client})
		_, err := quizzes.TakeQuiz(ctx, 7)
		assert.ErrorIs(t, err, api.ErrAuthExpired)
	})

	t.Run("register then login", func(t *testing.T) {
		err := client.RegisterStudent(ctx, api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw2"})
		require.NoError(t, err)

		_, err = client.ObtainToken(ctx, "bob", "pw2")
		require.NoError(t, err)

		err = client.RegisterStudent(ctx, api.RegisterRequest{Username: "bob", Password: "pw2"})
		assert.Error(t, err)
	})

	assert.Equal(t, 1, srv.Hits(apitest.EndpointProfile))
}

func TestClientNetworkFailure(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1/api", time.Second)

	_, err := client.ObtainToken(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, api.ErrNetwork)
}

func TestClientForwardsRequestID(t *testing.T) {
	srv, client := newBackend(t)
	ctx := config.ContextWithRequestID(context.Background())

	pair, err := client.ObtainToken(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = client.Profile(ctx, pair.Access)
	require.NoError(t, err)

	assert.Equal(t, []string{config.RequestID(ctx)}, srv.RequestIDs())
}
