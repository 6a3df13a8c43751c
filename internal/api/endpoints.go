package api

import (
	"context"
	"fmt"
	"net/url"
)

// ObtainToken exchanges a username and password for a credential pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.Send(ctx, Post("/token", TokenRequest{Username: username, Password: password}), "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefreshToken(ctx context.Context, refresh string) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.Send(ctx, Post("/token/refresh", RefreshRequest{Refresh: refresh}), "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, access string) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.Send(ctx, Get("/profile"), access, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterStudent(ctx context.Context, req RegisterRequest) error {
	return c.Send(ctx, Post("/register/student", req), "", nil)
}

type QuizAPI struct {
	doer Doer
}

func NewQuizAPI(d Doer) *QuizAPI {
	return &QuizAPI{doer: d}
}

func (a *QuizAPI) TakeQuiz(ctx context.Context, quizID int64) (*QuizDetail, error) {
	var out QuizDetail
	if err := a.doer.Do(ctx, Get(fmt.Sprintf("/quiz/%d/take", quizID)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *QuizAPI) SubmitQuiz(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := a.doer.Do(ctx, Post("/quiz/submit", req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *QuizAPI) ViewScore(ctx context.Context, quizID int64) (*ScoreResponse, error) {
	var out ScoreResponse
	if err := a.doer.Do(ctx, Get(fmt.Sprintf("/quiz/%d/viewscore", quizID)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CourseAPI struct {
	doer Doer
}

func NewCourseAPI(d Doer) *CourseAPI {
	return &CourseAPI{doer: d}
}

func (a *CourseAPI) StudentCourses(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := a.doer.Do(ctx, Get("/courses"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *CourseAPI) QuizzesForCourse(ctx context.Context, courseCode string) ([]QuizSummary, error) {
	var out []QuizSummary
	if err := a.doer.Do(ctx, Get("/quizzes/"+url.PathEscape(courseCode)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *CourseAPI) TeacherCourses(ctx context.Context) ([]Course, error) {
	var out TeacherCoursesResponse
	if err := a.doer.Do(ctx, Get("/teacher/courses"), &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (a *CourseAPI) CreateQuiz(ctx context.Context, req CreateQuizRequest) error {
	return a.doer.Do(ctx, Post("/create_quiz", req), nil)
}
