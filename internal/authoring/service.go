package authoring

import (
	"context"
	"fmt"

	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/config"
)

type Service interface {
	Courses(ctx context.Context) ([]api.Course, error)
	Publish(ctx context.Context, f *Form) error
}

type service struct {
	courses *api.CourseAPI
}

func NewService(d api.Doer) Service {
	return &service{courses: api.NewCourseAPI(d)}
}

func (s *service) Courses(ctx context.Context) ([]api.Course, error) {
	courses, err := s.courses.TeacherCourses(ctx)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list teacher courses")
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// Publish validates f and creates the quiz. Nothing is sent for an invalid form.
func (s *service) Publish(ctx context.Context, f *Form) error {
	log := config.WithContext(ctx).WithField("title", f.Title)

	if err := f.Validate(); err != nil {
		return err
	}
	req, err := f.Payload()
	if err != nil {
		return err
	}
	if err := s.courses.CreateQuiz(ctx, req); err != nil {
		log.WithError(err).Error("Failed to create quiz")
		return fmt.Errorf("create quiz: %w", err)
	}
	log.WithField("questions", req.NumQuestions).Info("quiz created")
	return nil
}
