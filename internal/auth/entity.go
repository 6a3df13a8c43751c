package auth

import (
	"slices"
	"strings"

	"github.com/saulo-duarte/quizclient/internal/api"
)

type Phase int

const (
	// Uninitialized is the phase before Restore or Login has run.
	Uninitialized Phase = iota
	Loading
	Authenticated
	Anonymous
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type Session struct {
	Username string
	Email    string
	Role     Role
	// EnrolledCourses is only populated for students.
	EnrolledCourses []string
}

// State is what subscribers observe. Session is non-nil only when Phase is Authenticated.
type State struct {
	Phase   Phase
	Session *Session
}

func (s *Session) EnrolledIn(code string) bool {
	_, found := slices.BinarySearch(s.EnrolledCourses, code)
	return found
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.EnrolledCourses = slices.Clone(s.EnrolledCourses)
	return &c
}

func newSession(p *api.ProfileResponse) *Session {
	s := &Session{
		Username: p.Username,
		Email:    p.Email,
		Role:     Role(strings.ToLower(p.Role)),
	}
	if s.Role == RoleStudent {
		courses := slices.Clone(p.EnrolledCourses)
		slices.Sort(courses)
		s.EnrolledCourses = slices.Compact(courses)
	}
	return s
}
