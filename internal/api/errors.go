package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthExpired means the server rejected the bearer credential (401).
	ErrAuthExpired = errors.New("access credential rejected")
	// ErrAlreadyAttempted is a routing signal: the quiz was already completed by this user.
	ErrAlreadyAttempted = errors.New("quiz already completed")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	// ErrNetwork covers transport failures and server errors.
	ErrNetwork = errors.New("network failure")
)

var alreadyAttemptedMarkers = []string{
	"already completed",
	"already submitted",
}

type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthExpired:
		return e.Status == http.StatusUnauthorized
	case ErrAlreadyAttempted:
		return e.alreadyAttempted()
	case ErrForbidden:
		return e.Status == http.StatusForbidden && !e.alreadyAttempted()
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrNetwork:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

func (e *StatusError) alreadyAttempted() bool {
	if e.Status != http.StatusBadRequest && e.Status != http.StatusForbidden {
		return false
	}
	msg := strings.ToLower(e.Message)
	for _, marker := range alreadyAttemptedMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// errorBody covers the two error shapes the backend emits: {"error": ...} and {"detail": ...}.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (b errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Detail
}
