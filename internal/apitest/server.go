// Package apitest runs an in-process fake of the quiz backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	EndpointToken          = "token"
	EndpointRefresh        = "token/refresh"
	EndpointProfile        = "profile"
	EndpointRegister       = "register/student"
	EndpointTake           = "quiz/take"
	EndpointSubmit         = "quiz/submit"
	EndpointViewScore      = "quiz/viewscore"
	EndpointCourses        = "courses"
	EndpointQuizzes        = "quizzes"
	EndpointTeacherCourses = "teacher/courses"
	EndpointCreateQuiz     = "create_quiz"
)

const (
	msgAlreadyCompleted = "You have already completed this quiz."
	msgAlreadySubmitted = "You have already submitted this quiz."
)

type User struct {
	Username string
	Email    string
	Password string
	Role     string
	Enrolled []string
}

type Option struct {
	ID      int64
	Text    string
	Correct bool
}

type Question struct {
	ID      int64
	Text    string
	Options []Option
}

type Quiz struct {
	ID              int64
	Title           string
	CourseCode      string
	DurationMinutes int
	Questions       []Question
}

type attempt struct {
	answers map[int64]int64
	score   float64
}

type claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]*User
	quizzes  map[int64]*Quiz
	attempts map[string]map[int64]*attempt
	live     map[string]bool
	hits     map[string]int
	bearers  map[string][]string
	created  []json.RawMessage
	reqIDs   []string

	rejectRefresh bool
	rejectAccess  bool
	refreshDelay  time.Duration
	failSubmits   int
	failTakes     int
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		secret:   []byte("apitest-secret-" + uuid.NewString()),
		users:    make(map[string]*User),
		quizzes:  make(map[int64]*Quiz),
		attempts: make(map[string]map[int64]*attempt),
		live:     make(map[string]bool),
		hits:     make(map[string]int),
		bearers:  make(map[string][]string),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root the client should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/token", s.obtainToken)
		r.Post("/token/refresh", s.refreshToken)
		r.Post("/register/student", s.registerStudent)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/profile", s.profile)
			r.Get("/quiz/{id}/take", s.takeQuiz)
			r.Post("/quiz/submit", s.submitQuiz)
			r.Get("/quiz/{id}/viewscore", s.viewScore)
			r.Get("/courses", s.studentCourses)
			r.Get("/quizzes/{code}", s.quizzesForCourse)
			r.Get("/teacher/courses", s.teacherCourses)
			r.Post("/create_quiz", s.createQuiz)
		})
	})
	return r
}

// RequestIDs lists the request id of every authenticated call in arrival order.
// Calls without an X-Request-Id header get one generated by the router.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reqIDs...)
}

func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = &u
}

func (s *Server) AddQuiz(q Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = &q
}

// CompleteQuiz records a finished attempt as if username had already submitted.
func (s *Server) CompleteQuiz(username string, quizID int64, answers map[int64]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz := s.quizzes[quizID]; quiz != nil {
		s.recordAttempt(username, quiz, answers)
	}
}

// IssuePair mints a credential pair for username without going through /token.
func (s *Server) IssuePair(username string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sign(username, "access", time.Hour), s.sign(username, "refresh", 24*time.Hour)
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = make(map[string]bool)
}

func (s *Server) RejectRefresh(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectRefresh = reject
}

// RejectAccess makes every access token answer 401, including ones issued later.
func (s *Server) RejectAccess(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAccess = reject
}

// SetRefreshDelay slows down /token/refresh so concurrent callers overlap.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

func (s *Server) FailNextSubmits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSubmits = n
}

func (s *Server) FailNextTakes(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTakes = n
}

func (s *Server) Hits(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[endpoint]
}

// Bearers returns every access token presented to endpoint in arrival order,
// including rejected ones. Hits only counts requests that passed authentication.
func (s *Server) Bearers(endpoint string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bearers[endpoint]...)
}

func (s *Server) CreatedQuizzes() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.created...)
}

func (s *Server) hit(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[endpoint]++
}

func (s *Server) sign(username, kind string, ttl time.Duration) string {
	jti := uuid.NewString()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	if kind == "access" {
		s.live[jti] = true
	}
	return signed
}

func (s *Server) parse(raw, kind string) (*claims, bool) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || c.Kind != kind {
		return nil, false
	}
	return c, true
}

func (s *Server) recordAttempt(username string, quiz *Quiz, answers map[int64]int64) *attempt {
	a := &attempt{answers: answers}
	for _, q := range quiz.Questions {
		for _, o := range q.Options {
			if o.Correct && answers[q.ID] == o.ID {
				a.score++
			}
		}
	}
	if s.attempts[username] == nil {
		s.attempts[username] = make(map[int64]*attempt)
	}
	s.attempts[username][quiz.ID] = a
	return a
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		endpoint := endpointFor(chi.RouteContext(r.Context()).RoutePattern())

		s.mu.Lock()
		s.bearers[endpoint] = append(s.bearers[endpoint], bearer)
		s.reqIDs = append(s.reqIDs, middleware.GetReqID(r.Context()))
		c, ok := s.parse(bearer, "access")
		if ok && (s.rejectAccess || !s.live[c.ID]) {
			ok = false
		}
		var user *User
		if ok {
			user = s.users[c.Subject]
		}
		s.mu.Unlock()

		if !ok || user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		r = r.WithContext(withUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

var protected = map[string]string{
	"/api/profile":             EndpointProfile,
	"/api/quiz/{id}/take":      EndpointTake,
	"/api/quiz/submit":         EndpointSubmit,
	"/api/quiz/{id}/viewscore": EndpointViewScore,
	"/api/courses":             EndpointCourses,
	"/api/quizzes/{code}":      EndpointQuizzes,
	"/api/teacher/courses":     EndpointTeacherCourses,
	"/api/create_quiz":         EndpointCreateQuiz,
}

func endpointFor(pattern string) string {
	if e, ok := protected[pattern]; ok {
		return e
	}
	return pattern
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
