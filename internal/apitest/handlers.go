package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	s.hit(EndpointToken)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[req.Username]
	if u == nil || u.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access":  s.sign(u.Username, "access", time.Hour),
		"refresh": s.sign(u.Username, "refresh", 24*time.Hour),
	})
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	s.hit(EndpointRefresh)

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.parse(req.Refresh, "refresh")
	if !ok || s.rejectRefresh || s.users[c.Subject] == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": s.sign(c.Subject, "access", time.Hour)})
}

func (s *Server) registerStudent(w http.ResponseWriter, r *http.Request) {
	s.hit(EndpointRegister)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users[req.Username] != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "A user with that username already exists."})
		return
	}
	s.users[req.Username] = &User{Username: req.Username, Email: req.Email, Password: req.Password, Role: "student"}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Student registered successfully."})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointProfile)

	body := map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	}
	if u.Role == "student" {
		body["enrolled_courses"] = sortedCopy(u.Enrolled)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) takeQuiz(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointTake)

	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failTakes > 0 {
		s.failTakes--
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	quiz := s.quizzes[id]
	if quiz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Quiz not found or not published."})
		return
	}
	if s.attempts[u.Username][id] != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgAlreadyCompleted})
		return
	}

	questions := make([]map[string]any, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]map[string]any, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, map[string]any{"id": o.ID, "text": o.Text})
		}
		questions = append(questions, map[string]any{"id": q.ID, "text": q.Text, "options": options})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               quiz.ID,
		"title":            quiz.Title,
		"duration_minutes": quiz.DurationMinutes,
		"questions":        questions,
	})
}

func (s *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointSubmit)

	var req struct {
		QuizID  int64 `json:"quiz_id"`
		Answers []struct {
			QuestionID       int64 `json:"question_id"`
			SelectedOptionID int64 `json:"selected_option_id"`
		} `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quiz_id is required."})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSubmits > 0 {
		s.failSubmits--
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	quiz := s.quizzes[req.QuizID]
	if quiz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Quiz not found."})
		return
	}
	if s.attempts[u.Username][quiz.ID] != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": msgAlreadySubmitted})
		return
	}

	answers := make(map[int64]int64, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.SelectedOptionID
	}
	if len(answers) != len(quiz.Questions) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All questions must be answered."})
		return
	}

	a := s.recordAttempt(u.Username, quiz, answers)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Quiz submitted successfully.", "score": a.score})
}

func (s *Server) viewScore(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointViewScore)

	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	quiz := s.quizzes[id]
	a := s.attempts[u.Username][id]
	if quiz == nil || a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Quiz not attempted or does not exist."})
		return
	}

	questions := make([]map[string]any, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]map[string]any, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, map[string]any{"option_id": o.ID, "text": o.Text, "is_correct": o.Correct})
		}
		var selected any
		if sel, ok := a.answers[q.ID]; ok {
			selected = sel
		}
		questions = append(questions, map[string]any{
			"question_id":        q.ID,
			"question_text":      q.Text,
			"selected_option_id": selected,
			"options":            options,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quiz_title": quiz.Title,
		"score":      a.score,
		"completed":  true,
		"questions":  questions,
	})
}

func (s *Server) studentCourses(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointCourses)

	if u.Role != "student" {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Only students can access their enrolled courses."})
		return
	}
	courses := make([]map[string]string, 0, len(u.Enrolled))
	for _, code := range sortedCopy(u.Enrolled) {
		courses = append(courses, map[string]string{"name": code, "code": code})
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) quizzesForCourse(w http.ResponseWriter, r *http.Request) {
	s.hit(EndpointQuizzes)

	code := chi.URLParam(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0)
	for _, q := range s.quizzes {
		if q.CourseCode == code {
			out = append(out, map[string]any{
				"id":               q.ID,
				"title":            q.Title,
				"duration_minutes": q.DurationMinutes,
				"num_questions":    len(q.Questions),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) teacherCourses(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointTeacherCourses)

	if u.Role != "teacher" {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Only teachers can access this."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"courses": []map[string]any{{"id": 1, "code": "CS101", "name": "Intro to Computing"}},
	})
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.hit(EndpointCreateQuiz)

	if u.Role != "teacher" {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Only teachers can create quizzes."})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Missing required fields."})
		return
	}

	s.mu.Lock()
	s.created = append(s.created, json.RawMessage(body))
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Quiz created successfully."})
}
