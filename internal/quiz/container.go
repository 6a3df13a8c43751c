package quiz

import "github.com/saulo-duarte/quizclient/internal/api"

type QuizContainer struct {
	Repo QuizRepository
}

func NewQuizContainer(d api.Doer) *QuizContainer {
	return &QuizContainer{Repo: NewRepository(d)}
}

// NewController returns a controller for one attempt view.
func (c *QuizContainer) NewController() *Controller {
	return NewController(c.Repo)
}
