package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/saulo-duarte/quizclient/internal/aiquiz"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/quiz"
)

func coursesCommand() *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "list your courses",
		Action: func(c *cli.Context) error {
			session, err := requireSession(c)
			if err != nil {
				return err
			}
			ctn := containerFrom(c)

			if session.Role == auth.RoleStudent {
				courses, err := ctn.Courses.StudentCourses(c.Context)
				if err != nil {
					return cli.Exit(fmt.Sprintf("could not load courses: %v", err), 1)
				}
				for _, course := range courses {
					fmt.Fprintf(c.App.Writer, "%s\t%s\n", course.Code, course.Name)
				}
				return nil
			}

			courses, err := ctn.Authoring.Courses(c.Context)
			if err != nil {
				return cli.Exit(fmt.Sprintf("could not load courses: %v", err), 1)
			}
			for _, course := range courses {
				fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", course.ID, course.Code, course.Name)
			}
			return nil
		},
	}
}

func quizzesCommand() *cli.Command {
	return &cli.Command{
		Name:      "quizzes",
		Usage:     "list the quizzes of a course",
		ArgsUsage: "<course-code>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: quizclient quizzes <course-code>", 2)
			}
			if _, err := requireSession(c); err != nil {
				return err
			}

			quizzes, err := containerFrom(c).Courses.QuizzesForCourse(c.Context, c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("could not load quizzes: %v", err), 1)
			}
			for _, q := range quizzes {
				fmt.Fprintf(c.App.Writer, "%d\t%s\t%d questions\t%d min\n", q.ID, q.Title, q.NumQuestions, q.DurationMinutes)
			}
			return nil
		},
	}
}

func quizIDArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit(fmt.Sprintf("usage: quizclient %s <quiz-id>", c.Command.Name), 2)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid quiz id %q", c.Args().First()), 2)
	}
	return id, nil
}

func takeCommand() *cli.Command {
	return &cli.Command{
		Name:      "take",
		Usage:     "answer a quiz; each quiz can be submitted once",
		ArgsUsage: "<quiz-id>",
		Action: func(c *cli.Context) error {
			id, err := quizIDArg(c)
			if err != nil {
				return err
			}
			if _, err := requireSession(c, auth.RoleStudent); err != nil {
				return err
			}

			ctl := containerFrom(c).Quiz.NewController()
			openErr := ctl.Open(c.Context, id)

			switch ctl.Status() {
			case quiz.StatusAlreadyCompleted:
				fmt.Fprintln(c.App.Writer, "You have already completed this quiz.")
				return showResult(c, ctl, nil)
			case quiz.StatusFailed:
				return cli.Exit(fmt.Sprintf("could not open quiz: %v", openErr), 1)
			}

			reader := bufio.NewReader(c.App.Reader)
			if err := answerAll(c, ctl, reader); err != nil {
				return err
			}
			if err := submit(c, ctl, reader); err != nil {
				return err
			}
			return showResult(c, ctl, nil)
		},
	}
}

func answerAll(c *cli.Context, ctl *quiz.Controller, reader *bufio.Reader) error {
	attempt := ctl.Attempt()

	fmt.Fprintf(c.App.Writer, "%s\n", attempt.Title)
	for i, q := range attempt.Questions {
		if left, ok := ctl.Remaining(time.Now()); ok {
			fmt.Fprintf(c.App.Writer, "\n[%s left]", left.Round(time.Second))
		}
		fmt.Fprintf(c.App.Writer, "\n%d. %s\n", i+1, q.Text)
		for k, o := range q.Options {
			fmt.Fprintf(c.App.Writer, "   %s) %s\n", quiz.Letter(k), o.Text)
		}

		for {
			line, err := readLine(c, reader, "Answer: ")
			if err != nil {
				return cli.Exit("input closed before the quiz was finished; nothing was submitted", 1)
			}
			k, ok := parseChoice(line, len(q.Options))
			if !ok {
				fmt.Fprintf(c.App.Writer, "Pick a letter between A and %s.\n", quiz.Letter(len(q.Options)-1))
				continue
			}
			if err := ctl.Select(q.ID, q.Options[k].ID); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			break
		}
	}
	return nil
}

func submit(c *cli.Context, ctl *quiz.Controller, reader *bufio.Reader) error {
	for {
		err := ctl.Submit(c.Context)
		if err == nil {
			fmt.Fprintln(c.App.Writer, "\nQuiz submitted.")
			return nil
		}
		if ctl.Status() == quiz.StatusCompleted {
			// Submitted, but the result fetch failed; showResult reports it.
			return nil
		}
		if ctl.Status() != quiz.StatusAnswering || errors.Is(err, quiz.ErrIncompleteAnswers) {
			return cli.Exit(fmt.Sprintf("submission failed: %v", err), 1)
		}

		answer, readErr := readLine(c, reader, fmt.Sprintf("Submission failed (%v). Retry? [Y/n] ", err))
		if readErr != nil || strings.EqualFold(answer, "n") {
			return cli.Exit("quiz not submitted", 1)
		}
	}
}

func parseChoice(s string, n int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if len(s) == 1 {
		r := strings.ToUpper(s)[0]
		if r >= 'A' && int(r-'A') < n {
			return int(r - 'A'), true
		}
	}
	if k, err := strconv.Atoi(s); err == nil && k >= 1 && k <= n {
		return k - 1, true
	}
	return 0, false
}

func resultCommand() *cli.Command {
	return &cli.Command{
		Name:      "result",
		Usage:     "show the graded result of a quiz you completed",
		ArgsUsage: "<quiz-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "explain", Usage: "ask the generator why each wrong answer is wrong"},
		},
		Action: func(c *cli.Context) error {
			id, err := quizIDArg(c)
			if err != nil {
				return err
			}
			if _, err := requireSession(c); err != nil {
				return err
			}

			ctl := containerFrom(c).Quiz.NewController()
			_ = ctl.LoadResult(c.Context, id)

			var explanations *aiquiz.ExplanationCache
			if c.Bool("explain") {
				explanations = containerFrom(c).AIQuiz.NewExplanations()
			}
			return showResult(c, ctl, explanations)
		},
	}
}

func showResult(c *cli.Context, ctl *quiz.Controller, explanations *aiquiz.ExplanationCache) error {
	res, status, err := ctl.Result()
	if status != quiz.ResultReady {
		return cli.Exit(fmt.Sprintf("could not load result: %v", err), 1)
	}
	printResult(c.App.Writer, res)

	if explanations == nil {
		return nil
	}
	for i, q := range res.Questions {
		sel, ok := q.SelectedOption()
		if !ok || sel.IsCorrect {
			continue
		}
		text, err := explanations.Explain(c.Context, q.ID, sel.ID, q.Text, sel.Text)
		if err != nil {
			fmt.Fprintf(c.App.Writer, "\n%d. Failed to get explanation: %v\n", i+1, err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "\n%d. Why %q is wrong: %s\n", i+1, sel.Text, text)
	}
	return nil
}

func printResult(w io.Writer, res *quiz.Result) {
	fmt.Fprintf(w, "\n%s\nScore: %g / %d\n", res.QuizTitle, res.Score, len(res.Questions))
	for i, q := range res.Questions {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, q.Text)
		for k, o := range q.Options {
			mark := " "
			if o.IsSelected {
				mark = ">"
			}
			suffix := ""
			switch {
			case o.IsCorrect && o.IsSelected:
				suffix = "  (your answer, correct)"
			case o.IsCorrect:
				suffix = "  (correct)"
			case o.IsSelected:
				suffix = "  (your answer)"
			}
			fmt.Fprintf(w, " %s %s) %s%s\n", mark, quiz.Letter(k), o.Text, suffix)
		}
	}
}
