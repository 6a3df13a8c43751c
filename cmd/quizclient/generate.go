package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/saulo-duarte/quizclient/internal/aiquiz"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/authoring"
	"github.com/saulo-duarte/quizclient/internal/quiz"
)

func generateOptionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate-options",
		Usage:     "draft four options and the correct answer for a question",
		ArgsUsage: "<question text>",
		Action: func(c *cli.Context) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return cli.Exit("usage: quizclient generate-options <question text>", 2)
			}
			if _, err := requireSession(c, auth.RoleTeacher, auth.RoleAdmin); err != nil {
				return err
			}

			draft, err := containerFrom(c).AIQuiz.Service.GenerateOptionsForQuestion(c.Context, question)
			if errors.Is(err, aiquiz.ErrMalformedGeneration) {
				return cli.Exit("The generator's answer could not be parsed. Try again.", 1)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("Failed to generate options: %v", err), 1)
			}
			printDraft(c.App.Writer, 0, draft)
			return nil
		},
	}
}

func generateQuizCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate-quiz",
		Usage: "draft a whole quiz and optionally publish it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Required: true},
			&cli.StringFlag{Name: "difficulty", Value: "medium"},
			&cli.IntFlag{Name: "count", Value: 5},
			&cli.Int64Flag{Name: "course-id", Usage: "course the quiz belongs to"},
			&cli.StringFlag{Name: "title"},
			&cli.IntFlag{Name: "duration", Usage: "minutes", Value: 10},
			&cli.BoolFlag{Name: "publish", Usage: "create the quiz on the server"},
		},
		Action: func(c *cli.Context) error {
			if _, err := requireSession(c, auth.RoleTeacher, auth.RoleAdmin); err != nil {
				return err
			}
			ctn := containerFrom(c)

			courseName := ""
			if id := c.Int64("course-id"); id > 0 {
				courses, err := ctn.Authoring.Courses(c.Context)
				if err != nil {
					return cli.Exit(fmt.Sprintf("could not load courses: %v", err), 1)
				}
				for _, course := range courses {
					if course.ID == id {
						courseName = course.Name
					}
				}
			}

			drafts, err := ctn.AIQuiz.Service.GenerateFullQuiz(c.Context, aiquiz.QuestionRequest{
				Topic:         c.String("topic"),
				Difficulty:    c.String("difficulty"),
				Count:         c.Int("count"),
				CourseContext: courseName,
			})
			switch {
			case errors.Is(err, aiquiz.ErrInvalidQuestionCount):
				return cli.Exit("--count must be at least 1", 2)
			case errors.Is(err, aiquiz.ErrMalformedGeneration):
				return cli.Exit("The generator did not return valid JSON. Try again.", 1)
			case err != nil:
				return cli.Exit(fmt.Sprintf("Failed to generate quiz: %v", err), 1)
			}
			for i, d := range drafts {
				printDraft(c.App.Writer, i+1, d)
			}

			if !c.Bool("publish") {
				return nil
			}

			form, err := authoring.NewForm(len(drafts))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			form.CourseID = c.Int64("course-id")
			form.Title = c.String("title")
			form.DurationMinutes = c.Int("duration")
			form.ReplaceAll(drafts)

			if err := ctn.Authoring.Publish(c.Context, form); err != nil {
				return cli.Exit(fmt.Sprintf("quiz not published: %v", err), 1)
			}
			fmt.Fprintln(c.App.Writer, "\nQuiz created successfully.")
			return nil
		},
	}
}

func printDraft(w io.Writer, n int, d aiquiz.Draft) {
	if n > 0 {
		fmt.Fprintf(w, "\n%d. %s\n", n, d.Text)
	} else {
		fmt.Fprintf(w, "%s\n", d.Text)
	}
	for k, o := range d.Options {
		mark := " "
		if k == d.CorrectOption {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s) %s\n", mark, quiz.Letter(k), o)
	}
}
