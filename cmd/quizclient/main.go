package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/container"
)

const containerKey = "container"

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "quizclient",
		Usage:     "take quizzes and author them from the terminal",
		Reader:    in,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "directory containing quizclient.yaml",
				EnvVars: []string{"QUIZCLIENT_CONFIG_DIR"},
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print client metrics after the command",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			ctn, err := container.New(c.Context, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			c.App.Metadata = map[string]any{containerKey: ctn}
			c.Context = config.ContextWithRequestID(c.Context)
			return nil
		},
		After: func(c *cli.Context) error {
			ctn, ok := c.App.Metadata[containerKey].(*container.Container)
			if !ok {
				return nil
			}
			if c.Bool("metrics") {
				printMetrics(c.App.Writer, ctn)
			}
			return ctn.Close()
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			registerCommand(),
			coursesCommand(),
			quizzesCommand(),
			takeCommand(),
			resultCommand(),
			generateOptionsCommand(),
			generateQuizCommand(),
		},
	}
}

func containerFrom(c *cli.Context) *container.Container {
	return c.App.Metadata[containerKey].(*container.Container)
}

func printMetrics(w io.Writer, ctn *container.Container) {
	families, err := ctn.Registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "metrics unavailable: %v\n", err)
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := ""
			for _, l := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%s %g\n", f.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s%s count=%d sum=%g\n", f.GetName(), labels,
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}
