package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/saulo-duarte/quizclient/internal/auth"
)

var errNotLoggedIn = errors.New("not logged in: run `quizclient login` first")

// restore resolves the stored session before any command reads identity. A failed
// restore leaves the user logged out.
func restore(c *cli.Context) *auth.Session {
	session, err := containerFrom(c).Auth.Restore(c.Context)
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "stored session discarded: %v\n", err)
	}
	return session
}

func requireSession(c *cli.Context, roles ...auth.Role) (*auth.Session, error) {
	session := restore(c)
	if session == nil {
		return nil, cli.Exit(errNotLoggedIn.Error(), 1)
	}
	if len(roles) == 0 {
		return session, nil
	}
	for _, r := range roles {
		if session.Role == r {
			return session, nil
		}
	}
	return nil, cli.Exit(fmt.Sprintf("this command is not available to %s accounts", session.Role), 1)
}

func readLine(c *cli.Context, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(c.App.Writer, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "read from stdin when omitted"},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if password == "" {
				var err error
				password, err = readLine(c, bufio.NewReader(c.App.Reader), "Password: ")
				if err != nil {
					return cli.Exit("no password given", 1)
				}
			}

			session, err := containerFrom(c).Auth.Login(c.Context, c.String("username"), password)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return cli.Exit("Invalid credentials", 1)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("login failed: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "Logged in as %s (%s)\n", session.Username, session.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget stored credentials",
		Action: func(c *cli.Context) error {
			containerFrom(c).Auth.Logout(c.Context)
			fmt.Fprintln(c.App.Writer, "Logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the current session",
		Action: func(c *cli.Context) error {
			session := restore(c)
			if session == nil {
				fmt.Fprintln(c.App.Writer, "Not logged in")
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s (%s)\n", session.Username, session.Role)
			if session.Email != "" {
				fmt.Fprintf(c.App.Writer, "email: %s\n", session.Email)
			}
			if len(session.EnrolledCourses) > 0 {
				fmt.Fprintf(c.App.Writer, "enrolled: %s\n", strings.Join(session.EnrolledCourses, ", "))
			}
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a student account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			err := containerFrom(c).Auth.Register(c.Context, c.String("username"), c.String("email"), c.String("password"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("registration failed: %v", err), 1)
			}
			fmt.Fprintln(c.App.Writer, "Registered. You can now log in.")
			return nil
		},
	}
}
