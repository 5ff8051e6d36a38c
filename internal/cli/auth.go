package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/resourcecache"
	"github.com/goliatone/go-portfolio-client/session"
)

// EnvPassword supplies the login password when no flag is given.
const EnvPassword = "PORTFOLIO_PASSWORD"

func (a *App) newLoginCommand() *cobra.Command {
	var username, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session tokens",
		Long: `Sign in with an admin account. The password is read from --password,
then $PORTFOLIO_PASSWORD, then the first line of stdin with --password-stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return WrapExitError(ExitCommandError, "read password", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if username == "" || password == "" {
				return NewExitError(ExitCommandError, "username and password are required")
			}

			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}

			res, err := c.Services().Auth.Login(cmd.Context(), models.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}

			user := res.Data.User
			return a.formatter(cmd).Success(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s (%s)\n", user.Username, user.Role)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Services().Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			return a.formatter(cmd).Success(map[string]bool{"authenticated": false}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		},
	}
}

// StatusReport is the output of the status command.
type StatusReport struct {
	APIURL    string                   `json:"api_url"`
	Session   session.Status           `json:"session"`
	User      *models.User             `json:"user,omitempty"`
	Dashboard *resourcecache.Dashboard `json:"dashboard,omitempty"`
}

func (a *App) newStatusCommand() *cobra.Command {
	var dashboard bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and, optionally, the admin dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			report := StatusReport{
				APIURL:  c.Client().BaseURL(),
				Session: c.Session().Status(ctx),
			}
			if user, ok := c.Services().Auth.Profile(ctx); ok {
				report.User = &user
			}
			if dashboard {
				if !report.Session.Authenticated {
					return NewExitError(ExitFailure, "not logged in")
				}
				d, err := c.Dashboard().Get(ctx)
				if err != nil {
					return err
				}
				report.Dashboard = &d
			}

			return a.formatter(cmd).Success(report, func(w io.Writer) error {
				return writeStatus(w, report)
			})
		},
	}

	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "include the admin statistics")
	return cmd
}

func writeStatus(w io.Writer, r StatusReport) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "API\t%s\n", r.APIURL)
	fmt.Fprintf(tw, "Authenticated\t%s\n", yesNo(r.Session.Authenticated))
	if r.User != nil {
		fmt.Fprintf(tw, "User\t%s (%s)\n", r.User.Username, r.User.Role)
	}
	if r.Session.ExpiresAt != nil {
		state := "valid"
		if r.Session.Expired {
			state = "expired"
		}
		fmt.Fprintf(tw, "Access token\t%s, expires %s\n", state, r.Session.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "Refresh token\t%s\n", yesNo(r.Session.HasRefreshToken))

	if d := r.Dashboard; d != nil {
		fmt.Fprintf(tw, "Skills\t%d (%d featured)\n", d.Skills.TotalSkills, d.Skills.FeaturedSkills)
		fmt.Fprintf(tw, "Projects\t%d (%d featured)\n", d.Projects.TotalProjects, d.Projects.FeaturedProjects)
		fmt.Fprintf(tw, "Posts\t%d (%d published, %d drafts)\n", d.Blog.TotalPosts, d.Blog.PublishedPosts, d.Blog.DraftPosts)
		fmt.Fprintf(tw, "Messages\t%d (%d new)\n", d.Contact.TotalMessages, d.Contact.NewMessages)
	}
	return tw.Flush()
}
