package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/tradedesk/internal/app"
)

var sessionCommands = []subcommands.Command{
	&loginCmd{},
	&logoutCmd{},
	&whoamiCmd{},
}

type loginCmd struct {
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in and store the session" }
func (*loginCmd) Usage() string {
	return `tradedesk login -u <username> [-p <password>]

  Signs in to the brokerage backend. The password is read from -p,
  TRADEDESK_PASSWORD, or the first line of stdin, in that order.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", os.Getenv("TRADEDESK_USERNAME"), "Username or email.")
	f.StringVar(&c.password, "p", "", "Password.")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(os.Stderr, "Error: -u is required.")
		return subcommands.ExitUsageError
	}
	password := c.password
	if password == "" {
		password = os.Getenv("TRADEDESK_PASSWORD")
	}

	return withApp(ctx, func(a *app.App) error {
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			p, err := readLine(os.Stdin)
			if err != nil {
				return err
			}
			password = p
		}
		if _, err := a.Client.Login(ctx, c.username, password); err != nil {
			return err
		}
		fmt.Printf("Signed in as %s.\n", c.username)
		return nil
	})
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type logoutCmd struct{}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "sign out and forget the stored session" }
func (*logoutCmd) Usage() string            { return "tradedesk logout\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		a.Client.Logout(ctx)
		fmt.Println("Signed out.")
		return nil
	})
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "show the signed-in user" }
func (*whoamiCmd) Usage() string            { return "tradedesk whoami\n" }
func (*whoamiCmd) SetFlags(_ *flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		user, err := a.Client.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		return nil
	})
}
