package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etm-murmansk/site/pkg/client"
)

// ErrSessionInvalid is returned by check when there is no usable session
var ErrSessionInvalid = errors.New("no valid session, run site-cli login")

func newLoginCommand(e *env) *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Log in and store the session token",
		Flags:       newFlagSet("login"),
	}
	api := addAPIFlags(cmd.Flags, e)
	login := cmd.Flags.String("login", "admin", "Administrator login")
	password := cmd.Flags.String("password", "", "Password (or SITE_ADMIN_PASSWORD)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		pw := *password
		if pw == "" {
			pw = e.getenv("SITE_ADMIN_PASSWORD")
		}
		if *login == "" || pw == "" {
			return fmt.Errorf("login and password are required")
		}

		c, err := api.client(e)
		if err != nil {
			return err
		}
		s, err := c.Login(context.Background(), *login, pw)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Fprintf(e.out, "Logged in as %s, session expires %s\n", s.Login, s.ExpiresAt.Local().Format(time.RFC3339))
		return nil
	}
	return cmd
}

func newLogoutCommand(e *env) *Command {
	cmd := &Command{
		Name:        "logout",
		Description: "Revoke the stored session token",
		Flags:       newFlagSet("logout"),
	}
	api := addAPIFlags(cmd.Flags, e)

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		if err := c.Logout(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "Logged out")
		return nil
	}
	return cmd
}

func newCheckCommand(e *env) *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Validate the stored session and extend it",
		Flags:       newFlagSet("check"),
	}
	api := addAPIFlags(cmd.Flags, e)

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		ok, err := c.CheckSession(context.Background())
		if err != nil {
			return fmt.Errorf("session check failed: %w", err)
		}
		if !ok {
			return ErrSessionInvalid
		}
		s, _ := c.Tokens().Load()
		fmt.Fprintf(e.out, "Session valid for %s\n", s.Login)
		return nil
	}
	return cmd
}

func newKeepaliveCommand(e *env) *Command {
	cmd := &Command{
		Name:        "keepalive",
		Description: "Keep the session alive until interrupted",
		Flags:       newFlagSet("keepalive"),
	}
	api := addAPIFlags(cmd.Flags, e)
	interval := cmd.Flags.Duration("interval", client.DefaultKeepInterval, "Check interval")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return keepalive(ctx, e, c, *interval)
	}
	return cmd
}

// keepalive checks once, then on every interval until ctx is done or the
// server rejects the session
func keepalive(ctx context.Context, e *env, c *client.Client, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keeper := client.NewKeeper(c, client.WithInterval(interval), client.OnExpire(cancel))
	if !keeper.Check(ctx) {
		return ErrSessionInvalid
	}
	if err := keeper.Start(); err != nil {
		return err
	}
	defer keeper.Stop()

	fmt.Fprintf(e.out, "Keeping session alive (%s), press Ctrl+C to stop\n", keeper.Schedule())
	<-ctx.Done()

	if _, err := c.Tokens().Load(); errors.Is(err, client.ErrNoSession) {
		return ErrSessionInvalid
	}
	return nil
}
