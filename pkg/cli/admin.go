package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/etm-murmansk/site/pkg/auth"
	"github.com/etm-murmansk/site/pkg/storage"
)

const (
	// AdminPasswordCost is the bcrypt cost used for administrator passwords
	AdminPasswordCost = 12
	minPasswordLength = 6
)

func newAdminCommand(e *env) *Command {
	cmd := &Command{
		Name:        "admin",
		Description: "Manage administrator accounts (direct database access)",
		Subcommands: make(map[string]*Command),
		Flags:       newFlagSet("admin"),
	}
	cmd.Subcommands["set-password"] = newSetPasswordCommand(e)
	return cmd
}

func newSetPasswordCommand(e *env) *Command {
	cmd := &Command{
		Name:        "set-password",
		Description: "Create an administrator or replace its password",
		Flags:       newFlagSet("set-password"),
	}

	login := cmd.Flags.String("login", "admin", "Administrator login")
	password := cmd.Flags.String("password", "", "New password (or SITE_ADMIN_PASSWORD)")
	migrate := cmd.Flags.Bool("migrate", false, "Create missing tables first")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		pw := *password
		if pw == "" {
			pw = e.getenv("SITE_ADMIN_PASSWORD")
		}
		return setPassword(e, strings.TrimSpace(*login), pw, *migrate)
	}
	return cmd
}

func setPassword(e *env, login, password string, migrate bool) error {
	if login == "" {
		return fmt.Errorf("login is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	db, err := e.openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if migrate {
		if err := storage.Migrate(ctx, db, cfg.Database.Driver); err != nil {
			return err
		}
	}

	hash, err := auth.HashPassword(password, AdminPasswordCost)
	if err != nil {
		return err
	}

	id, created, err := storage.NewAdminStore(db).SetPassword(ctx, login, hash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save administrator %s: %w", login, err)
	}

	if created {
		fmt.Fprintf(e.out, "Created administrator %s (id %d)\n", login, id)
	} else {
		fmt.Fprintf(e.out, "Updated password for administrator %s (id %d)\n", login, id)
	}
	return nil
}
