package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/etm-murmansk/site/pkg/client"
	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/storage"
)

const defaultAPIURL = "http://localhost:8080/api/"

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// env carries what commands need from the outside world
type env struct {
	out         io.Writer
	getenv      func(string) string
	loadConfig  func() (*config.Config, error)
	openDB      func(config.DatabaseConfig) (*sql.DB, error)
	clientOpts  []client.Option
	sessionPath string
}

func defaultEnv() *env {
	return &env{
		out:        os.Stdout,
		getenv:     os.Getenv,
		loadConfig: config.Load,
		openDB:     storage.Open,
	}
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	return newRootCommand(defaultEnv())
}

func newRootCommand(e *env) *Command {
	root := &Command{
		Name:        "site-cli",
		Description: "ETM site administration CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("site-cli", flag.ExitOnError),
	}

	root.Subcommands["admin"] = newAdminCommand(e)
	root.Subcommands["login"] = newLoginCommand(e)
	root.Subcommands["logout"] = newLogoutCommand(e)
	root.Subcommands["check"] = newCheckCommand(e)
	root.Subcommands["list"] = newListCommand(e)
	root.Subcommands["get"] = newGetCommand(e)
	root.Subcommands["create"] = newCreateCommand(e)
	root.Subcommands["update"] = newUpdateCommand(e)
	root.Subcommands["delete"] = newDeleteCommand(e)
	root.Subcommands["upload"] = newUploadCommand(e)
	root.Subcommands["keepalive"] = newKeepaliveCommand(e)

	root.setOutput(e.out)
	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs dispatches args to the matching subcommand. Leaf flags are
// reset to their defaults first so a command tree can be executed repeatedly.
func (c *Command) ExecuteArgs(args []string) error {
	if len(c.Subcommands) == 0 {
		c.resetFlags()
		return c.Run(args)
	}
	if len(args) == 0 || isHelp(args[0]) {
		return c.usage()
	}
	if sub, ok := c.Subcommands[args[0]]; ok {
		return sub.ExecuteArgs(args[1:])
	}
	return fmt.Errorf("unknown command: %s", args[0])
}

func (c *Command) resetFlags() {
	if c.Flags == nil {
		return
	}
	c.Flags.VisitAll(func(f *flag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
}

func isHelp(arg string) bool {
	return strings.EqualFold(arg, "-h") || strings.EqualFold(arg, "--help") || arg == "help"
}

func (c *Command) setOutput(w io.Writer) {
	if c.Flags != nil {
		c.Flags.SetOutput(w)
	}
	for _, sub := range c.Subcommands {
		sub.setOutput(w)
	}
}

// usage prints the command usage
func (c *Command) usage() error {
	out := io.Writer(os.Stdout)
	if c.Flags != nil {
		out = c.Flags.Output()
	}

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
