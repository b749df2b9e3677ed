// Package main implements the engagement CLI.
//
// Each invocation loads the ledger from storage, applies one command and
// writes it back. The record command reads a single JSON activity event from
// stdin, which makes the binary usable as a hook:
//
//	echo '{"track":"view","item_id":42,"item_type":"task"}' | engagement record
//
// Exit codes:
//   - 0: Success (including events that ask for nothing)
//   - 1: Error (invalid input, bad config, storage failure)
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JamesPrial/todo-engagement/internal/app"
	"github.com/JamesPrial/todo-engagement/internal/config"
	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/hook"
	"github.com/JamesPrial/todo-engagement/internal/sound"
)

// cli carries the streams and global flags shared by every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	projectDir string
	configPath string
	noSound    bool
	debug      bool
}

// open loads configuration and starts the services for one command.
func (c *cli) open() (*app.App, error) {
	dir := strings.TrimSpace(c.projectDir)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv("CLAUDE_PROJECT_DIR"))
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine project directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.Load(dir, c.configPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", 0)
	if c.debug {
		logger = log.New(c.stderr, "[engagement] ", log.LstdFlags)
	}

	var opts app.Options
	if c.noSound {
		opts.Player = sound.NopPlayer{}
	}
	return app.New(cfg, logger, opts)
}

// withApp runs fn against freshly opened services and closes them afterwards.
func (c *cli) withApp(fn func(*app.App) error) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	fnErr := fn(a)
	a.Sound.Wait()
	if err := a.Close(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "engagement",
		Short:         "Track notification engagement for tasks, goals and reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVarP(&c.projectDir, "project", "p", "", "Project directory (default: $CLAUDE_PROJECT_DIR or the working directory)")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: <project>/.claude/engagement.yaml)")
	root.PersistentFlags().BoolVar(&c.noSound, "no-sound", false, "Never play sound alerts")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "Log diagnostics to stderr")

	root.AddCommand(
		recordCmd(c),
		viewCmd(c),
		completeCmd(c),
		progressCmd(c),
		notifyCmd(c),
		statsCmd(c),
		summaryCmd(c),
		listCmd(c),
		clearCmd(c),
		soundsCmd(c),
	)
	return root
}

// addTypeFlag registers --type on cmd.
func addTypeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", engagement.DefaultItemType, "Item type (task, goal, reminder)")
}

func keyFromArgs(cmd *cobra.Command, itemID string) engagement.Key {
	itemType, _ := cmd.Flags().GetString("type")
	return engagement.NewKey(itemID, itemType)
}

func recordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Apply one JSON activity event read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := hook.ReadEvent(c.stdin)
			if err != nil {
				return err
			}
			if ev == nil {
				return nil
			}
			if err := ev.Validate(); err != nil {
				return err
			}
			return c.withApp(func(a *app.App) error {
				res, err := hook.Apply(ev, a.Feed, a.Ledger)
				if err != nil {
					return err
				}
				return c.printJSON(res)
			})
		},
	}
}

// trackCmd builds a subcommand that applies fn to ITEM_ID and prints the record.
func trackCmd(c *cli, use, short string, extraArgs int, fn func(*engagement.Ledger, engagement.Key, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1 + extraArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFromArgs(cmd, args[0])
			return c.withApp(func(a *app.App) error {
				if err := fn(a.Ledger, key, args[1:]); err != nil {
					return err
				}
				return c.printJSON(a.Ledger.Stats(key))
			})
		},
	}
	addTypeFlag(cmd)
	return cmd
}

func viewCmd(c *cli) *cobra.Command {
	return trackCmd(c, "view ITEM_ID", "Record a view", 0, func(l *engagement.Ledger, k engagement.Key, _ []string) error {
		l.TrackView(k)
		return nil
	})
}

func completeCmd(c *cli) *cobra.Command {
	return trackCmd(c, "complete ITEM_ID", "Record a completion", 0, func(l *engagement.Ledger, k engagement.Key, _ []string) error {
		l.TrackCompletion(k)
		return nil
	})
}

func progressCmd(c *cli) *cobra.Command {
	return trackCmd(c, "progress ITEM_ID OLD NEW", "Record a progress change", 2, func(l *engagement.Ledger, k engagement.Key, args []string) error {
		oldValue, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid old value %q: %w", args[0], err)
		}
		newValue, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid new value %q: %w", args[1], err)
		}
		if err := engagement.CheckProgress(oldValue, newValue); err != nil {
			return err
		}
		l.TrackProgress(k, oldValue, newValue)
		return nil
	})
}

func notifyCmd(c *cli) *cobra.Command {
	var notificationType string
	cmd := trackCmd(c, "notify ITEM_ID ACTION", "Record a notification action (sent, viewed, snoozed, completed)", 1, func(l *engagement.Ledger, k engagement.Key, args []string) error {
		action, err := engagement.ParseAction(args[0])
		if err != nil {
			return err
		}
		l.TrackNotification(k, action, notificationType)
		return nil
	})
	cmd.Flags().StringVarP(&notificationType, "notification-type", "n", "", "Notification type, e.g. task_due_soon")
	return cmd
}

func statsCmd(c *cli) *cobra.Command {
	return trackCmd(c, "stats ITEM_ID", "Print the engagement record for an item", 0, func(*engagement.Ledger, engagement.Key, []string) error {
		return nil
	})
}

func summaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals across every tracked item",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.withApp(func(a *app.App) error {
				return c.printJSON(a.Ledger.Summary())
			})
		},
	}
}

func listCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked item keys",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.withApp(func(a *app.App) error {
				for _, k := range a.Ledger.Keys() {
					fmt.Fprintln(c.stdout, k)
				}
				return nil
			})
		},
	}
}

func clearCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [ITEM_ID]",
		Short: "Delete the record for an item, or every record with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all == (len(args) == 1) {
				return fmt.Errorf("pass either ITEM_ID or --all")
			}
			return c.withApp(func(a *app.App) error {
				if all {
					a.Ledger.ClearAll()
					fmt.Fprintln(c.stdout, "Cleared all engagement records")
					return nil
				}
				key := keyFromArgs(cmd, args[0])
				a.Ledger.ClearItem(key)
				fmt.Fprintf(c.stdout, "Cleared engagement for %s\n", key)
				return nil
			})
		},
	}
	addTypeFlag(cmd)
	cmd.Flags().Bool("all", false, "Delete every record")
	return cmd
}

func soundsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the built-in sound ids and their asset files",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, id := range sound.Sounds() {
				asset, _ := sound.Asset(id)
				fmt.Fprintf(c.stdout, "%s\t%s\n", id, asset)
			}
			return nil
		},
	}
}

// run executes the CLI and returns an exit code. Streams are injected so
// tests need no global state.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
