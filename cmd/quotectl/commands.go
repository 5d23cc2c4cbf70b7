package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/adapters/render"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/bootstrap"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// cli holds the global flags and the app booted for one command.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configDir string
	profile   string
	width     int
	verbose   bool

	// deps replaces storage or the remote; tests use it.
	deps *bootstrap.Deps

	app      *bootstrap.App
	renderer *render.Renderer
}

// execute runs one quotectl invocation and releases whatever it booted.
func execute(ctx context.Context, args []string, out, errOut io.Writer, deps *bootstrap.Deps) error {
	c := &cli{out: out, errOut: errOut, deps: deps}

	root := newRootCommand(c)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	if c.app != nil {
		err = errors.Join(err, c.app.Close(context.WithoutCancel(ctx)))
	}

	return err
}

func newRootCommand(c *cli) *cobra.Command {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Browse, add and sync quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.boot(cmd)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configDir, "config-dir", config.DefaultConfigDir, "directory holding base.yaml and profile files")
	flags.StringVar(&c.profile, "profile", profile, "configuration profile")
	flags.IntVar(&c.width, "width", 60, "card width, 0 disables wrapping")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newShowCommand(c),
		newListCommand(c),
		newAddCommand(c),
		newCategoriesCommand(c),
		newSelectCommand(c),
		newSyncCommand(c),
	)

	return root
}

// boot loads config and restores the quote list. Logs go to errOut so
// command output stays clean.
func (c *cli) boot(cmd *cobra.Command) error {
	cfg, err := bootstrap.LoadConfig(c.configDir, c.profile)
	if err != nil {
		return err
	}

	cfg.Log.Format = "pretty"
	cfg.Log.Level = "warn"
	if c.verbose {
		cfg.Log.Level = "debug"
	}

	deps := bootstrap.Deps{}
	if c.deps != nil {
		deps = *c.deps
	}
	deps.Logger = bootstrap.NewLogger(cfg, c.errOut)

	a, err := bootstrap.New(cmd.Context(), cfg, deps)
	if err != nil {
		return err
	}

	c.app = a
	c.renderer = render.New(c.out, c.width)

	return nil
}

func (c *cli) println(s string) {
	fmt.Fprintln(c.out, s)
}

// categoryFlag returns the --category value when given, otherwise the
// persisted selection.
func (c *cli) categoryFlag(cmd *cobra.Command, value string) string {
	if cmd.Flags().Changed("category") {
		return value
	}

	return c.app.Reconciler.SelectedCategory()
}

func newShowCommand(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one random quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := c.app.Reconciler.Random(c.categoryFlag(cmd, category))
			if err != nil {
				return err
			}

			c.println(c.renderer.Quote(q))

			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to pick from (default: selected)")

	return cmd
}

func newListCommand(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the quotes in a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := c.categoryFlag(cmd, category)
			c.println(c.renderer.Quotes(cat, c.app.Reconciler.Filter(cat)))

			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to list (default: selected)")

	return cmd
}

func newAddCommand(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a quote; it is pushed on the next sync",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := c.app.Reconciler.Add(cmd.Context(), strings.Join(args, " "), category)
			if err != nil {
				return err
			}

			c.println(c.renderer.Quote(q))

			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category of the new quote")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newCategoriesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and mark the selected one",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprint(c.out, c.renderer.Categories(c.app.Reconciler.Categories(), c.app.Reconciler.SelectedCategory()))
			return nil
		},
	}
}

func newSelectCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "select CATEGORY",
		Short: `Persist the category filter ("all" clears it)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Reconciler.SelectCategory(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprint(c.out, c.renderer.Categories(c.app.Reconciler.Categories(), c.app.Reconciler.SelectedCategory()))

			return nil
		},
	}
}

func newSyncCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull from the remote, merge, and push local quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.app.Reconciler.SyncCycle(cmd.Context(), app.TriggerManual)

			notices := c.app.Board.Recent(0)
			slices.Reverse(notices)

			for _, n := range notices {
				c.println(c.renderer.Notification(n))
			}

			return err
		},
	}
}
