package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/iudanet/tracker/internal/client/iocli"
	"github.com/iudanet/tracker/internal/config"
	"github.com/iudanet/tracker/internal/logging"
	"github.com/iudanet/tracker/internal/models"
)

// globalOptions are the persistent flags of the root command
type globalOptions struct {
	configPath string
	dbPath     string
	serverURL  string
	logLevel   string
}

// load reads the config file and applies flag overrides
func (o *globalOptions) load() (*config.Client, error) {
	cfg, err := config.LoadClient(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.serverURL != "" {
		cfg.ServerURL = o.serverURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = logging.Level(o.logLevel)
	}
	return cfg, nil
}

// runOptions управляют жизненным циклом App для одной команды
type runOptions struct {
	probe    bool
	registry prometheus.Registerer
}

// with opens the app, optionally probes the server, runs fn and waits for
// the background pass it may have started.
func (o *globalOptions) with(cmd *cobra.Command, ro runOptions, fn func(ctx context.Context, app *App) error) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stdio := iocli.NewStdio(cmd.InOrStdin(), cmd.OutOrStdout())
	app, err := OpenApp(ctx, cfg, stdio, ro.registry)
	if err != nil {
		return err
	}

	if ro.probe {
		app.Probe(ctx)
	}

	err = fn(ctx, app)
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewRootCommand builds the tracker command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Offline-first habit and task tracker",
		Long: `Tracker keeps tasks and habits in a local database and works without a network.
Changes are queued and sent to the server as soon as it is reachable;
the server's state is then pulled back.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.tracker/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to local database")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "Server URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newSyncCmd(opts),
		newWatchCmd(opts),
		newTaskCmd(opts),
		newHabitCmd(opts),
	)
	return root
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var lo loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the access token issued by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{}, func(ctx context.Context, app *App) error {
				if err := app.cli.runLogin(ctx, lo); err != nil {
					return err
				}
				// Токен сохранен: сразу проверяем сервер и подтягиваем данные
				if app.Probe(ctx) {
					app.engine.Trigger()
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&lo.Token, "token", "", "Access token (prompted when empty)")
	cmd.Flags().StringVar(&lo.UserID, "user", "", "User id (read from the token when empty)")
	return cmd
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove all local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{}, func(ctx context.Context, app *App) error {
				return app.cli.runLogout(ctx, force)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard changes that were not synchronized")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication and synchronization status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{}, func(ctx context.Context, app *App) error {
				return app.cli.runStatus(ctx, app.Probe(ctx))
			})
		},
	}
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued changes and pull the server state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runSync(ctx)
			})
		},
	}
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay online and synchronize whenever the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			reg := prometheus.NewRegistry()
			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						fmt.Fprintf(cmd.ErrOrStderr(), "metrics server: %v\n", err)
					}
				}()
				defer srv.Close()
			}

			return opts.with(cmd, runOptions{registry: reg}, func(ctx context.Context, app *App) error {
				return app.cli.runWatch(ctx, app.prober.Run)
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve sync metrics on this address (e.g. :9090)")
	return cmd
}

func newTaskCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var in models.TaskInput
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runTaskAdd(ctx, in)
			})
		},
	}
	add.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	add.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	add.Flags().StringVar(&in.HabitID, "habit", "", "Habit the task belongs to")
	add.Flags().IntVar(&in.Priority, "priority", 0, "Priority (0-3)")

	var lo taskListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{}, func(ctx context.Context, app *App) error {
				return app.cli.runTaskList(ctx, lo)
			})
		},
	}
	list.Flags().BoolVar(&lo.All, "all", false, "Include completed tasks")
	list.Flags().StringVar(&lo.DueDate, "due", "", "Only tasks due on the date")

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := models.TaskPatch{
				Title:    changedString(cmd, "title"),
				Notes:    changedString(cmd, "notes"),
				DueDate:  changedString(cmd, "due"),
				Priority: changedInt(cmd, "priority"),
			}
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runTaskEdit(ctx, args[0], patch)
			})
		},
	}
	edit.Flags().String("title", "", "New title")
	edit.Flags().String("notes", "", "New notes")
	edit.Flags().String("due", "", "New due date (YYYY-MM-DD, empty clears)")
	edit.Flags().Int("priority", 0, "New priority")

	done := &cobra.Command{
		Use:   "done ID",
		Short: "Toggle task completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runTaskDone(ctx, args[0])
			})
		},
	}

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runTaskRm(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(add, list, edit, done, rm)
	return cmd
}

func newHabitCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
	}

	// idCmd builds a subcommand that takes one habit id
	idCmd := func(use, short string, run func(c *Cli, ctx context.Context, id string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
					return run(app.cli, ctx, args[0])
				})
			},
		}
	}

	var in models.HabitInput
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runHabitAdd(ctx, in)
			})
		},
	}
	add.Flags().StringVar(&in.Description, "description", "", "Description")
	add.Flags().StringVar(&in.Color, "color", "", "Color (#rgb or #rrggbb)")

	var trash bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{}, func(ctx context.Context, app *App) error {
				return app.cli.runHabitList(ctx, trash)
			})
		},
	}
	list.Flags().BoolVar(&trash, "trash", false, "List habits in the trash")

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change habit fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := models.HabitPatch{
				Name:        changedString(cmd, "name"),
				Description: changedString(cmd, "description"),
				Color:       changedString(cmd, "color"),
			}
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runHabitEdit(ctx, args[0], patch)
			})
		},
	}
	edit.Flags().String("name", "", "New name")
	edit.Flags().String("description", "", "New description")
	edit.Flags().String("color", "", "New color")

	var date string
	check := &cobra.Command{
		Use:   "check ID",
		Short: "Toggle a day in the habit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.with(cmd, runOptions{probe: true}, func(ctx context.Context, app *App) error {
				return app.cli.runHabitCheck(ctx, args[0], date)
			})
		},
	}
	check.Flags().StringVar(&date, "date", "", "Day to toggle (YYYY-MM-DD, default today)")

	rm := idCmd("trash", "Move a habit to the trash", (*Cli).runHabitTrash)
	rm.Aliases = []string{"rm"}

	cmd.AddCommand(add, list, edit, check, rm,
		idCmd("restore", "Restore a habit from the trash; progress is reset", (*Cli).runHabitRestore),
		idCmd("purge", "Permanently delete a trashed habit", (*Cli).runHabitPurge),
	)
	return cmd
}

// changedString returns the flag value only when it was set explicitly
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
