package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rusk/internal/app"
	"rusk/internal/config"
	"rusk/internal/dates"
	"rusk/internal/engine"
	"rusk/internal/lineedit"
	"rusk/internal/logging"
	"rusk/internal/present"
)

// promptDate is the --date value when the flag is given without one.
const promptDate = "\x00prompt"

type cli struct {
	v      *viper.Viper
	fs     afero.Fs
	stdout io.Writer
	term   *lineedit.StdTerminal
	ed     *lineedit.Editor
	cfg    *config.Config
	log    *zap.Logger
	out    *present.Printer
}

func main() {
	term := lineedit.Std()
	c := &cli{
		v:      viper.New(),
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		term:   term,
		ed:     lineedit.New(term),
	}
	err := c.rootCmd().Execute()
	if c.log != nil {
		_ = c.log.Sync()
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *lineedit.ExitError
	if errors.As(err, &exit) {
		if exit.Notice != "" {
			fmt.Println(exit.Notice)
		}
		return exit.Code
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rusk",
		Short: "A small task manager for the terminal",
		Long: `rusk keeps a list of tasks in a single JSON file (~/.rusk/tasks.json by default,
or the location named by RUSK_DB). Every change keeps the previous file as a
backup that 'rusk restore' brings back.

Dates are written DD-MM-YYYY, DD/MM/YYYY, DD-MM-YY or DD/MM/YY.
Task ids may be given one per argument or comma separated (1,2,3).`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(func(e *engine.Engine) error {
				c.out.Tasks(e.Tasks)
				return nil
			})
		},
	}
	config.BindFlags(c.v, root.PersistentFlags())
	root.AddCommand(c.addCmd())
	root.AddCommand(c.delCmd())
	root.AddCommand(c.markCmd())
	root.AddCommand(c.editCmd())
	root.AddCommand(c.listCmd())
	root.AddCommand(c.restoreCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(c.v, c.fs, config.HomeDir())
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.log == nil {
		log, err := logging.New(cfg.Verbose)
		if err != nil {
			return err
		}
		c.log = log
	}

	switch cfg.Display.Color {
	case config.ColorAlways:
		present.SetColor(true)
	case config.ColorNever:
		present.SetColor(false)
	default:
		fd := os.Stdout.Fd()
		present.SetColor(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	}
	d := cfg.Display
	c.out = &present.Printer{
		Out:         c.stdout,
		Width:       present.MaxWidth(c.term.Width(), d.MaxWidth, d.LeftMargin, d.RightMargin),
		LeftMargin:  d.LeftMargin,
		RightMargin: d.RightMargin,
		Today:       dates.Today(),
	}
	return nil
}

func (c *cli) withEngine(fn func(e *engine.Engine) error) error {
	e, err := app.Open(c.cfg, c.fs, c.log)
	if err != nil {
		return err
	}
	if c.cfg.ShowPaths {
		c.out.Paths(e.DB)
	}
	return fn(e)
}

func (c *cli) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add TEXT...",
		Aliases: []string{"a"},
		Short:   "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			var date *string
			if cmd.Flags().Changed("date") {
				d, _ := cmd.Flags().GetString("date")
				date = &d
			}
			return c.withEngine(func(e *engine.Engine) error {
				t, err := e.Add(args, date)
				if err != nil {
					return err
				}
				c.out.Added(t)
				return nil
			})
		},
	}
	cmd.Flags().StringP("date", "d", "", "due date, e.g. 15-01-2025 or 15/01/25")
	return cmd
}

func (c *cli) delCmd() *cobra.Command {
	var done bool
	cmd := &cobra.Command{
		Use:     "del IDS...",
		Aliases: []string{"d"},
		Short:   "Delete tasks, asking for confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := app.ParseIDs(args)
			return c.withEngine(func(e *engine.Engine) error {
				switch {
				case done && len(ids) == 0:
					return c.deleteDone(e)
				case len(ids) > 0:
					return c.deleteByIDs(e, ids)
				}
				c.out.DeleteUsage()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "delete every done task")
	return cmd
}

func (c *cli) deleteDone(e *engine.Engine) error {
	n := e.DoneCount()
	if n == 0 {
		c.out.NoDoneTasks()
		return nil
	}
	ok, err := c.ed.Confirm(c.out.DeleteDonePrompt(n))
	if err != nil {
		return err
	}
	if !ok {
		c.out.Canceled()
		return nil
	}
	deleted, err := e.DeleteDone()
	if err != nil {
		return err
	}
	c.out.DeletedDone(deleted)
	return nil
}

func (c *cli) deleteByIDs(e *engine.Engine, ids []int) error {
	var confirmed, notFound []int
	seen := map[int]bool{}
	for _, id := range ids {
		t, found := e.Task(id)
		if !found {
			notFound = append(notFound, id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ok, err := c.ed.Confirm(c.out.DeletePrompt(t))
		if err != nil {
			return err
		}
		if ok {
			confirmed = append(confirmed, id)
		} else {
			c.out.DeleteCanceled(id)
		}
	}
	if len(confirmed) > 0 {
		missing, err := e.Delete(confirmed)
		if err != nil {
			return err
		}
		c.out.Deleted(len(confirmed) - len(missing))
	}
	c.out.NotFound(notFound)
	return nil
}

func (c *cli) markCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "mark IDS...",
		Aliases: []string{"m"},
		Short:   "Toggle tasks between done and pending",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := app.ParseIDs(args)
			return c.withEngine(func(e *engine.Engine) error {
				res, err := e.Mark(ids)
				if err != nil {
					return err
				}
				c.out.Marked(e, res)
				return nil
			})
		},
	}
}

func (c *cli) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit IDS... [TEXT...]",
		Aliases: []string{"e"},
		Short:   "Edit task text and date",
		Long: `Edit replaces the text of every listed task with TEXT and, with --date=D, its date.
Without TEXT each task is edited interactively; a bare --date also prompts for
the date. Escape skips a task, Tab accepts the current text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, text := app.SplitEditArgs(args)
			if len(ids) == 0 {
				return fmt.Errorf("no task id given")
			}
			date, _ := cmd.Flags().GetString("date")
			dateSet := cmd.Flags().Changed("date")
			if dateSet && date == promptDate {
				if d, rest, ok := app.TakeDate(text); ok {
					date, text = d, rest
				}
			}
			return c.withEngine(func(e *engine.Engine) error {
				var (
					res engine.EditResult
					err error
				)
				if len(text) == 0 && (!dateSet || date == promptDate) {
					if !c.term.Interactive() {
						return fmt.Errorf("interactive editing needs a terminal; pass the new text as arguments")
					}
					res, err = app.EditInteractive(e, c.ed, ids, dateSet)
				} else {
					opts := engine.EditOptions{}
					if len(text) > 0 {
						opts.Text = text
					}
					if dateSet && date != promptDate {
						opts.Date = &date
					}
					res, err = e.Edit(ids, opts)
				}
				if err != nil {
					return err
				}
				c.out.Edited(e, res)
				return nil
			})
		},
	}
	cmd.Flags().StringP("date", "d", "", "new due date; without a value, prompt for it")
	cmd.Flags().Lookup("date").NoOptDefVal = promptDate
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(func(e *engine.Engine) error {
				c.out.Tasks(e.Tasks)
				return nil
			})
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Aliases: []string{"r"},
		Short:   "Replace the database with its backup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.OpenForRestore(c.cfg, c.fs, c.log)
			if c.cfg.ShowPaths {
				c.out.Paths(e.DB)
			}
			res, err := e.Restore()
			if err != nil {
				return err
			}
			c.out.Restored(e.DB, res)
			return nil
		},
	}
}
