package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/internal/server"
	"github.com/shashiranjanraj/marmita/pkg/database"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/migration"
	"github.com/shashiranjanraj/marmita/pkg/queue"
	"github.com/shashiranjanraj/marmita/pkg/schedule"
	"github.com/shashiranjanraj/marmita/pkg/session"
)

// Command returns the root cobra command with every sub-command attached.
func (a *Application) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "marmita",
		Short:         "Marmita food-ordering marketplace",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		a.serveCmd(),
		migrateCmd(),
		rollbackCmd(),
		statusCmd(),
		a.seedCmd(),
		a.routeListCmd(),
		a.queueWorkCmd(),
		a.queueFailedCmd(),
		a.queueRetryCmd(),
		scheduleListCmd(),
	)
	return root
}

func (a *Application) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (and the gRPC health server when GRPC_PORT is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.boot()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			waitWorkers := queue.Start(ctx, config.QueueWorkers())
			sched := scheduler()
			sched.Start(ctx)

			err = server.Run(ctx, server.Options{
				Addr:     ":" + config.AppPort(),
				Handler:  a.Handler(rt.store),
				GRPCPort: config.GRPCPort(),
				Probes:   []func(context.Context) error{database.Ping},
			})
			stop()
			waitWorkers()
			sched.Wait()
			return err
		},
	}
}

// scheduler holds the recurring tasks serve runs next to the HTTP server.
func scheduler() *schedule.Scheduler {
	s := schedule.New()
	s.Every(config.QueueRetryInterval()).
		Name("queue:retry-failed").
		WithoutOverlapping().
		Run(func(ctx context.Context) {
			n, err := queue.RetryAll(ctx)
			if err != nil {
				logger.Error("schedule: retrying failed jobs", "error", err)
				return
			}
			if n > 0 {
				logger.Info("schedule: failed jobs queued again", "count", n)
			}
		})
	return s
}

func scheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule:list",
		Short: "Print the recurring tasks run by serve",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			for _, line := range scheduler().List() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func (a *Application) queueWorkCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "queue:work",
		Short: "Process queued jobs without serving HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.boot()
			if err != nil {
				return err
			}
			defer rt.close()
			if !rt.sharedQueue {
				return errors.New("queue:work needs Redis; without it jobs are processed inside serve")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Processing jobs with %d workers\n", workers)
			wait := queue.Start(ctx, workers)
			<-ctx.Done()
			wait()
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", config.QueueWorkers(), "number of concurrent workers")
	return cmd
}

func (a *Application) queueFailedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue:failed",
		Short: "List jobs that exhausted their attempts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			queue.UseDB(database.DB)
			jobs, err := queue.Failed(cmd.Context())
			if err != nil {
				return err
			}
			printFailed(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
}

func printFailed(out io.Writer, jobs []queue.FailedJob) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No failed jobs.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tATTEMPTS\tFAILED AT\tERROR")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", j.ID, j.JobType, j.Attempts, j.FailedAt.Format(time.RFC3339), j.Error)
	}
	tw.Flush()
}

func (a *Application) queueRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue:retry [id]",
		Short: "Push failed jobs back on the queue (all of them without an id)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.boot()
			if err != nil {
				return err
			}
			defer rt.close()
			if !rt.sharedQueue {
				return errors.New("queue:retry needs Redis so a running worker picks the jobs up")
			}

			if len(args) == 0 {
				n, err := queue.RetryAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d failed jobs queued again\n", n)
				return nil
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			if err := queue.Retry(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d queued again\n", id)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			return migration.New(database.DB, cmd.OutOrStdout()).Run()
		},
	}
}

func rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last migration batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			return migration.New(database.DB, cmd.OutOrStdout()).Rollback()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show which migrations have run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			statuses, err := migration.New(database.DB, nil).Status()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
}

func printStatus(out io.Writer, statuses []migration.Status) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MIGRATION\tSTATUS\tBATCH")
	for _, s := range statuses {
		state, batch := "Pending", "-"
		if s.Ran {
			state, batch = "Ran", fmt.Sprint(s.Batch)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, state, batch)
	}
	tw.Flush()
}

func (a *Application) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			if len(a.seeders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No seeders registered.")
				return nil
			}
			for _, fn := range a.seeders {
				if err := fn(database.DB); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeding complete (%d seeders ran)\n", len(a.seeders))
			return nil
		},
	}
}

func (a *Application) routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "Print every registered route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.printRoutes(cmd.OutOrStdout())
			return nil
		},
	}
}

// printRoutes builds the router without booting so the listing needs no
// database.
func (a *Application) printRoutes(out io.Writer) {
	r := a.router(session.NewMemoryStore())
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	for _, rt := range r.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Method, rt.Path, rt.Name)
	}
	tw.Flush()
}
