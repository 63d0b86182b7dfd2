package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
	"github.com/spf13/cobra"

	"github.com/tomasbasham/tieredpool"
	"github.com/tomasbasham/tieredpool/internal/config"
	"github.com/tomasbasham/tieredpool/internal/logging"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a load profile and report how each tier was served",
		Long: "Submit every job of a load profile to a fresh dispatcher, wait " +
			"for all tasks to finish and print a summary per tier. Without " +
			"--config the built in profile is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := config.Default()
			if configPath != "" {
				var err error
				profile, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			level := logging.ParseLevel(logLevel(profile.LogLevel))
			logger := logging.NewLoggerWithWriter(level, cmd.ErrOrStderr())

			s, err := runProfile(cmd.Context(), logger, profile)
			if err != nil {
				return err
			}
			s.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML load profile")

	return cmd
}

// tierStats accumulates the executions of one tier.
type tierStats struct {
	submitted int
	executed  int
	failed    int
	queued    time.Duration
	servedBy  map[tieredpool.Tier]int
}

// recorder implements tieredpool.MetricsHook and also tracks the order in
// which tiers start running.
type recorder struct {
	mu    sync.Mutex
	tiers map[tieredpool.Tier]*tierStats
	order []tieredpool.Tier
}

func newRecorder() *recorder {
	r := &recorder{tiers: make(map[tieredpool.Tier]*tierStats)}
	for _, tier := range tieredpool.Tiers.All() {
		r.tiers[tier] = &tierStats{servedBy: make(map[tieredpool.Tier]int)}
	}
	return r
}

func (r *recorder) OnSubmit(tier tieredpool.Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[tier].submitted++
}

func (r *recorder) OnExecute(e tieredpool.Execution) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.tiers[e.Tier]
	s.executed++
	s.queued += e.Queued
	s.servedBy[e.WorkerTier]++
	if e.Err != nil {
		s.failed++
	}
}

// started records that a task of tier began. Consecutive starts on the same
// tier are collapsed.
func (r *recorder) started(tier tieredpool.Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.order); n > 0 && r.order[n-1] == tier {
		return
	}
	r.order = append(r.order, tier)
}

// summary is the outcome of a run.
type summary struct {
	tiers      map[tieredpool.Tier]tierStats
	order      []tieredpool.Tier
	unexecuted int
	elapsed    time.Duration
}

// runProfile submits every job of p and waits for the tasks to finish, or for
// ctx to be done. Tasks that never started by then are counted as unexecuted.
func runProfile(ctx context.Context, logger *logiface.Logger[logiface.Event], p config.Profile) (*summary, error) {
	rec := newRecorder()
	d := tieredpool.New(
		tieredpool.WithLogger(logger),
		tieredpool.WithNamePrefix(p.NamePrefix),
		tieredpool.WithMetricsHook(rec),
	)

	start := time.Now()

	var wg sync.WaitGroup
	for _, job := range p.Jobs {
		tier := job.TaskTier()
		for i := range job.Count {
			wg.Add(1)
			task := jobTask(logger, rec, &wg, job, tier, i+1)
			if err := d.Submit(task, tier); err != nil {
				wg.Done()
				d.Close()
				return nil, fmt.Errorf("submit job %q: %w", job.Name, err)
			}
		}
		logger.Info().
			Str("job", job.Name).
			Str("tier", tier.String()).
			Int("count", job.Count).
			Log("job submitted")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var unexecuted int
	select {
	case <-done:
		d.Close()
	case <-ctx.Done():
		leftover := d.Close()
		unexecuted = len(leftover)
		for range leftover {
			wg.Done()
		}
		<-done
		logger.Warning().
			Err(ctx.Err()).
			Int("unexecuted", unexecuted).
			Log("run interrupted")
	}

	s := &summary{
		tiers:      make(map[tieredpool.Tier]tierStats, len(rec.tiers)),
		unexecuted: unexecuted,
		elapsed:    time.Since(start),
	}
	rec.mu.Lock()
	for tier, stats := range rec.tiers {
		s.tiers[tier] = *stats
	}
	s.order = append(s.order, rec.order...)
	rec.mu.Unlock()

	return s, nil
}

// jobTask builds the n-th task of job. Every task carries its own id for the
// logs.
func jobTask(logger *logiface.Logger[logiface.Event], rec *recorder, wg *sync.WaitGroup, job config.Job, tier tieredpool.Tier, n int) tieredpool.Task {
	id := uuid.New()
	fail := job.FailEvery > 0 && n%job.FailEvery == 0

	return func(ctx context.Context) error {
		defer wg.Done()
		rec.started(tier)

		logger.Debug().
			Str("job", job.Name).
			Str("task_id", id.String()).
			Log("task started")

		if job.Duration > 0 {
			t := time.NewTimer(job.Duration)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if fail {
			return fmt.Errorf("job %s: task %s failed", job.Name, id)
		}
		return nil
	}
}

func (s *summary) print(w io.Writer) {
	fmt.Fprintf(w, "%-8s  %-9s  %-8s  %-6s  %-10s  %s\n",
		"TIER", "SUBMITTED", "EXECUTED", "FAILED", "MEAN WAIT", "SERVED BY")
	fmt.Fprintf(w, "%-8s  %-9s  %-8s  %-6s  %-10s  %s\n",
		"----", "---------", "--------", "------", "---------", "---------")

	for _, tier := range tieredpool.Tiers.All() {
		stats := s.tiers[tier]

		var wait time.Duration
		if stats.executed > 0 {
			wait = (stats.queued / time.Duration(stats.executed)).Round(time.Microsecond)
		}

		var served []string
		for _, worker := range tieredpool.Tiers.All() {
			if n := stats.servedBy[worker]; n > 0 {
				served = append(served, fmt.Sprintf("%s=%d", worker, n))
			}
		}
		if len(served) == 0 {
			served = append(served, "-")
		}

		fmt.Fprintf(w, "%-8s  %-9d  %-8d  %-6d  %-10s  %s\n",
			tier, stats.submitted, stats.executed, stats.failed, wait, strings.Join(served, " "))
	}

	order := make([]string, len(s.order))
	for i, tier := range s.order {
		order[i] = tier.String()
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Start order: %s\n", strings.Join(order, " > "))
	if s.unexecuted > 0 {
		fmt.Fprintf(w, "Unexecuted:  %d\n", s.unexecuted)
	}
	fmt.Fprintf(w, "Elapsed:     %s\n", s.elapsed.Round(time.Millisecond))
}
