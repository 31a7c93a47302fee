/*
Gridmdp solves the stochastic grid world by value iteration: an agent moves on a rectangular
grid of cells, and the environment honors its intended direction only with some probability,
otherwise veering left, right or back. Sweeps of the Bellman update run until the values settle,
after which the console shows the values and the optimal policy. Optionally the run is stored,
its convergence is charted, and a page shows the values and policy changing as training runs.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"gridmdp/chart"
	"gridmdp/grid_world"
	"gridmdp/history"
	"gridmdp/matrix"
	"gridmdp/reinforcement"
	"gridmdp/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	configEnv         = "GRIDMDP_CONFIG"
	defaultConfigPath = "./config.yaml"
)

var (
	configPath *string
	dbg        *bool
	serve      *bool
	host       *string
	port       *string
	storeKind  *string
	dbPath     *string
	chartPath  *string
	colors     *bool
)

func init() {
	configPath = flag.String("config", "", "scenario config, defaults to $"+configEnv+" or "+defaultConfigPath)
	dbg = flag.Bool("debug", false, "debug logging")
	serve = flag.Bool("serve", false, "serve a live view of training, until interrupted")
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
	storeKind = flag.String("store", "memory", "run history backend: memory or sqlite")
	dbPath = flag.String("db", "gridmdp.db", "sqlite database path")
	chartPath = flag.String("chart", "", "if set, write a convergence chart to this html file")
	colors = flag.Bool("color", true, "colorize console output")
}

type options struct {
	ConfigPath string
	Serve      bool
	Addr       string
	StoreKind  string
	DBPath     string
	ChartPath  string
	Colors     bool
	Out        io.Writer
}

// resolveConfigPath prefers the flag, then the environment, then the default.
func resolveConfigPath(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if envVal := os.Getenv(configEnv); envVal != "" {
		return envVal
	}
	return defaultConfigPath
}

func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func runApp(
	ctx context.Context,
	log *logrus.Logger,
	opts options,
) (err error) {
	var cfg *reinforcement.ScenarioConfig
	if cfg, err = reinforcement.FromYaml(opts.ConfigPath); err != nil {
		return fmt.Errorf("config %s: %w", opts.ConfigPath, err)
	}

	var solver *reinforcement.Solver
	if solver, err = cfg.Build(); err != nil {
		return
	}

	var store history.Store
	if store, err = history.NewStore(opts.StoreKind, opts.DBPath); err != nil {
		return
	}
	if err = store.Init(ctx); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("closing history")
		}
	}()

	display := grid_world.NewDisplay(opts.Out, opts.Colors)
	display.ShowGrid(solver.Snapshot())

	status := server.NewStatus()
	snapshots := make(chan *matrix.Matrix[grid_world.Field])

	group, groupCtx := errgroup.WithContext(ctx)
	if opts.Serve {
		var srv *server.Server
		if srv, err = server.NewServer(
			groupCtx,
			opts.Addr,
			solver.Snapshot(),
			snapshots,
			status,
			log,
		); err != nil {
			return
		}
		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
	}

	group.Go(func() error {
		t := &trainer{
			log:       log,
			solver:    solver,
			cfg:       cfg,
			store:     store,
			status:    status,
			snapshots: snapshots,
			display:   display,
			chartPath: opts.ChartPath,
		}
		return t.run(groupCtx)
	})

	return group.Wait()
}

// trainer runs a single training session and reports on it.
type trainer struct {
	log       logrus.FieldLogger
	solver    *reinforcement.Solver
	cfg       *reinforcement.ScenarioConfig
	store     history.Store
	status    *server.Status
	snapshots chan<- *matrix.Matrix[grid_world.Field]
	display   *grid_world.Display
	chartPath string
}

func (t *trainer) run(ctx context.Context) (err error) {
	trainingCtx, cancel, err := t.cfg.Training.WithTrainingDeadline(ctx)
	if err != nil {
		return
	}
	defer cancel()

	run := history.NewRun(t.solver.Width(), t.solver.Height(), t.solver.Params())
	if err = t.store.SaveRun(ctx, run); err != nil {
		return
	}
	log := t.log.WithField("run", run.ID)
	log.WithField("params", fmt.Sprintf("%+v", run.Params)).Info("training")

	result, err := reinforcement.Train(trainingCtx, t.solver, &t.cfg.Training, t.onProgress(log))
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		log.WithField("deadline", t.cfg.Training.Deadline).Warn("training deadline exceeded")
	case err != nil:
		return
	}
	t.status.Finish(result.Converged)

	run.Complete(result)
	if err = t.store.SaveRun(ctx, run); err != nil {
		return
	}
	if err = t.store.SaveErrorHistory(ctx, run.ID, result.Errors); err != nil {
		return
	}

	log.WithFields(logrus.Fields{
		"sweeps":    result.Sweeps,
		"error":     result.Error,
		"converged": result.Converged,
	}).Info("training complete")

	final := t.solver.Snapshot()
	t.display.ShowValues(final)
	t.display.ShowPolicy(final)

	if t.chartPath != "" {
		if err = writeChart(t.chartPath, result.Errors); err != nil {
			return
		}
		log.WithField("path", t.chartPath).Info("wrote convergence chart")
	}
	return nil
}

// onProgress returns the progress callback, which logs each sweep and forwards
// snapshots to the live view. Snapshots are dropped when the view isn't ready for one.
func (t *trainer) onProgress(log logrus.FieldLogger) reinforcement.ProgressFunc {
	return func(ctx context.Context, progress reinforcement.Progress) {
		t.status.Record(progress.Sweep, progress.Error)
		log.WithFields(logrus.Fields{
			"sweep": progress.Sweep,
			"error": progress.Error,
		}).Debug("sweep")

		select {
		case t.snapshots <- progress.Fields:
		case <-ctx.Done():
		default:
		}
	}
}

func writeChart(path string, sweepErrors []float64) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return chart.Convergence(f, "Value iteration convergence", sweepErrors)
}

func main() {
	flag.Parse()
	// A .env file is optional.
	_ = godotenv.Load()

	log := newLogger(*dbg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		ConfigPath: resolveConfigPath(*configPath),
		Serve:      *serve,
		Addr:       *host + ":" + *port,
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ChartPath:  *chartPath,
		Colors:     *colors,
		Out:        os.Stdout,
	}
	if err := runApp(ctx, log, opts); err != nil {
		log.WithError(err).Fatal("gridmdp")
	}
}
