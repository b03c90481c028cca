package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/log"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/qpu"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/relation"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/report"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/scheduler"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/suite"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var versionByBuildFlag string
var parser *flags.Parser
var app *App

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Fprintln(os.Stderr, "Found \".env\" file. Environment variables are preferred, "+
			"but non-conflicting variables are those in the \".env\" file.")
	}
	app = &App{}
	setParser(app)
}

type App struct {
	Conf *core.Conf
}

func setParser(app *App) {
	parser = flags.NewParser(app, flags.Default)
	parser.ShortDescription = "progcheck"
	parser.LongDescription = "black-box relation tests of quantum programs."
	parser.AddCommand("check", "run checks", "run the checks of a suite and report their verdicts", newCheckCmd())
	parser.AddCommand("export", "export a program", "print a program of a suite as OpenQASM 3", newExportCmd())
	parser.AddCommand("backends", "list backends", "list the backends programs can run on", newBackendsCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Fprintf(os.Stderr, "failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func newRegistry() (*core.Registry, error) {
	r := core.NewRegistry()
	if err := r.Register("statevector", func() core.Backend { return qpu.NewStatevectorQPU(nil) }); err != nil {
		return nil, err
	}
	if err := r.Register("dummy", func() core.Backend { return qpu.NewDummyQPU(nil) }); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *App) provideDIContainer(registry *core.Registry) (c *dig.Container, err error) {
	c = dig.New()
	err = c.Provide(func() (core.Backend, error) {
		b, err := registry.New(a.Conf.Backend)
		if err != nil {
			return nil, fmt.Errorf("%s is an unknown backend: %w", a.Conf.Backend, err)
		}
		return qpu.NewGuardedQPU(b), nil
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.DBManager { return core.NewMemoryDB() })
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func main() {
	parse()
}

func setupSystemComponents(conf *core.Conf) (*core.SystemComponents, error) {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with backend %s", conf.Backend))

	registry, err := newRegistry()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to register backends. Reason:%s", err.Error()))
		return nil, err
	}
	container, err := app.provideDIContainer(registry)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		return nil, err
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		return nil, err
	}
	return s, nil
}

// loadRelationSetting reads [com.relation] from the setting file, if one is given.
func loadRelationSetting(conf *core.Conf) (*relation.Setting, error) {
	core.ResetSetting()
	setting := relation.RegisterSetting()
	zap.L().Debug("Registered setting")
	if conf.SettingPath == "" {
		return setting, nil
	}
	if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return nil, err
	}
	return setting, nil
}

type checkCmd struct {
	Suite  string `long:"suite" short:"s" description:"suite file, TOML or JSON" required:"true"`
	Format string `long:"format" short:"f" description:"report format" default:"table" choice:"table" choice:"json"`
}

func newCheckCmd() *checkCmd {
	return &checkCmd{}
}

func (c *checkCmd) Execute(args []string) error {
	logger, err := log.SetZap(app.Conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}
	defer logger.Sync()

	setting, err := loadRelationSetting(app.Conf)
	if err != nil {
		return err
	}
	st, err := suite.Load(c.Suite)
	if err != nil {
		return err
	}
	jobs, err := st.BuildJobs()
	if err != nil {
		zap.L().Error(fmt.Sprintf("invalid suite %s/reason:%s", c.Suite, err))
		return err
	}

	s, err := setupSystemComponents(app.Conf)
	if err != nil {
		return err
	}
	defer s.TearDown()
	log.LogVersion(core.Version)

	exec, err := s.Executor()
	if err != nil {
		return err
	}
	db, err := s.DB()
	if err != nil {
		return err
	}
	seed := app.Conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	zap.L().Info(fmt.Sprintf("checking %d relations on %s with seed %d", len(jobs), s.GetDeviceInfo().DeviceName, seed))
	checker := relation.NewChecker(exec, *setting, seed)

	sched := scheduler.NewCheckScheduler(checker, db)
	if err := sched.Setup(app.Conf); err != nil {
		return err
	}
	if app.Conf.EnableVerdictLog {
		vl, err := log.NewVerdictLogger(app.Conf.LogDir)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to set up the verdict log/reason:%s", err))
			return err
		}
		defer vl.Close()
		sched.OnFinish(vl.Log)
	}

	runErr := runChecks(sched, jobs)

	finished := make([]*core.CheckJob, 0, len(jobs))
	for _, j := range jobs {
		if got, err := db.Get(j.ID); err == nil {
			finished = append(finished, got)
		} else {
			finished = append(finished, j)
		}
	}
	if err := report.Write(os.Stdout, c.Format, finished); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return verdictError(finished)
}

// verdictError fails the command when a check did not hold.
func verdictError(jobs []*core.CheckJob) error {
	sum := report.Summarize(jobs)
	if sum.Violated+sum.Failed+sum.Cancelled+sum.Pending > 0 {
		return fmt.Errorf("not every check holds: %s", sum)
	}
	return nil
}

// runChecks submits jobs and runs the workers until every job has finished or a
// signal arrives.
func runChecks(sched *scheduler.CheckScheduler, jobs []*core.CheckJob) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(func() error {
		return sched.Start(ctx)
	}, func(error) {
		cancel()
	})
	g.Add(func() error {
		for _, j := range jobs {
			if err := sched.SubmitWait(ctx, j); err != nil {
				zap.L().Warn(fmt.Sprintf("failed to submit check(%s)/reason:%s", j.ID, err))
			}
		}
		done := make(chan struct{})
		go func() {
			sched.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, func(error) {
		cancel()
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err := g.Run()
	var se run.SignalError
	if errors.As(err, &se) {
		zap.L().Info(fmt.Sprintf("stopped by %s", se.Signal))
	}
	return err
}

type exportCmd struct {
	Suite   string `long:"suite" short:"s" description:"suite file, TOML or JSON" required:"true"`
	Program string `long:"program" short:"p" description:"program name in the suite" required:"true"`
}

func newExportCmd() *exportCmd {
	return &exportCmd{}
}

func (c *exportCmd) Execute(args []string) error {
	logger, err := log.SetZap(app.Conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := suite.Load(c.Suite)
	if err != nil {
		return err
	}
	programs, err := st.BuildPrograms()
	if err != nil {
		return err
	}
	p, ok := programs[c.Program]
	if !ok {
		return fmt.Errorf("program %s is not in %s", c.Program, c.Suite)
	}
	q, err := qpu.ToQASM(p)
	if err != nil {
		return err
	}
	fmt.Print(q)
	return nil
}

type backendsCmd struct{}

func newBackendsCmd() *backendsCmd {
	return &backendsCmd{}
}

func (c *backendsCmd) Execute(args []string) error {
	r, err := newRegistry()
	if err != nil {
		return err
	}
	for _, name := range r.Names() {
		fmt.Println(name)
	}
	return nil
}
