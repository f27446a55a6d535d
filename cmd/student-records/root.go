package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/file"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

// needsStore marks commands that open storage and load the record list
// before they run.
const needsStore = "needs-store"

// app is the state shared by every subcommand once PersistentPreRunE has
// run.
type app struct {
	in  io.Reader
	out io.Writer
	log io.Writer

	configPath string

	cfg    *config.Config
	logger *zap.Logger
	store  *records.Store
	close  func() error
}

// execute runs the CLI with args and releases storage and the logger
// however the command ends.
func execute(args []string, in io.Reader, out, log io.Writer) error {
	root, a := newRootCmd(in, out, log)
	root.SetArgs(args)

	err := root.Execute()
	return errors.Join(err, a.teardown())
}

func newRootCmd(in io.Reader, out, log io.Writer) (*cobra.Command, *app) {
	a := &app{in: in, out: out, log: log, close: func() error { return nil }}

	root := &cobra.Command{
		Use:   "student-records",
		Short: "Manage a list of student records",
		Long: `student-records keeps an ordered list of students (name, ID, email,
contact) and serves it over HTTP, in a terminal UI, or from the command line.

The config file is taken from --config, then CONFIG_PATH. Without either,
settings come from environment variables and built-in defaults.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(log)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML config file")

	root.AddCommand(
		newServeCmd(a),
		newTUICmd(a),
		newListCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)

	return root, a
}

// setup loads config, builds the logger, opens storage and loads the list.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[needsStore] == "" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	sink, err := a.logSink(cmd)
	if err != nil {
		return err
	}
	a.logger = setupLogger(cfg.Env, sink)

	kv, closeFn, err := openStorage(cfg)
	if err != nil {
		a.logger.Error("failed to initialise storage",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err))
		return err
	}
	prev := a.close
	a.close = func() error { return errors.Join(closeFn(), prev()) }

	a.logger.Debug("storage initialised",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path))

	a.store = records.New(kv,
		records.WithKey(cfg.Storage.Key),
		records.WithLogger(a.logger),
		records.WithResetOnCorrupt(cfg.Storage.ResetOnCorrupt),
	)
	if _, err := a.store.Load(cmd.Context()); err != nil {
		a.logger.Error("failed to load student records", zap.Error(err))
		return err
	}

	return nil
}

// logSink is where logs go: stderr normally, or the tui --log-file (or
// nowhere) while the terminal UI owns the screen.
func (a *app) logSink(cmd *cobra.Command) (zapcore.WriteSyncer, error) {
	flag := cmd.Flags().Lookup(logFileFlag)
	if flag == nil {
		return zapcore.AddSync(a.log), nil
	}
	if flag.Value.String() == "" {
		return zapcore.AddSync(io.Discard), nil
	}

	f, err := os.OpenFile(flag.Value.String(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	prev := a.close
	a.close = func() error {
		return errors.Join(prev(), f.Close())
	}
	return zapcore.AddSync(f), nil
}

// teardown is safe to call more than once.
func (a *app) teardown() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	err := a.close()
	a.close = func() error { return nil }
	return err
}

// openStorage returns the configured backend and a function releasing it.
func openStorage(cfg *config.Config) (storage.Storage, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.BackendFile:
		fs, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() error { return nil }, nil
	case config.BackendMemory:
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("open storage: %w", config.ErrInvalidBackend)
	}
}

// userError replaces a record or validation error with the message a user
// should see, logging the underlying error.
func (a *app) userError(err error) error {
	if err == nil {
		return nil
	}
	a.logger.Debug("command failed", zap.Error(err))
	return errors.New(form.Message(err))
}
