package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"keyinvader/key_event"
	"keyinvader/key_event/os_hook"
	"keyinvader/keylog"
	"keyinvader/session"
	"keyinvader/sink"
	"keyinvader/view"

	"github.com/alexflint/go-filemutex"

	"github.com/tidwall/buntdb"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		Name:  "keyinvader",
		Usage: "keyboard event tracker",
		Commands: []*cli.Command{
			trackCommand,
			sessionsCommand,
		},
		DefaultCommand: trackCommand.Name,
	}
	return app.Run(os.Args)
}

var trackCommand = &cli.Command{
	Name:  "track",
	Usage: "track keyboard events until the hotkey or the emergency key is pressed",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "file", Value: "keylog.txt", Usage: "log file events are appended to"},
		&cli.StringFlag{Name: "hotkey", Value: "<ctrl>+q", Usage: "key combination that stops tracking"},
		&cli.StringFlag{Name: "emergency", Value: "esc", Usage: "key that stops tracking immediately"},
		&cli.BoolFlag{Name: "console", Usage: "echo events to stdout"},
		&cli.BoolFlag{Name: "notify", Usage: "show a desktop notification when tracking stops (macOS)"},
		&cli.StringFlag{Name: "script", Usage: `replay keys instead of hooking the keyboard, e.g. "h i +ctrl q"`},
	},
	Action: func(c *cli.Context) error {
		hotkey, err := key_event.ParseCombo(c.String("hotkey"))
		if err != nil {
			return err
		}

		dir, err := openDataDir()
		if err != nil {
			return err
		}
		db, err := dir.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		logger, logFile, err := dir.logger()
		if err != nil {
			return err
		}
		defer logFile.Close()
		fm, err := dir.fileMutex()
		if err != nil {
			return err
		}
		defer fm.Close()
		startedAt := time.Now()

		fileSink, err := sink.NewFileSink(c.String("file"), fm, startedAt, logger)
		if err != nil {
			return err
		}
		recorder, err := session.NewRecorder(session.NewRepository(db), fm, logger, time.Now, startedAt, fileSink.Path())
		if err != nil {
			return err
		}

		var backend key_event.Backend = os_hook.NewBackend(logger)
		var steps []key_event.ScriptStep
		if c.IsSet("script") {
			if steps, err = key_event.ParseScript(c.String("script")); err != nil {
				return err
			}
			backend = key_event.NewScriptedBackend()
		}

		p := keylog.NewPublisher(backend, hotkey, c.String("emergency"), logger)
		if script, ok := backend.(*key_event.ScriptedBackend); ok {
			go func() {
				<-script.Ready()
				script.Play(steps)
				// A script that never reaches the hotkey or the emergency key
				// still ends the run.
				p.Interrupt()
			}()
		}
		subs := []keylog.Subscriber{fileSink, recorder}
		if c.Bool("console") {
			subs = append(subs, sink.NewConsoleSink(os.Stdout, true))
		}
		if c.Bool("notify") && runtime.GOOS == "darwin" {
			subs = append(subs, sink.NewNotifySink(&sink.MacNotificator{}, logger))
		}
		for _, s := range subs {
			p.Attach(s)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		stopped := make(chan struct{})
		go watchSignals(p, sigCh, stopped, logger)

		reason, err := p.StartTracking()
		close(stopped)
		for _, s := range subs {
			if derr := p.Detach(s); derr != nil {
				logger.Error("detach subscriber", slog.String("err", derr.Error()))
			}
		}
		if err != nil {
			logger.Error("tracking ended with error", slog.String("reason", string(reason)), slog.String("err", err.Error()))
			return err
		}
		fmt.Printf("tracking stopped: %s\n", reason)
		return nil
	},
}

var sessionsCommand = &cli.Command{
	Name:      "sessions",
	Usage:     "list tracking sessions of a month",
	ArgsUsage: "[YYYY-MM]",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "tui", Usage: "open the interactive viewer"},
	},
	Action: func(c *cli.Context) error {
		dir, err := openDataDir()
		if err != nil {
			return err
		}
		db, err := dir.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		logger, logFile, err := dir.logger()
		if err != nil {
			return err
		}
		defer logFile.Close()
		viewRepo := view.NewViewRepository(session.NewRepository(db))

		var v view.Viewer = view.NewTableViewer(viewRepo, os.Stdout)
		if c.Bool("tui") {
			v = view.NewTUI(viewRepo, logger)
		}
		return v.Do(c.Args().First())
	},
}

// dataDir is where keyinvader keeps its database, lock file and debug log.
type dataDir string

func openDataDir() (dataDir, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}

	dir := filepath.Join(home, ".keyinvader")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir(dir), nil
}

func (d dataDir) path(name string) string {
	return filepath.Join(string(d), name)
}

func (d dataDir) openDB() (*buntdb.DB, error) {
	db, err := buntdb.Open(d.path("keyinvader.db"))
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	return db, nil
}

// logger writes debug-level JSON to log.log. The caller closes the returned file.
func (d dataDir) logger() (*slog.Logger, *os.File, error) {
	logFile, err := os.OpenFile(d.path("log.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}

	return slog.New(
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}),
	), logFile, nil
}

func (d dataDir) fileMutex() (*filemutex.FileMutex, error) {
	mux, err := filemutex.New(d.path("keyinvader.lock"))
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	return mux, nil
}

// interrupter is the part of keylog.Publisher the signal watcher needs.
type interrupter interface {
	Interrupt()
}

// watchSignals interrupts p on the first signal, and returns without doing
// anything once done is closed.
func watchSignals(p interrupter, sigCh <-chan os.Signal, done <-chan struct{}, logger *slog.Logger) {
	select {
	case sig := <-sigCh:
		logger.Info("signal received", slog.String("signal", sig.String()))
		p.Interrupt()
	case <-done:
	}
}
