// Package ingestd runs the Mission Control ingestion daemon: it seeds the
// roster, tails the openclaw logs into the store, and keeps the task queue
// and cron schedule mirrors fresh.
package ingestd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/openclaw/missionctl/internal/api"
	"github.com/openclaw/missionctl/internal/config"
	"github.com/openclaw/missionctl/internal/cronsync"
	"github.com/openclaw/missionctl/internal/notify"
	"github.com/openclaw/missionctl/internal/parse"
	"github.com/openclaw/missionctl/internal/roster"
	"github.com/openclaw/missionctl/internal/tailer"
	"github.com/openclaw/missionctl/internal/taskqueue"
	"github.com/openclaw/missionctl/internal/watch"
	"gorm.io/gorm"
)

// Opts holds parameters for the ingestion daemon.
type Opts struct {
	DB       *gorm.DB
	Cfg      *config.Config
	ServeAPI bool // also run the HTTP ingest API in-process
	Out      io.Writer
}

// Run starts the ingestion daemon and blocks until ctx is cancelled. All
// watchers share the single-flight tailers, so a change storm never runs
// two passes over the same file concurrently.
func Run(ctx context.Context, opts Opts) error {
	if opts.DB == nil {
		return fmt.Errorf("ingestd: db is required")
	}
	if opts.Cfg == nil {
		return fmt.Errorf("ingestd: config is required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	db, cfg, out := opts.DB, opts.Cfg, opts.Out

	fmt.Fprintf(out, "Mission Control ingestion starting (env=%s)\n", cfg.Environment)

	cache := roster.NewCache(db)
	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	// Seed the roster before any tailer runs so events can be attributed.
	if n, err := roster.Sync(db, cfg.Paths.OpenclawConfig); err != nil {
		log.Printf("ingestd: roster sync: %v", err)
	} else {
		fmt.Fprintf(out, "Roster synced: %d agents\n", n)
	}
	cache.Invalidate()

	offsets := tailer.NewOffsetStore(db)

	gatewaySink, err := tailer.NewEventSink(db, cache, parse.GatewayLine, dispatcher.Dispatch)
	if err != nil {
		return fmt.Errorf("ingestd: gateway sink: %w", err)
	}
	gateway, err := tailer.New(tailer.Opts{
		Path:    cfg.Paths.GatewayLog,
		Offsets: offsets,
		Sink:    gatewaySink,
		Label:   "gateway",
	})
	if err != nil {
		return fmt.Errorf("ingestd: gateway tailer: %w", err)
	}

	watchdogSink, err := tailer.NewEventSink(db, cache, parse.WatchdogLine, dispatcher.Dispatch)
	if err != nil {
		return fmt.Errorf("ingestd: watchdog sink: %w", err)
	}
	watchdog, err := tailer.New(tailer.Opts{
		Path:    cfg.Paths.WatchdogLog,
		Offsets: offsets,
		Sink:    watchdogSink,
		Label:   "watchdog",
	})
	if err != nil {
		return fmt.Errorf("ingestd: watchdog tailer: %w", err)
	}

	tailers := []*tailer.Tailer{gateway, watchdog}
	tailerPaths := []string{cfg.Paths.GatewayLog, cfg.Paths.WatchdogLog}

	// The session log and task queue are optional installs; only wire them
	// when they exist at startup.
	if fileExists(cfg.Paths.SessionsLog) {
		sessionSink, err := tailer.NewSessionSink(db)
		if err != nil {
			return fmt.Errorf("ingestd: session sink: %w", err)
		}
		sessions, err := tailer.New(tailer.Opts{
			Path:    cfg.Paths.SessionsLog,
			Offsets: offsets,
			Sink:    sessionSink,
			Label:   "sessions",
		})
		if err != nil {
			return fmt.Errorf("ingestd: session tailer: %w", err)
		}
		tailers = append(tailers, sessions)
		tailerPaths = append(tailerPaths, cfg.Paths.SessionsLog)
	} else {
		fmt.Fprintf(out, "Session log %s not found, skipping\n", cfg.Paths.SessionsLog)
	}

	// Initial catch-up pass, then debounced re-tail on change.
	for i, t := range tailers {
		runPass(ctx, t)
		t := t
		if err := watch.File(ctx, tailerPaths[i], watch.LogQuiet, func() {
			runPass(ctx, t)
		}); err != nil {
			return fmt.Errorf("ingestd: watch %s: %w", tailerPaths[i], err)
		}
	}

	if fileExists(cfg.Paths.TaskQueueMD) {
		syncTasks(db, cfg.Paths.TaskQueueMD, out)
		if err := watch.File(ctx, cfg.Paths.TaskQueueMD, watch.ConfigQuiet, func() {
			syncTasks(db, cfg.Paths.TaskQueueMD, out)
		}); err != nil {
			return fmt.Errorf("ingestd: watch %s: %w", cfg.Paths.TaskQueueMD, err)
		}
	} else {
		fmt.Fprintf(out, "Task queue %s not found, skipping\n", cfg.Paths.TaskQueueMD)
	}

	syncCron(db, cfg.Paths.CronJobsJSON, out)
	if err := watch.File(ctx, cfg.Paths.CronJobsJSON, watch.ConfigQuiet, func() {
		syncCron(db, cfg.Paths.CronJobsJSON, out)
	}); err != nil {
		log.Printf("ingestd: watch %s: %v", cfg.Paths.CronJobsJSON, err)
	}

	// Roster changes: re-sync first, invalidate after, so the cache never
	// rebuilds from a half-synced roster.
	if err := watch.File(ctx, cfg.Paths.OpenclawConfig, watch.ConfigQuiet, func() {
		if n, err := roster.Sync(db, cfg.Paths.OpenclawConfig); err != nil {
			log.Printf("ingestd: roster re-sync: %v", err)
		} else {
			fmt.Fprintf(out, "Roster re-synced: %d agents\n", n)
		}
		cache.Invalidate()
	}); err != nil {
		return fmt.Errorf("ingestd: watch %s: %w", cfg.Paths.OpenclawConfig, err)
	}

	apiErr := make(chan error, 1)
	if opts.ServeAPI {
		go func() {
			apiErr <- api.Start(ctx, api.StartOpts{
				DB:     db,
				Port:   cfg.Ingest.Port,
				APIKey: cfg.Ingest.APIKey,
				Out:    out,
			})
		}()
	}

	fmt.Fprintln(out, "Ingestion running.")

	select {
	case <-ctx.Done():
		fmt.Fprintf(out, "Ingestion stopped.\n")
		return nil
	case err := <-apiErr:
		return err
	}
}

// buildDispatcher assembles the alert dispatcher from whichever notifiers
// the config enables.
func buildDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	var notifiers []notify.Notifier
	if cfg.SlackEnabled() {
		s, err := notify.NewSlack(notify.SlackOpts{
			BotToken:  cfg.Notify.SlackToken,
			ChannelID: cfg.Notify.SlackChannel,
		})
		if err != nil {
			return nil, fmt.Errorf("ingestd: %w", err)
		}
		notifiers = append(notifiers, s)
	}
	if cfg.DiscordEnabled() {
		d, err := notify.NewDiscord(notify.DiscordOpts{
			BotToken:  cfg.Notify.DiscordToken,
			ChannelID: cfg.Notify.DiscordChannel,
		})
		if err != nil {
			return nil, fmt.Errorf("ingestd: %w", err)
		}
		notifiers = append(notifiers, d)
	}
	return notify.NewDispatcher(notifiers...), nil
}

// runPass runs one tail pass, logging instead of failing: a bad pass leaves
// the offset where it was and the next change retries.
func runPass(ctx context.Context, t *tailer.Tailer) {
	n, err := t.Process(ctx)
	if err != nil {
		log.Printf("ingestd: %s pass: %v", t.Label(), err)
		return
	}
	if n > 0 {
		log.Printf("ingestd: %s: %d lines ingested", t.Label(), n)
	}
}

func syncTasks(db *gorm.DB, path string, out io.Writer) {
	n, err := taskqueue.Sync(db, path)
	if err != nil {
		log.Printf("ingestd: task sync: %v", err)
		return
	}
	fmt.Fprintf(out, "Task queue synced: %d items\n", n)
}

func syncCron(db *gorm.DB, path string, out io.Writer) {
	n, err := cronsync.Sync(db, path)
	if err != nil {
		log.Printf("ingestd: cron sync: %v", err)
		return
	}
	if err := cronsync.Reconcile(db, path); err != nil {
		log.Printf("ingestd: cron reconcile: %v", err)
	}
	if n > 0 {
		fmt.Fprintf(out, "Cron jobs synced: %d\n", n)
	}
}

// SyncAll runs every one-shot sync once: roster, cron, and the task queue.
// Used by the CLI sync command.
func SyncAll(db *gorm.DB, cfg *config.Config, out io.Writer) error {
	n, err := roster.Sync(db, cfg.Paths.OpenclawConfig)
	if err != nil {
		return fmt.Errorf("ingestd: roster sync: %w", err)
	}
	fmt.Fprintf(out, "Roster synced: %d agents\n", n)

	cn, err := cronsync.Sync(db, cfg.Paths.CronJobsJSON)
	if err != nil {
		return fmt.Errorf("ingestd: cron sync: %w", err)
	}
	if err := cronsync.Reconcile(db, cfg.Paths.CronJobsJSON); err != nil {
		return fmt.Errorf("ingestd: cron reconcile: %w", err)
	}
	fmt.Fprintf(out, "Cron jobs synced: %d\n", cn)

	if fileExists(cfg.Paths.TaskQueueMD) {
		tn, err := taskqueue.Sync(db, cfg.Paths.TaskQueueMD)
		if err != nil {
			return fmt.Errorf("ingestd: task sync: %w", err)
		}
		fmt.Fprintf(out, "Task queue synced: %d items\n", tn)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
