package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pilebones/go-udev/netlink"

	"meridian/internal/config"
	"meridian/internal/logging"
	"meridian/internal/preflight"
)

// CardResult reports what the handler did with a detected card.
type CardResult struct {
	Handled bool
	Message string
	RunID   string
}

// Handler ingests footage from the given block device and reports the outcome.
type Handler func(ctx context.Context, device string) (*CardResult, error)

// Watcher listens for udev netlink events and triggers footage ingest when a
// camera card appears on a device matching the configured pattern.
type Watcher struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  Handler
	isPaused func() bool
	pattern  string

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// New creates a watcher for card insertion events. Returns nil when no ingest
// device is configured; a nil watcher is safe to start and stop.
func New(cfg *config.Config, logger *slog.Logger, handler Handler, isPaused func() bool) *Watcher {
	if cfg == nil {
		return nil
	}

	pattern := strings.TrimSpace(cfg.Ingest.Device)
	if pattern == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.WorkDir, "watch.lock")
	return &Watcher{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "ingest-watcher"),
		handler:  handler,
		isPaused: isPaused,
		pattern:  pattern,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Start acquires the work-directory lock and begins listening for udev
// events. A held lock is an error; a failed netlink connect is not, because
// manual runs keep working without the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another watcher already owns %s", w.cfg.Paths.WorkDir)
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		_ = w.lock.Unlock()
		w.logger.Warn("failed to connect to netlink socket; card detection will rely on manual runs",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the watcher has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "automatic card detection unavailable"),
		)
		return nil
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true

	// Pass quit channel to goroutine to avoid reading w.quit without lock
	quit := w.quit
	go w.monitorLoop(ctx, quit)

	w.logger.Info("ingest watcher started",
		logging.String(logging.FieldEventType, "ingest_watcher_started"),
		logging.String("device_pattern", w.pattern),
		logging.String("lock", w.lockPath),
	)

	return nil
}

// Stop shuts down the watcher and releases the work-directory lock.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}

	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}

	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("failed to release watch lock", logging.Error(err))
	}

	w.running = false

	w.logger.Info("ingest watcher stopped",
		logging.String(logging.FieldEventType, "ingest_watcher_stopped"),
	)
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// monitorLoop reads netlink events and processes card insertions.
func (w *Watcher) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	matcher := w.buildMatcher()

	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, matcher)

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			w.handleEvent(ctx, uevent)
		case err := <-errs:
			w.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "card detection may be affected"),
			)
		}
	}
}

// buildMatcher creates a matcher for card insertion events.
// Matches: SUBSYSTEM=block, DEVTYPE=partition, ACTION=add
func (w *Watcher) buildMatcher() netlink.Matcher {
	action := "add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVTYPE":   "partition",
		},
	})
	return rules
}

// handleEvent processes a matched uevent.
func (w *Watcher) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := w.extractDeviceName(uevent)
	if devname == "" {
		w.logger.Debug("ignoring event without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}

	if !w.matchesDevice(devname) {
		w.logger.Debug("ignoring event for non-matching device",
			logging.String("device", devname),
			logging.String("device_pattern", w.pattern),
		)
		return
	}

	if w.isPaused != nil && w.isPaused() {
		w.logger.Debug("ingest busy, ignoring card event",
			logging.String("device", devname),
		)
		return
	}

	probe := preflight.ProbeDevice(devname)
	w.logger.Info("camera card detected via netlink",
		logging.String(logging.FieldEventType, "card_detected"),
		logging.String("device", devname),
		logging.String("action", string(uevent.Action)),
		logging.String("card", probe.DeviceDetail()),
	)

	if w.handler == nil {
		return
	}

	result, err := w.handler(ctx, devname)
	if err != nil {
		w.logger.Warn("card handler failed",
			logging.Error(err),
			logging.String("device", devname),
			logging.String(logging.FieldEventType, "card_handler_failed"),
			logging.String(logging.FieldErrorHint, "check the run log for details"),
			logging.String(logging.FieldImpact, "footage not ingested"),
		)
		return
	}

	if result == nil {
		return
	}

	if result.Handled {
		w.logger.Info("run started from card detection",
			logging.String("device", devname),
			logging.String("message", result.Message),
			logging.String(logging.FieldRunID, result.RunID),
			logging.String(logging.FieldEventType, "card_run_started"),
		)
	} else {
		w.logger.Debug("card not handled",
			logging.String("device", devname),
			logging.String("message", result.Message),
		)
	}
}

// matchesDevice reports whether devname matches the configured pattern.
// The pattern may be a literal device path or a filepath glob like /dev/sd?1.
func (w *Watcher) matchesDevice(devname string) bool {
	if devname == w.pattern {
		return true
	}
	ok, err := filepath.Match(w.pattern, devname)
	if err != nil {
		return false
	}
	return ok
}

// extractDeviceName gets the device path from a uevent.
func (w *Watcher) extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}

	// Try to construct from DEVPATH (e.g., /devices/pci.../block/sdb/sdb1)
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}

	parts := strings.Split(devpath, "/")
	if len(parts) == 0 {
		return ""
	}
	return "/dev/" + parts[len(parts)-1]
}
