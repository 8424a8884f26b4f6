package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"meridian/internal/config"
)

func watchConfig(t *testing.T, device string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Ingest.Device = device
	return cfg
}

func TestNew(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		w := New(nil, nil, nil, nil)
		if w != nil {
			t.Error("expected nil watcher for nil config")
		}
	})

	t.Run("empty device returns nil", func(t *testing.T) {
		w := New(watchConfig(t, "  "), nil, nil, nil)
		if w != nil {
			t.Error("expected nil watcher without a device pattern")
		}
	})

	t.Run("valid config creates watcher", func(t *testing.T) {
		w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)
		if w == nil {
			t.Fatal("expected non-nil watcher")
		}
		if w.pattern != "/dev/sdb1" {
			t.Errorf("expected pattern /dev/sdb1, got %s", w.pattern)
		}
	})
}

func TestWatcherRunning(t *testing.T) {
	t.Run("nil watcher returns false", func(t *testing.T) {
		var w *Watcher
		if w.Running() {
			t.Error("expected Running() to return false for nil watcher")
		}
	})

	t.Run("unstarted watcher returns false", func(t *testing.T) {
		w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)
		if w.Running() {
			t.Error("expected Running() to return false for unstarted watcher")
		}
	})
}

func TestWatcherStopStartIdempotency(t *testing.T) {
	t.Run("stop on nil watcher is safe", func(t *testing.T) {
		var w *Watcher
		w.Stop() // must not panic
	})

	t.Run("start on nil watcher is safe", func(t *testing.T) {
		var w *Watcher
		if err := w.Start(context.Background()); err != nil {
			t.Fatalf("Start on nil watcher should return nil, got: %v", err)
		}
	})

	t.Run("stop on unstarted watcher is safe", func(t *testing.T) {
		w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)
		w.Stop() // must not panic
		if w.Running() {
			t.Error("expected Running() to return false after Stop on unstarted watcher")
		}
	})

	t.Run("double stop is safe", func(t *testing.T) {
		w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)
		w.Stop()
		w.Stop()
	})

	t.Run("start without netlink access is non-fatal", func(t *testing.T) {
		w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)
		// Connect may fail in the test environment; either way Start must
		// not return a hard error.
		if err := w.Start(context.Background()); err != nil {
			t.Fatalf("Start returned hard error: %v", err)
		}
		w.Stop()
	})
}

func TestBuildMatcher(t *testing.T) {
	w := New(watchConfig(t, "/dev/sdb1"), nil, nil, nil)

	matcher := w.buildMatcher()
	if matcher == nil {
		t.Fatal("expected non-nil matcher")
	}

	cardEvent := netlink.UEvent{
		Action: netlink.ADD,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVTYPE":   "partition",
		},
	}
	if !matcher.Evaluate(cardEvent) {
		t.Error("expected matcher to accept a partition add event")
	}

	removeEvent := netlink.UEvent{
		Action: netlink.REMOVE,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVTYPE":   "partition",
		},
	}
	if matcher.Evaluate(removeEvent) {
		t.Error("expected matcher to reject REMOVE action")
	}

	diskEvent := netlink.UEvent{
		Action: netlink.ADD,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVTYPE":   "disk",
		},
	}
	if matcher.Evaluate(diskEvent) {
		t.Error("expected matcher to reject whole-disk events")
	}
}

func TestMatchesDevice(t *testing.T) {
	cases := []struct {
		pattern string
		device  string
		want    bool
	}{
		{"/dev/sdb1", "/dev/sdb1", true},
		{"/dev/sdb1", "/dev/sdc1", false},
		{"/dev/sd?1", "/dev/sdb1", true},
		{"/dev/sd?1", "/dev/sdb2", false},
		{"/dev/sd[a-c]1", "/dev/sdb1", true},
		{"/dev/sd[a-c]1", "/dev/sdd1", false},
		{"[", "/dev/sdb1", false},
	}
	for _, tc := range cases {
		cfg := &config.Config{}
		cfg.Paths.WorkDir = t.TempDir()
		cfg.Ingest.Device = tc.pattern
		w := New(cfg, nil, nil, nil)
		if got := w.matchesDevice(tc.device); got != tc.want {
			t.Errorf("pattern %q device %q: got %v, want %v", tc.pattern, tc.device, got, tc.want)
		}
	}
}

func TestHandleEvent(t *testing.T) {
	t.Run("ignores event without device name", func(t *testing.T) {
		var handlerCalled bool
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			handlerCalled = true
			return &CardResult{Handled: true}, nil
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, nil)
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env:    map[string]string{},
		})

		if handlerCalled {
			t.Error("handler should not be called for event without device name")
		}
	})

	t.Run("ignores event for non-matching device", func(t *testing.T) {
		var handlerCalled bool
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			handlerCalled = true
			return &CardResult{Handled: true}, nil
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, nil)
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdc1",
			},
		})

		if handlerCalled {
			t.Error("handler should not be called for non-matching device")
		}
	})

	t.Run("ignores event while busy", func(t *testing.T) {
		var handlerCalled bool
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			handlerCalled = true
			return &CardResult{Handled: true}, nil
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, func() bool { return true })
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdb1",
			},
		})

		if handlerCalled {
			t.Error("handler should not be called while busy")
		}
	})

	t.Run("calls handler for matching device", func(t *testing.T) {
		var handlerCalled bool
		var receivedDevice string
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			handlerCalled = true
			receivedDevice = device
			return &CardResult{Handled: true, Message: "run started"}, nil
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, func() bool { return false })
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdb1",
			},
		})

		if !handlerCalled {
			t.Error("handler should be called for matching device")
		}
		if receivedDevice != "/dev/sdb1" {
			t.Errorf("expected device /dev/sdb1, got %s", receivedDevice)
		}
	})

	t.Run("glob pattern matches sibling devices", func(t *testing.T) {
		var receivedDevice string
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			receivedDevice = device
			return &CardResult{Handled: true}, nil
		}

		w := New(watchConfig(t, "/dev/sd?1"), nil, handler, nil)
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdc1",
			},
		})

		if receivedDevice != "/dev/sdc1" {
			t.Errorf("expected device /dev/sdc1, got %s", receivedDevice)
		}
	})

	t.Run("extracts device from DEVPATH when DEVNAME missing", func(t *testing.T) {
		var receivedDevice string
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			receivedDevice = device
			return &CardResult{Handled: true}, nil
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, func() bool { return false })
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVPATH": "/devices/pci0000:00/0000:00:14.0/usb2/2-1/host4/target4:0:0/4:0:0:0/block/sdb/sdb1",
			},
		})

		if receivedDevice != "/dev/sdb1" {
			t.Errorf("expected device /dev/sdb1 from DEVPATH, got %s", receivedDevice)
		}
	})

	t.Run("handler error does not propagate", func(t *testing.T) {
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			return nil, errors.New("discovery failed")
		}

		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, nil)
		w.handleEvent(context.Background(), netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdb1",
			},
		}) // must not panic
	})

	t.Run("respects dynamic busy state", func(t *testing.T) {
		var callCount int
		handler := func(ctx context.Context, device string) (*CardResult, error) {
			callCount++
			return &CardResult{Handled: true}, nil
		}

		var busy atomic.Bool
		w := New(watchConfig(t, "/dev/sdb1"), nil, handler, func() bool { return busy.Load() })
		event := netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"DEVNAME": "/dev/sdb1",
			},
		}

		w.handleEvent(context.Background(), event)
		if callCount != 1 {
			t.Errorf("expected 1 call, got %d", callCount)
		}

		busy.Store(true)
		w.handleEvent(context.Background(), event)
		if callCount != 1 {
			t.Errorf("expected still 1 call while busy, got %d", callCount)
		}

		busy.Store(false)
		w.handleEvent(context.Background(), event)
		if callCount != 2 {
			t.Errorf("expected 2 calls after release, got %d", callCount)
		}
	})
}
