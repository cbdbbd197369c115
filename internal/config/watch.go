package config

import (
	"context"
	"os"
	"time"
)

// WatchServices loads the service catalog file once, hands it to onUpdate and
// then polls the file's modification time every interval in the background.
// A newer file is parsed again; parse failures go to onError and the previous
// catalog stays in effect. A failed first load is returned to the caller and
// no polling starts. Polling ends when ctx is cancelled.
func WatchServices(ctx context.Context, path string, interval time.Duration, onUpdate func(*ServicesConfig), onError func(error)) error {
	if path == "" {
		path = "configs/services.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	w := &servicesWatcher{path: path, onUpdate: onUpdate, onError: onError}
	if err := w.load(); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	w.seen = info.ModTime()

	go w.poll(ctx, interval)
	return nil
}

type servicesWatcher struct {
	path     string
	seen     time.Time
	onUpdate func(*ServicesConfig)
	onError  func(error)
}

func (w *servicesWatcher) load() error {
	cfg, err := LoadServicesConfig(w.path)
	if err != nil {
		return err
	}
	if w.onUpdate != nil {
		w.onUpdate(cfg)
	}
	return nil
}

func (w *servicesWatcher) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// A missing file is usually an editor mid-save; try again next tick.
		info, err := os.Stat(w.path)
		if err != nil || !info.ModTime().After(w.seen) {
			continue
		}
		w.seen = info.ModTime()
		if err := w.load(); err != nil && w.onError != nil {
			w.onError(err)
		}
	}
}
