package ingestion

import (
	"path/filepath"
	"sync"

	"botlynx/internal/config"
	"botlynx/internal/detector"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// PatternWatcher reloads the bot pattern table whenever its YAML file changes. The
// parent directory is watched so editors that save by rename are picked up too.
type PatternWatcher struct {
	watcher    *fsnotify.Watcher
	path       string
	classifier *detector.Classifier
	reloaded   chan int // table size after each successful reload
	logger     *pterm.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewPatternWatcher starts watching path and swaps the classifier table on change.
func NewPatternWatcher(path string, classifier *detector.Classifier, logger *pterm.Logger) (*PatternWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithCaller().Error("Failed to create pattern watcher", logger.Args("error", err))
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		logger.WithCaller().Error("Failed to watch patterns directory", logger.Args("path", abs, "error", err))
		watcher.Close()
		return nil, err
	}

	pw := &PatternWatcher{
		watcher:    watcher,
		path:       abs,
		classifier: classifier,
		reloaded:   make(chan int, 10),
		logger:     logger,
		stopCh:     make(chan struct{}),
	}

	pw.wg.Add(1)
	go pw.eventLoop()

	logger.Info("Pattern watcher initialized", logger.Args("path", abs))
	return pw, nil
}

func (pw *PatternWatcher) eventLoop() {
	defer pw.wg.Done()

	for {
		select {
		case <-pw.stopCh:
			pw.logger.Debug("Pattern watcher stopped")
			return

		case event, ok := <-pw.watcher.Events:
			if !ok {
				pw.logger.Warn("Pattern watcher events channel closed")
				return
			}
			if filepath.Clean(event.Name) != pw.path {
				continue
			}

			switch {
			case event.Op&fsnotify.Write == fsnotify.Write, event.Op&fsnotify.Create == fsnotify.Create:
				pw.logger.Debug("Patterns file changed", pw.logger.Args("file", event.Name, "op", event.Op.String()))
				pw.Reload()

			case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
				pw.logger.Warn("Patterns file removed, keeping current table", pw.logger.Args("file", event.Name))
			}

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				pw.logger.Warn("Pattern watcher errors channel closed")
				return
			}
			pw.logger.WithCaller().Error("Pattern watcher error", pw.logger.Args("error", err))
		}
	}
}

// Reload reads the patterns file and replaces the classifier table. On any error the
// current table stays in place.
func (pw *PatternWatcher) Reload() error {
	bots, err := config.LoadPatterns(pw.path)
	if err != nil {
		pw.logger.WithCaller().Error("Failed to reload bot patterns", pw.logger.Args("path", pw.path, "error", err))
		return err
	}
	if err := pw.classifier.Replace(bots); err != nil {
		pw.logger.WithCaller().Error("Rejected bot patterns", pw.logger.Args("path", pw.path, "error", err))
		return err
	}

	size := pw.classifier.Len()
	pw.logger.Info("Bot patterns reloaded", pw.logger.Args("path", pw.path, "bots", size))
	select {
	case pw.reloaded <- size:
	default:
	}
	return nil
}

// Reloaded delivers the table size after each successful reload.
func (pw *PatternWatcher) Reloaded() <-chan int {
	return pw.reloaded
}

// Close stops the watcher and waits for the event loop to exit.
func (pw *PatternWatcher) Close() error {
	pw.logger.Debug("Closing pattern watcher...")
	close(pw.stopCh)
	pw.wg.Wait()

	if err := pw.watcher.Close(); err != nil {
		pw.logger.WithCaller().Error("Failed to close pattern watcher", pw.logger.Args("error", err))
		return err
	}
	pw.logger.Info("Pattern watcher closed")
	return nil
}
