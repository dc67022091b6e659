package circuit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/utils"
)

// Loader feeds analyzer result files from a directory into a repository.
// Files may be JSON or YAML renditions of the analyzer wire shape.
type Loader struct {
	repo *Repository
	dir  string
	log  *log.Logger
	// content digests of loaded files, editors fire several write
	// events per save
	seen map[string]string
}

func NewLoader(repo *Repository, dir string) *Loader {
	return &Loader{
		repo: repo,
		dir:  dir,
		log:  log.Default().Named("circuit.loader"),
		seen: make(map[string]string),
	}
}

// LoadAll reads every result file in the directory and registers the
// models. Unreadable files are logged and skipped.
func (l *Loader) LoadAll() (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("reading circuit dir: %w", err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !isResultFile(entry.Name()) {
			continue
		}
		if err := l.loadFile(filepath.Join(l.dir, entry.Name())); err != nil {
			l.log.Warn("skipping circuit file",
				log.String("file", entry.Name()),
				log.ErrorField(err))
			continue
		}
		loaded++
	}
	l.log.Info("loaded circuit definitions",
		log.String("dir", l.dir),
		log.Int("count", loaded))
	return loaded, nil
}

// Watch reloads result files when they are created or modified. It blocks
// until ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching circuit dir: %w", err)
	}
	l.log.Debug("watching circuit dir", log.String("dir", l.dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isResultFile(event.Name) {
				continue
			}
			if err := l.loadFile(event.Name); err != nil {
				l.log.Warn("could not reload circuit file",
					log.String("file", event.Name),
					log.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("circuit watcher error", log.ErrorField(err))
		}
	}
}

func (l *Loader) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	digest := utils.HashContent(data)
	if l.seen[path] == digest {
		l.log.Debug("unchanged circuit file", log.String("file", filepath.Base(path)))
		return nil
	}
	var result AnalysisResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &result)
	case ".yaml", ".yml":
		// route through JSON so the wire field names apply to YAML too
		var raw map[string]any
		if err = yaml.Unmarshal(data, &raw); err == nil {
			var buf []byte
			if buf, err = json.Marshal(raw); err == nil {
				err = json.Unmarshal(buf, &result)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	model, err := result.Model()
	if err != nil {
		return err
	}
	if err := l.repo.Register(model); err != nil {
		return err
	}
	l.seen[path] = digest
	return nil
}

func isResultFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
