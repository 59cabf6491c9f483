package artifactdir

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/kingrea/rulebind/internal/binding"
)

// Change reports an artifact file that appeared or was rewritten.
type Change struct {
	Path          string
	QualifiedName string
	Created       bool
}

// Watch reports artifact files created in or moved into the directory until
// ctx is done. Rewrites of existing files are reported with Created false.
func (s *Source) Watch(ctx context.Context, onChange func(Change)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("artifactdir: create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("artifactdir: watch %s: %w", s.dir, err)
	}
	s.logger.Info("Watching artifact directory", "dir", s.dir)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				change, ok := s.changeFor(event)
				if !ok {
					continue
				}
				s.logger.Debug("Artifact file changed",
					"path", change.Path,
					"artifact", change.QualifiedName,
					"created", change.Created)
				onChange(change)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Error("Artifact watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (s *Source) changeFor(event fsnotify.Event) (Change, bool) {
	className, ok := classNameFromFile(filepath.Base(event.Name))
	if !ok {
		return Change{}, false
	}
	created := event.Has(fsnotify.Create)
	if !created && !event.Has(fsnotify.Write) {
		return Change{}, false
	}
	return Change{
		Path:          event.Name,
		QualifiedName: binding.QualifiedName(s.namespace, className),
		Created:       created,
	}, true
}
