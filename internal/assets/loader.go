package assets

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Loader reads resources from a file system. Remote locators are passed
// through without data so the host can fetch them.
type Loader struct {
	fsys  fs.FS
	limit int
}

func NewLoader(fsys fs.FS, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Loader{fsys: fsys, limit: concurrency}
}

// Load reads every descriptor concurrently. progress is called from the
// loading goroutines after each resource and may be nil. The first failure
// cancels the remaining reads and is returned.
func (l *Loader) Load(ctx context.Context, descs []Descriptor, progress ProgressFunc) (Bundle, error) {
	bundle := make(Bundle)
	if len(descs) == 0 {
		notify(progress, 100)
		return bundle, nil
	}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	total := int64(len(descs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	for _, d := range descs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := l.read(d)
			if err != nil {
				return err
			}

			mu.Lock()
			bundle.put(r)
			mu.Unlock()

			n := done.Add(1)
			notify(progress, int(n*100/total))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (l *Loader) read(d Descriptor) (Resource, error) {
	if d.Kind != KindImage && d.Kind != KindSound {
		return Resource{}, fmt.Errorf("%w: %q for %s", ErrUnknownKind, d.Kind, d.Name)
	}

	r := Resource{Kind: d.Kind, Name: d.Name, Locator: d.Locator}
	if isRemote(d.Locator) {
		return r, nil
	}

	data, err := fs.ReadFile(l.fsys, FSPath(d.Locator))
	if err != nil {
		return Resource{}, fmt.Errorf("load %s %q: %w", d.Kind, d.Name, err)
	}
	r.Data = data
	return r, nil
}

// FSPath turns a local locator into a path relative to the asset root, so
// "/images/p1.png" and "images/p1.png" name the same file.
func FSPath(locator string) string {
	return strings.TrimPrefix(path.Clean(locator), "/")
}

func notify(progress ProgressFunc, percent int) {
	if progress != nil {
		progress(Progress{Percent: percent})
	}
}
