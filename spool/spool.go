// Package spool renders print jobs dropped into a directory.
//
// A Spooler watches its spool directory with fsnotify and also re-sweeps it
// on a cron schedule, so files missed by the watcher are still printed.
// Each job gets a UUID and is rendered on a single worker goroutine.
package spool

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wbrown/dotprint"
	"github.com/wbrown/dotprint/internal/logging"
)

// DefaultSweepSchedule re-scans the spool directory every minute.
const DefaultSweepSchedule = "@every 1m"

// Job is one rendered input file. Output is the first file written; image
// formats write one file per page, all listed in Outputs.
type Job struct {
	ID       string
	Input    string
	Output   string
	Outputs  []string
	Started  time.Time
	Finished time.Time
	Err      error
}

// fileState identifies a version of an input file.
type fileState struct {
	modTime time.Time
	size    int64
}

// Spooler turns files in a directory into rendered documents.
type Spooler struct {
	dir      string
	outDir   string
	ext      string
	schedule string
	debounce time.Duration
	renderer *dotprint.Renderer
	logger   *log.Logger
	onJob    func(Job)

	mu     sync.Mutex
	seen   map[string]fileState
	timers map[string]*time.Timer
	queue  chan string
}

// Option configures a Spooler.
type Option func(*Spooler)

// WithFormat sets the output file extension, e.g. ".pdf", ".png" or ".txt".
func WithFormat(ext string) Option {
	return func(s *Spooler) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.ext = ext
	}
}

// WithSweepSchedule sets the cron schedule of directory sweeps.
func WithSweepSchedule(spec string) Option {
	return func(s *Spooler) {
		s.schedule = spec
	}
}

// WithDebounce sets how long a file must stay quiet before it is printed.
func WithDebounce(d time.Duration) Option {
	return func(s *Spooler) {
		s.debounce = d
	}
}

// WithLogger sets the spooler's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Spooler) {
		s.logger = l
	}
}

// WithJobHook registers a function called after every job.
func WithJobHook(fn func(Job)) Option {
	return func(s *Spooler) {
		s.onJob = fn
	}
}

// New returns a Spooler reading dir and writing into outDir.
func New(dir, outDir string, r *dotprint.Renderer, opts ...Option) (*Spooler, error) {
	s := &Spooler{
		dir:      dir,
		outDir:   outDir,
		ext:      ".pdf",
		schedule: DefaultSweepSchedule,
		debounce: 500 * time.Millisecond,
		renderer: r,
		logger:   log.Default(),
		seen:     make(map[string]fileState),
		timers:   make(map[string]*time.Timer),
		queue:    make(chan string, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range []string{dir, outDir} {
		info, err := os.Stat(d)
		if err != nil {
			return nil, fmt.Errorf("failed to open spool directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", d)
		}
	}
	if sameDir(dir, outDir) {
		return nil, fmt.Errorf("spool and output directory must differ")
	}
	return s, nil
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// claim marks path as queued and reports whether it is new or changed.
func (s *Spooler) claim(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	st := fileState{modTime: info.ModTime(), size: info.Size()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.seen[path]; ok && prev == st {
		return false
	}
	s.seen[path] = st
	return true
}

func (s *Spooler) enqueue(ctx context.Context, path string) {
	if !s.claim(path) {
		return
	}
	logging.Debugf(s.logger, "spool: queued %s", path)
	select {
	case s.queue <- path:
	case <-ctx.Done():
	}
}

// Sweep queues every new or changed file in the spool directory.
func (s *Spooler) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Printf("ERROR: spool: failed to read %s: %v", s.dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		s.enqueue(ctx, filepath.Join(s.dir, e.Name()))
	}
}

// Process renders one input file synchronously.
func (s *Spooler) Process(path string) Job {
	id := uuid.New().String()
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(s.outDir, fmt.Sprintf("%s-%s%s", base, id[:8], s.ext))
	job := Job{
		ID:      id,
		Input:   path,
		Output:  out,
		Started: time.Now(),
	}
	job.Err = s.renderer.RenderFile(path, out)
	job.Finished = time.Now()
	if job.Err == nil {
		job.Outputs = outputFiles(out)
		if len(job.Outputs) > 0 {
			job.Output = job.Outputs[0]
		}
	}

	if job.Err != nil {
		s.logger.Printf("ERROR: spool: job %s (%s) failed: %v", job.ID, path, job.Err)
	} else {
		s.logger.Printf("INFO: spool: job %s printed %s to %s in %v",
			job.ID, filepath.Base(path), job.Output, job.Finished.Sub(job.Started).Round(time.Millisecond))
	}
	if s.onJob != nil {
		s.onJob(job)
	}
	return job
}

// outputFiles lists the files a render to out produced.
func outputFiles(out string) []string {
	if dotprint.FormatFor(out) != dotprint.FormatImage {
		return []string{out}
	}
	var files []string
	for n := 1; ; n++ {
		page := dotprint.PagePath(out, n)
		if _, err := os.Stat(page); err != nil {
			return files
		}
		files = append(files, page)
	}
}

// scheduleFile debounces events for path.
func (s *Spooler) scheduleFile(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[path]; ok {
		t.Stop()
	}
	s.timers[path] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, path)
		s.mu.Unlock()
		s.enqueue(ctx, path)
	})
}

func (s *Spooler) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, t := range s.timers {
		t.Stop()
		delete(s.timers, path)
	}
}

// Run watches the spool directory until ctx is cancelled. Jobs already
// being rendered are allowed to finish.
func (s *Spooler) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case path := <-s.queue:
				s.Process(path)
			case <-ctx.Done():
				return
			}
		}
	}()

	c.Start()
	s.logger.Printf("INFO: spool: watching %s, writing %s files to %s", s.dir, s.ext, s.outDir)
	go s.Sweep(ctx)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				s.scheduleFile(ctx, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Printf("ERROR: spool: watcher error: %v", err)

		case <-ctx.Done():
			s.logger.Printf("INFO: spool: stopping")
			<-c.Stop().Done()
			s.stopTimers()
			wg.Wait()
			return nil
		}
	}
}
