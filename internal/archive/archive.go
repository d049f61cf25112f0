// Package archive builds the downloadable export of a user's data.
//
// A DataArchive is a working directory that handlers fill with YAML data
// files, collections (sub-directories) and copies of media files. Finalize
// packs the directory into a zip file in the output directory and removes the
// working copy.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
)

// ErrFinalized is returned when an archive is written to after Finalize or Discard.
var ErrFinalized = errors.New("archive already finalized")

// Archiver receives the top-level files of a data archive.
type Archiver interface {
	// WriteDataFile writes data as a YAML file named after name and returns its path.
	WriteDataFile(name string, data any) (string, error)

	// CreateCollection creates a named sub-directory for related files.
	CreateCollection(name string) (Collection, error)
}

// Collection is a sub-directory of an archive.
type Collection interface {
	// WriteDataFile writes data as a YAML file named after name and returns its path.
	WriteDataFile(name string, data any) (string, error)

	// WriteModelFile copies a media-relative file into the collection.
	// An empty path is skipped and returns an empty string.
	WriteModelFile(path string) (string, error)
}

// Config locates the directories a DataArchive works with.
type Config struct {
	WorkingDir string
	OutputDir  string
	MediaRoot  string
	// MaxAge is how long finished zip files are kept in OutputDir.
	MaxAge time.Duration
}

// DataArchive is an Archiver backed by a temporary directory.
type DataArchive struct {
	mu        sync.Mutex
	name      string
	dir       string
	outputDir string
	mediaRoot string
	done      bool
	now       func() time.Time
}

// New creates a DataArchive for the given name (usually a username) inside a
// fresh working directory.
func New(cfg Config, name string) (*DataArchive, error) {
	dir := filepath.Join(cfg.WorkingDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive working directory: %w", err)
	}

	log.Debug().Str("archive", name).Str("dir", dir).Msg("Data archive started")

	return &DataArchive{
		name:      name,
		dir:       dir,
		outputDir: cfg.OutputDir,
		mediaRoot: cfg.MediaRoot,
		now:       time.Now,
	}, nil
}

// Dir returns the working directory of the archive.
func (a *DataArchive) Dir() string {
	return a.dir
}

// WriteDataFile writes a data file at the archive root.
func (a *DataArchive) WriteDataFile(name string, data any) (string, error) {
	if err := a.checkOpen(); err != nil {
		return "", err
	}
	return writeDataFile(a.dir, name, data)
}

// CreateCollection creates a sub-directory at the archive root.
func (a *DataArchive) CreateCollection(name string) (Collection, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := uniquePath(a.dir, Slugify(name), "")
	if err := os.Mkdir(path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create collection %q: %w", name, err)
	}

	return &dirCollection{archive: a, dir: path}, nil
}

// Finalize zips the working directory into the output directory, removes
// the working directory and returns the path of the zip file.
func (a *DataArchive) Finalize() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		return "", ErrFinalized
	}
	a.done = true
	defer a.removeDir()

	if err := os.MkdirAll(a.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create archive output directory: %w", err)
	}

	base := Slugify(a.name) + "-" + a.now().UTC().Format("2006-01-02-150405")
	target := uniquePath(a.outputDir, base, ".zip")

	if err := zipDir(a.dir, target); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	log.Info().Str("archive", a.name).Str("file", target).Msg("Data archive created")

	return target, nil
}

// Discard removes the working directory without producing a zip file.
func (a *DataArchive) Discard() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		return nil
	}
	a.done = true
	return a.removeDir()
}

func (a *DataArchive) removeDir() error {
	if err := os.RemoveAll(a.dir); err != nil {
		log.Warn().Err(err).Str("dir", a.dir).Msg("Failed to remove archive working directory")
		return fmt.Errorf("failed to remove archive working directory: %w", err)
	}
	return nil
}

func (a *DataArchive) checkOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		return ErrFinalized
	}
	return nil
}

type dirCollection struct {
	archive *DataArchive
	dir     string
}

func (c *dirCollection) WriteDataFile(name string, data any) (string, error) {
	if err := c.archive.checkOpen(); err != nil {
		return "", err
	}
	return writeDataFile(c.dir, name, data)
}

func (c *dirCollection) WriteModelFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if err := c.archive.checkOpen(); err != nil {
		return "", err
	}

	source, err := c.archive.mediaPath(path)
	if err != nil {
		return "", err
	}

	in, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("failed to open media file %q: %w", path, err)
	}
	defer in.Close()

	ext := filepath.Ext(source)
	target := uniquePath(c.dir, Slugify(strings.TrimSuffix(filepath.Base(source), ext)), strings.ToLower(ext))

	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy media file %q: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive file: %w", err)
	}

	return target, nil
}

// mediaPath resolves a media-relative path, refusing paths that leave the media root.
func (a *DataArchive) mediaPath(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("media path %q is outside the media root", path)
	}
	return filepath.Join(a.mediaRoot, cleaned), nil
}

func writeDataFile(dir, name string, data any) (string, error) {
	content, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode data file %q: %w", name, err)
	}

	path := uniquePath(dir, Slugify(name), ".yaml")
	if err := os.WriteFile(path, content, 0o640); err != nil {
		return "", fmt.Errorf("failed to write data file %q: %w", name, err)
	}

	return path, nil
}

// uniquePath returns dir/base+ext, or dir/base-N+ext for the first N that is free.
func uniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
}

func zipDir(dir, target string) (err error) {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close zip file: %w", closeErr)
		}
	}()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = rel

		if d.IsDir() {
			header.Name += "/"
			_, err = zw.CreateHeader(header)
			return err
		}

		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		return copyFile(w, path)
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to zip archive: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip file: %w", err)
	}
	return nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// TimeName formats a time, in UTC, for use as a data file name.
func TimeName(t time.Time) string {
	return t.UTC().Format(constants.ArchiveTimeNameLayout)
}

// Remove deletes a finished archive file. A file that is already gone is
// not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove data archive: %w", err)
	}
	return nil
}

// Prune removes the zip files in dir last modified at or before cutoff and
// returns how many it removed. A missing dir holds nothing to prune.
func Prune(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read archive output directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".zip" {
			continue
		}

		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to stat data archive: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}
