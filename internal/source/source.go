package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atikulmunna/logtally/internal/model"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrResourceNotFound is returned when a location does not resolve to a
// readable file.
var ErrResourceNotFound = errors.New("resource not found")

// Loader resolves a location into the raw lines it contains.
type Loader interface {
	Load(location string) ([]model.RawLine, error)
}

// FileSource reads lines from files on the local filesystem.
// A location is either a plain path or a doublestar glob pattern.
type FileSource struct{}

func NewFileSource() *FileSource { return &FileSource{} }

// Load reads every line of every file the location resolves to, in path order.
// Each file is closed before Load returns, including when a read fails.
// Lines have no length limit.
func (s *FileSource) Load(location string) ([]model.RawLine, error) {
	paths, err := Resolve(location)
	if err != nil {
		return nil, err
	}

	var lines []model.RawLine
	for _, p := range paths {
		lines, err = readFile(p, lines)
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// Resolve expands a location into the absolute paths of the regular files it
// names. Glob patterns (including recursive ** patterns) are expanded and
// sorted; an empty expansion is ErrResourceNotFound.
func Resolve(location string) ([]string, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("%w: empty location", ErrResourceNotFound)
	}

	// An existing file is taken literally even when its name has glob characters.
	info, statErr := os.Stat(location)
	if statErr == nil && info.Mode().IsRegular() {
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", location, err)
		}
		return []string{abs}, nil
	}
	if !isPattern(location) {
		if statErr != nil {
			return nil, fmt.Errorf("%w: the file %s does not exist", ErrResourceNotFound, location)
		}
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrResourceNotFound, location)
	}

	matches, err := doublestar.FilepathGlob(location, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("%w: expand %q: %v", ErrResourceNotFound, location, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrResourceNotFound, location)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", m, err)
		}
		paths = append(paths, abs)
	}
	sort.Strings(paths)
	return paths, nil
}

// readFile appends the lines of path to dst.
func readFile(path string, dst []model.RawLine) ([]model.RawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", ErrResourceNotFound, path, err)
	}
	defer f.Close()

	r, err := decompress(path, f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	br := bufio.NewReaderSize(r, 64*1024)
	num := 0
	for {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			num++
			text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
			dst = append(dst, model.RawLine{Text: text, Source: path, Num: num})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return dst, nil
}

// decompress wraps r in a decoder chosen by the file extension.
func decompress(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

func isPattern(location string) bool {
	return strings.ContainsAny(location, "*?[{")
}
