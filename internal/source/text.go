package source

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// Text reads a plain or gzip-compressed file line by line. It has no index.
type Text struct {
	path   string
	file   *os.File
	gz     *gzip.Reader
	reader *bufio.Reader
}

// OpenText opens path, detecting gzip compression from the magic bytes.
func OpenText(path string) (*Text, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, genepred.NewIOError("open data file", path, err)
	}
	t := &Text{path: path, file: file}
	if err := t.reset(); err != nil {
		file.Close()
		return nil, err
	}
	return t, nil
}

func (t *Text) reset() error {
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return genepred.NewIOError("seek data file", t.path, err)
	}
	magic := make([]byte, 2)
	n, err := io.ReadFull(t.file, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return genepred.NewIOError("read data file", t.path, err)
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return genepred.NewIOError("seek data file", t.path, err)
	}

	if t.gz != nil {
		t.gz.Close()
		t.gz = nil
	}
	// Check for gzip magic number (0x1f, 0x8b)
	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		t.gz, err = gzip.NewReader(t.file)
		if err != nil {
			return genepred.NewIOError("create gzip reader", t.path, err)
		}
		t.reader = bufio.NewReader(t.gz)
		return nil
	}
	t.reader = bufio.NewReader(t.file)
	return nil
}

// ReadLine returns the next line without its terminator.
func (t *Text) ReadLine() (string, error) {
	return readLine(t.reader, t.path)
}

// Rewind restarts reading from the first line.
func (t *Text) Rewind() error {
	return t.reset()
}

// Close releases the file.
func (t *Text) Close() error {
	if t.gz != nil {
		t.gz.Close()
	}
	return t.file.Close()
}

// readLine reads one line from r. A final line without a newline is
// returned before io.EOF.
func readLine(r *bufio.Reader, path string) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if line == "" {
				return "", io.EOF
			}
		} else {
			return "", genepred.NewIOError("read line", path, err)
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
