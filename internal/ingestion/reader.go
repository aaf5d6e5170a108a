package ingestion

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxLineSize bounds a single log line. A longer line is drained and surfaced as
// an empty oversize line so the scan can reject it and go on.
const MaxLineSize = 1 << 20

// LineReader reads an access log line by line. Invalid UTF-8 is replaced with U+FFFD
// so a binary-garbled line never aborts a scan.
type LineReader struct {
	br       *bufio.Reader
	buf      []byte
	closers  []io.Closer
	line     string
	oversize bool
	read     int
	err      error
}

// NewLineReader wraps an already open stream.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// OpenLog opens a plain or gzip-compressed log file. A missing file yields an error
// wrapping os.ErrNotExist.
func OpenLog(path string) (*LineReader, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("log file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		lr := NewLineReader(file)
		lr.closers = []io.Closer{file}
		return lr, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip log %s: %w", path, err)
	}
	lr := NewLineReader(gz)
	lr.closers = []io.Closer{gz, file}
	return lr, nil
}

// Next advances to the next line. It returns false at EOF or on a read error.
func (r *LineReader) Next() bool {
	if r.err != nil {
		return false
	}
	r.buf = r.buf[:0]
	r.oversize = false

	consumed := 0
	for {
		chunk, err := r.br.ReadSlice('\n')
		consumed += len(chunk)
		if !r.oversize {
			if len(r.buf)+len(chunk) > MaxLineSize+1 {
				r.oversize = true
				r.buf = r.buf[:0]
			} else {
				r.buf = append(r.buf, chunk...)
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && consumed == 0 {
			return false
		}
		if err != nil && !errors.Is(err, io.EOF) {
			r.err = err
			return false
		}
		break
	}

	line := bytes.TrimSuffix(r.buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	r.line = strings.ToValidUTF8(string(line), "\uFFFD")
	r.read++
	return true
}

// Oversized reports whether the current line exceeded MaxLineSize. Its content is
// discarded and Line returns "".
func (r *LineReader) Oversized() bool {
	return r.oversize
}

// Line returns the current line without its trailing newline.
func (r *LineReader) Line() string {
	return r.line
}

// LinesRead returns how many lines Next has produced so far.
func (r *LineReader) LinesRead() int {
	return r.read
}

func (r *LineReader) Err() error {
	return r.err
}

func (r *LineReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
