package monitor

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// sink is the buffered output destination for rendered frames. Frames
// are written through the bufio layer and flushed once per tick.
type sink struct {
	w      *bufio.Writer
	file   *os.File
	owned  bool
	closed bool
}

// openSink opens the output destination. An empty path selects stdout.
// Text output appends to an existing file and csv rewrites it. XML
// writes at the end of whatever is there; the declaration and root-open
// tag are emitted only when the file holds no content at open time, so
// repeated runs can keep appending records under one logical root.
func openSink(path string, format Format) (*sink, error) {
	if path == "" {
		return &sink{w: bufio.NewWriter(os.Stdout), file: os.Stdout}, nil
	}

	flags := os.O_CREATE | os.O_RDWR
	switch format {
	case FormatText:
		flags |= os.O_APPEND
	case FormatCSV:
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening %q output file: %w", path, err)
	}
	s := &sink{w: bufio.NewWriter(f), file: f, owned: true}

	if format == FormatXML {
		end, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("output file seek error: %w", err)
		}
		if end == 0 {
			s.w.WriteString(xmlDeclaration)
			s.w.WriteString(xmlRootOpen)
			s.w.WriteByte('\n')
		}
	}
	return s, nil
}

func (s *sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *sink) WriteString(str string) (int, error) {
	return s.w.WriteString(str)
}

func (s *sink) Flush() error {
	return s.w.Flush()
}

// Terminal reports whether the sink is an interactive terminal and, if
// so, its current row count.
func (s *sink) Terminal() (rows int, ok bool) {
	fd := int(s.file.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	_, rows, err := term.GetSize(fd)
	if err != nil {
		return 0, false
	}
	return rows, true
}

// Close flushes and, for file-backed sinks, closes the file. Safe to
// call more than once; stdout is never closed.
func (s *sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.w.Flush()
	if s.owned {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
