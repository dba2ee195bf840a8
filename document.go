package main

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// Document is a G-code file held as ordered lines. Every line keeps its own
// terminator so that untouched content is written back byte for byte.
type Document struct {
	Lines   []string
	Newline string
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(string(data)), nil
}

func ParseDocument(text string) *Document {
	doc := &Document{Newline: "\n"}
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			doc.Lines = append(doc.Lines, text)
			break
		}
		doc.Lines = append(doc.Lines, text[:i+1])
		text = text[i+1:]
	}

	for _, line := range doc.Lines {
		if strings.HasSuffix(line, "\n") {
			if strings.HasSuffix(line, "\r\n") {
				doc.Newline = "\r\n"
			}
			break
		}
	}
	return doc
}

func (d *Document) String() string {
	var sb strings.Builder
	for _, line := range d.Lines {
		sb.WriteString(line)
	}
	return sb.String()
}

// content strips the terminator of a line.
func content(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// WriteDocument replaces the file at path with the document. The bytes go to
// a temporary file in the same directory which is renamed over the target,
// so readers see either the old file or the new one.
func WriteDocument(path string, doc *Document) (err error) {
	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".printdata-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			err = multierr.Append(err, tmp.Close())
		}
		err = multierr.Append(err, os.Remove(tmpPath))
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	for _, line := range doc.Lines {
		if _, err = bw.WriteString(line); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows it.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
