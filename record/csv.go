package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tebeka/atexit"
)

var csvHeader = []string{"core", "kind", "address", "level", "value"}

// CSVWriter writes accesses into a CSV file.
type CSVWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	accesses   []Access
	bufferSize int
}

// NewCSVWriter creates a writer for path. An empty path picks a unique name;
// a path without extension gets ".csv".
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       defaultPath(path, ".csv"),
		bufferSize: 1000,
	}
}

// Path returns the file the writer writes to.
func (w *CSVWriter) Path() string {
	return w.path
}

// Init creates the file and writes the header. It refuses to overwrite an
// existing file.
func (w *CSVWriter) Init() error {
	if _, err := os.Stat(w.path); err == nil {
		return fmt.Errorf("file %s already exists", w.path)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create access record: %w", err)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	if err := w.csv.Write(csvHeader); err != nil {
		w.csv = nil
		w.file = nil

		return errors.Join(err, file.Close())
	}

	atexit.Register(func() {
		if err := w.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing %s: %v\n", w.path, err)
		}
	})

	return nil
}

// Write buffers an access.
func (w *CSVWriter) Write(a Access) error {
	w.accesses = append(w.accesses, a)
	if len(w.accesses) >= w.bufferSize {
		return w.Flush()
	}

	return nil
}

// Flush writes the buffered accesses to the file.
func (w *CSVWriter) Flush() error {
	if w.csv == nil {
		return nil
	}

	for _, a := range w.accesses {
		err := w.csv.Write([]string{
			strconv.Itoa(a.Core),
			a.Kind,
			strconv.FormatUint(a.Address, 10),
			strconv.Itoa(a.Level),
			strconv.FormatUint(uint64(a.Value), 10),
		})
		if err != nil {
			return err
		}
	}

	w.accesses = nil
	w.csv.Flush()

	return w.csv.Error()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	if err := w.Flush(); err != nil {
		return err
	}

	err := w.file.Close()
	w.file = nil
	w.csv = nil

	return err
}
