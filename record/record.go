// Package record stores the accesses of a run into CSV files or SQLite
// databases.
package record

import (
	"path/filepath"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/core"
)

// Access is one recorded core access.
type Access struct {
	Core    int
	Kind    string
	Address uint64
	Level   int
	Value   uint32
}

// NewAccess converts a hook item into a record.
func NewAccess(info core.AccessInfo) Access {
	return Access{
		Core:    info.Core,
		Kind:    info.Kind.String(),
		Address: info.Address,
		Level:   int(info.Level),
		Value:   info.Value.Uint32(),
	}
}

// Writer stores accesses. Writes may be buffered until Flush.
type Writer interface {
	Init() error
	Write(a Access) error
	Flush() error
	Close() error
}

// Recorder is a hook that forwards every core access to a Writer.
type Recorder struct {
	writer Writer
	count  int
	err    error
}

// NewRecorder creates a recorder writing to w. The writer must already be
// initialized.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{writer: w}
}

// Func records an access.
func (r *Recorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosAccess {
		return
	}

	info, ok := ctx.Item.(core.AccessInfo)
	if !ok {
		return
	}

	if err := r.writer.Write(NewAccess(info)); err != nil {
		if r.err == nil {
			r.err = err
		}

		return
	}

	r.count++
}

// Count returns the number of accesses handed to the writer.
func (r *Recorder) Count() int {
	return r.count
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	return r.err
}

// defaultPath fills in an unnamed output and appends ext when the path has
// no extension.
func defaultPath(path, ext string) string {
	if path == "" {
		path = "cachesim_" + xid.New().String()
	}

	if filepath.Ext(path) == "" {
		path += ext
	}

	return path
}
