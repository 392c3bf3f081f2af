package trace

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/core"
	"github.com/sarchlab/cachesim/memory"
)

// Report counts completed accesses by the level that served them and renders
// the end-of-run summary.
type Report struct {
	id     xid.ID
	counts map[memory.Level]uint64
	total  uint64
}

// NewReport creates an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		id:     xid.New(),
		counts: make(map[memory.Level]uint64),
	}
}

// ID returns the run ID.
func (r *Report) ID() string {
	return r.id.String()
}

// Func counts an access.
func (r *Report) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosAccess {
		return
	}

	info, ok := ctx.Item.(core.AccessInfo)
	if !ok {
		return
	}

	r.counts[info.Level]++
	r.total++
}

// Count returns the number of accesses that returned level.
func (r *Report) Count(level memory.Level) uint64 {
	return r.counts[level]
}

// Total returns the number of accesses counted.
func (r *Report) Total() uint64 {
	return r.total
}

// Render writes the cache, memory and hit tables for proc.
func (r *Report) Render(w io.Writer, proc *core.Processor) error {
	fmt.Fprintf(w, "Run %s\n\n", r.ID())

	tw := newTable(w)
	fmt.Fprintln(tw, "Level\tCapacity\tAssociativity\tLine size\t")
	for _, l := range proc.Hierarchy().Levels() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t\n",
			l.Name, l.Cache.Capacity(), l.Cache.Associativity(), l.Cache.LineSize())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	mm := proc.MainMemory()
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "Memory\tCapacity\t")
	fmt.Fprintf(tw, "RAM\t%d\t\n", mm.RAMSize())
	fmt.Fprintf(tw, "Virtual\t%d\t\n", mm.VMSize())
	fmt.Fprintf(tw, "Total\t%d\t\n", mm.TotalSize())
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "Level\tCode\tCount\t")
	for _, level := range memory.Levels {
		fmt.Fprintf(tw, "%s\t%d\t%d\t\n", level, int(level), r.counts[level])
	}

	return tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
}
