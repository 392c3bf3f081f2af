package trace

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/core"
	"github.com/sarchlab/cachesim/memory"
)

// ErrConfigConflict reports a trace header combined with an external system
// configuration, or neither of them.
var ErrConfigConflict = errors.New("system must come from either the trace header or a config")

// RuntimeError is a failure that stops a trace run.
type RuntimeError struct {
	Line int
	Text string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// AssertionFailure records an assert command whose read disagreed with the
// expected level or value.
type AssertionFailure struct {
	Line      int
	Text      string
	WantLevel memory.Level
	GotLevel  memory.Level
	WantValue memory.Word
	GotValue  memory.Word
}

func (f AssertionFailure) String() string {
	return fmt.Sprintf("line %d: %q: want level %d value %d, got level %d value %d",
		f.Line, f.Text, f.WantLevel, f.WantValue.Int32(), f.GotLevel, f.GotValue.Int32())
}

// Result is the outcome of a completed run.
type Result struct {
	Processor *core.Processor
	Executed  int
	Failures  []AssertionFailure
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Interpreter builds the system a program describes and runs its accesses.
type Interpreter struct {
	logger *log.Logger
	config *core.SystemConfig
	hooks  []sim.Hook
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger that receives construction messages.
func WithLogger(logger *log.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithSystemConfig supplies the system for programs without a header.
func WithSystemConfig(config *core.SystemConfig) Option {
	return func(i *Interpreter) {
		i.config = config
	}
}

// WithHook registers a hook on every core of the built processor.
func WithHook(hook sim.Hook) Option {
	return func(i *Interpreter) {
		i.hooks = append(i.hooks, hook)
	}
}

// NewInterpreter creates an interpreter. By default it logs nothing.
func NewInterpreter(opts ...Option) *Interpreter {
	i := &Interpreter{
		logger: log.New(io.Discard, "", 0),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Run builds the processor and executes the program body. Address errors and
// assertion failures are recorded and execution continues; any other failure
// stops the run.
func (i *Interpreter) Run(p *Program) (*Result, error) {
	proc, err := i.Build(p)
	if err != nil {
		return nil, err
	}

	for _, hook := range i.hooks {
		proc.AcceptHook(hook)
	}

	result := &Result{Processor: proc}
	for _, cmd := range p.Body {
		if err := i.execute(proc, cmd, result); err != nil {
			return result, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
		}

		result.Executed++
	}

	return result, nil
}

// Build creates the processor from the program header or from the
// interpreter's system configuration.
func (i *Interpreter) Build(p *Program) (*core.Processor, error) {
	switch {
	case p.HasHeader() && i.config != nil:
		return nil, fmt.Errorf("%w: trace %s has a header", ErrConfigConflict, p.Name)
	case p.HasHeader():
		return i.buildFromHeader(p.Header)
	case i.config != nil:
		return i.buildFromConfig(i.config)
	default:
		return nil, fmt.Errorf("%w: trace %s has no header", ErrConfigConflict, p.Name)
	}
}

func (i *Interpreter) buildFromConfig(config *core.SystemConfig) (*core.Processor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	proc, err := core.MakeBuilder().WithConfig(*config).Build()
	if err != nil {
		return nil, err
	}

	for _, l := range proc.Hierarchy().Levels() {
		i.logCache(l.Name, l.Cache)
	}
	i.logMainMemory(proc.MainMemory())
	i.logger.Printf("created memory hierarchy")
	i.logger.Printf("created processor with %d cores", proc.NumCores())

	return proc, nil
}

func (i *Interpreter) buildFromHeader(header []Command) (*core.Processor, error) {
	names := []string{"L1d", "L1i", "L2", "L3"}
	levels := make([]*cache.SetAssociative, len(names))

	for n := range levels {
		cmd := header[n]

		c, err := cache.NewSetAssociative(int(cmd.Args[0]), int(cmd.Args[1]), int(cmd.Args[2]))
		if err != nil {
			return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
		}

		levels[n] = c
		i.logCache(names[n], c)
	}

	cmd := header[OpCreateMainMemory]
	if cmd.Args[0] < 0 || cmd.Args[1] < 0 {
		return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text,
			Err: fmt.Errorf("%w: memory sizes must not be negative", memory.ErrConfiguration)}
	}

	mm, err := memory.NewMainMemory(uint64(cmd.Args[0]), uint64(cmd.Args[1]))
	if err != nil {
		return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
	}
	i.logMainMemory(mm)

	cmd = header[OpCreateMemory]
	h, err := cache.NewHierarchy(levels[0], levels[1], levels[2], levels[3])
	if err != nil {
		return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
	}

	port, err := core.NewMemory(h, mm)
	if err != nil {
		return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
	}
	i.logger.Printf("created memory hierarchy")

	cmd = header[OpCreateProcessor]
	proc, err := core.NewProcessor(port, int(cmd.Args[0]))
	if err != nil {
		return nil, &RuntimeError{Line: cmd.Line, Text: cmd.Text, Err: err}
	}
	i.logger.Printf("created processor with %d cores", proc.NumCores())

	return proc, nil
}

func (i *Interpreter) logCache(name string, c *cache.SetAssociative) {
	i.logger.Printf("created %s cache (lookup %d, offset %d, tag %d)",
		name, c.LookupWidth(), c.OffsetWidth(), c.TagWidth())
}

func (i *Interpreter) logMainMemory(mm *memory.MainMemory) {
	if mm.TotalSize() == 0 {
		i.logger.Printf("created main memory (capacity 0 bytes, no addresses)")
		return
	}

	i.logger.Printf("created main memory (capacity %d bytes, addresses [0, %d])",
		mm.TotalSize(), mm.TotalSize()-1)
}

func (i *Interpreter) execute(proc *core.Processor, cmd Command, result *Result) error {
	port, err := proc.Core(int(cmd.Args[0]))
	if err != nil {
		return err
	}

	address := uint64(cmd.Args[1])

	switch cmd.Op {
	case OpReadData:
		_, _, err = port.ReadData(address)
	case OpReadInstruction:
		_, _, err = port.ReadInstruction(address)
	case OpWriteData, OpWriteInstruction:
		return i.write(port, cmd)
	case OpAssertData, OpAssertInstruction:
		return i.assert(port, cmd, result)
	default:
		return fmt.Errorf("%s is not an access command", cmd.Op)
	}

	return ignoreAddressError(err)
}

func (i *Interpreter) write(port *core.Memory, cmd Command) error {
	w, err := memory.NewWord(cmd.Args[2])
	if err != nil {
		return err
	}

	address := uint64(cmd.Args[1])
	if cmd.Op == OpWriteInstruction {
		_, err = port.WriteInstruction(address, w)
	} else {
		_, err = port.WriteData(address, w)
	}

	return ignoreAddressError(err)
}

func (i *Interpreter) assert(port *core.Memory, cmd Command, result *Result) error {
	want, err := memory.NewWord(cmd.Args[3])
	if err != nil {
		return err
	}

	address := uint64(cmd.Args[1])

	var (
		got   memory.Word
		level memory.Level
	)
	if cmd.Op == OpAssertInstruction {
		got, level, err = port.ReadInstruction(address)
	} else {
		got, level, err = port.ReadData(address)
	}

	if err := ignoreAddressError(err); err != nil {
		return err
	}

	wantLevel := memory.Level(cmd.Args[2])
	if level != wantLevel || got != want {
		result.Failures = append(result.Failures, AssertionFailure{
			Line:      cmd.Line,
			Text:      cmd.Text,
			WantLevel: wantLevel,
			GotLevel:  level,
			WantValue: want,
			GotValue:  got,
		})
	}

	return nil
}

// ignoreAddressError drops address errors, which are counted by the report
// instead of stopping the run.
func ignoreAddressError(err error) error {
	if errors.Is(err, memory.ErrAddressOutOfRange) {
		return nil
	}

	return err
}
