package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/core"
)

// Compilation failure causes.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArity          = errors.New("wrong number of arguments")
	ErrBadArgument    = errors.New("argument is not an integer")
	ErrHeaderOrder    = errors.New("construction commands out of order")
)

// CompilationError locates a compilation failure in the trace source.
type CompilationError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Detail renders the error with the offending line.
func (e *CompilationError) Detail() string {
	return fmt.Sprintf("compilation error:\n  file %q, line %d\n    %s\n    ^\n%v",
		e.File, e.Line, e.Text, e.Err)
}

// Program is a compiled trace. Header holds the seven construction commands,
// or nothing if the trace relies on an external system configuration.
type Program struct {
	Name   string
	Header []Command
	Body   []Command
}

// CompileFile compiles the trace at path.
func CompileFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	return Compile(f, path)
}

// Compile reads a trace from r. Name is used in error messages.
func Compile(r io.Reader, name string) (*Program, error) {
	var commands []Command

	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		text := scanner.Text()

		fields := strings.Fields(text)
		if len(fields) == 0 || strings.HasPrefix(text, "#") {
			continue
		}

		cmd, err := parseCommand(fields)
		if err != nil {
			return nil, &CompilationError{File: name, Line: lineNum, Text: text, Err: err}
		}

		cmd.Line = lineNum
		cmd.Text = text
		commands = append(commands, cmd)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace %s: %w", name, err)
	}

	return split(commands, name)
}

func parseCommand(fields []string) (Command, error) {
	op, ok := lookupOpcode(fields[0])
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}

	args := fields[1:]
	if len(args) != op.Arity() {
		return Command{}, fmt.Errorf("%w: %s expects %d, given %d",
			ErrArity, op, op.Arity(), len(args))
	}

	cmd := Command{Op: op, Args: make([]int64, len(args))}
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrBadArgument, arg)
		}

		cmd.Args[i] = v
	}

	return cmd, nil
}

// split separates the header from the body. A trace either starts with the
// complete header or has no construction command at all.
func split(commands []Command, name string) (*Program, error) {
	p := &Program{Name: name}

	if len(commands) > 0 && commands[0].Op.IsConstruction() {
		for i := 0; i < headerLength; i++ {
			if i >= len(commands) {
				last := commands[len(commands)-1]
				return nil, &CompilationError{
					File: name, Line: last.Line, Text: last.Text,
					Err: fmt.Errorf("%w: missing %s", ErrHeaderOrder, Opcode(i)),
				}
			}

			if commands[i].Op != Opcode(i) {
				return nil, &CompilationError{
					File: name, Line: commands[i].Line, Text: commands[i].Text,
					Err: fmt.Errorf("%w: expected %s", ErrHeaderOrder, Opcode(i)),
				}
			}
		}

		p.Header = commands[:headerLength]
		commands = commands[headerLength:]
	}

	for _, cmd := range commands {
		if cmd.Op.IsConstruction() {
			return nil, &CompilationError{
				File: name, Line: cmd.Line, Text: cmd.Text,
				Err: fmt.Errorf("%w: %s after the header", ErrHeaderOrder, cmd.Op),
			}
		}
	}

	p.Body = commands

	return p, nil
}

// HasHeader reports whether the program builds its own system.
func (p *Program) HasHeader() bool {
	return len(p.Header) == headerLength
}

// SystemConfig converts the header into a system configuration.
func (p *Program) SystemConfig() (*core.SystemConfig, error) {
	if !p.HasHeader() {
		return nil, fmt.Errorf("trace %s has no construction header", p.Name)
	}

	cacheConfig := func(cmd Command) cache.Config {
		return cache.Config{
			Size:          int(cmd.Args[0]),
			Associativity: int(cmd.Args[1]),
			BlockSize:     int(cmd.Args[2]),
		}
	}

	mp := p.Header[OpCreateMainMemory]
	if mp.Args[0] < 0 || mp.Args[1] < 0 {
		return nil, fmt.Errorf("line %d: memory sizes must not be negative", mp.Line)
	}

	return &core.SystemConfig{
		L1D:     cacheConfig(p.Header[OpCreateL1D]),
		L1I:     cacheConfig(p.Header[OpCreateL1I]),
		L2:      cacheConfig(p.Header[OpCreateL2]),
		L3:      cacheConfig(p.Header[OpCreateL3]),
		RAMSize: uint64(mp.Args[0]),
		VMSize:  uint64(mp.Args[1]),
		Cores:   int(p.Header[OpCreateProcessor].Args[0]),
	}, nil
}
