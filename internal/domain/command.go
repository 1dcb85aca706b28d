package domain

import (
	"fmt"
	"strings"
)

// CommandKind distinguishes process launches from in-process callbacks
type CommandKind int

const (
	CommandProcess CommandKind = iota
	CommandCallback
)

func (k CommandKind) String() string {
	switch k {
	case CommandProcess:
		return "process"
	case CommandCallback:
		return "callback"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Command is a deferred action bound to one or more chords.
// Process commands run with stdin, stdout and stderr attached to the null device.
type Command struct {
	Kind CommandKind
	Name string
	Path string
	Args []string
	Func func() error
}

// CommandSpec is anything that can be turned into a Command at bind time
type CommandSpec interface {
	Command() (Command, error)
}

// Command implements CommandSpec so ready-made descriptors can be bound directly
func (c Command) Command() (Command, error) {
	switch c.Kind {
	case CommandProcess:
		if c.Path == "" {
			return Command{}, ErrEmptyCommand
		}
	case CommandCallback:
		if c.Func == nil {
			return Command{}, fmt.Errorf("%w: callback %q has no function", ErrEmptyCommand, c.Name)
		}
	}
	if c.Name == "" {
		c.Name = c.String()
	}
	return c, nil
}

func (c Command) String() string {
	if c.Kind == CommandCallback {
		return "func:" + c.Name
	}
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Exec builds a process command from a program and its arguments
func Exec(path string, args ...string) Command {
	return Command{Kind: CommandProcess, Path: path, Args: args}
}

// CommandLine is a program and arguments separated by whitespace, without shell parsing
type CommandLine string

func (l CommandLine) Command() (Command, error) {
	fields := strings.Fields(string(l))
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	return Command{
		Kind: CommandProcess,
		Name: string(l),
		Path: fields[0],
		Args: fields[1:],
	}, nil
}

// ShellScript runs through "sh -c" so pipes and expansions work
type ShellScript string

func (s ShellScript) Command() (Command, error) {
	if strings.TrimSpace(string(s)) == "" {
		return Command{}, ErrEmptyCommand
	}
	return Command{
		Kind: CommandProcess,
		Name: string(s),
		Path: "sh",
		Args: []string{"-c", string(s)},
	}, nil
}

// Callback is an in-process action
type Callback struct {
	Name string
	Func func() error
}

func (cb Callback) Command() (Command, error) {
	return Command{Kind: CommandCallback, Name: cb.Name, Func: cb.Func}.Command()
}
