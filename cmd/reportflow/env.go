package main

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	reportflow "github.com/alnah/go-reportflow"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment lookup and renderer pool creation.
type Environment struct {
	Now        func() time.Time
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Environ    func() []string
	IsTerminal func(io.Writer) bool
	NewPool    func(size int, opts ...reportflow.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Getenv:     os.Getenv,
		Environ:    os.Environ,
		IsTerminal: isTerminal,
		NewPool:    newRendererPool,
	}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
