// Package clipboard wraps the system clipboard behind a small port.
package clipboard

import "github.com/atotto/clipboard"

// Writer writes text to a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// System writes to the platform clipboard.
type System struct{}

func (System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Unsupported reports whether the platform has no usable clipboard backend.
func Unsupported() bool {
	return clipboard.Unsupported
}

// Func adapts a function to Writer.
type Func func(text string) error

func (f Func) WriteAll(text string) error {
	return f(text)
}
