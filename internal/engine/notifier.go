package engine

import (
	"fmt"
	"io"
)

// Notifier is the human-readable failure channel.
type Notifier interface {
	Notify(doc string, err error)
}

// WriterNotifier prints "error: <doc>: <detail>" lines to W.
type WriterNotifier struct {
	W io.Writer
}

// Notify writes one line for err.
func (n WriterNotifier) Notify(doc string, err error) {
	fmt.Fprintf(n.W, "error: %s: %v\n", doc, err)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, error) {}
