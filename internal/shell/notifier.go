package shell

import (
	"fmt"
	"io"
	"sync"
)

// Notifier prints service messages inline with command output.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Info(msg string) {
	n.print("✓", msg)
}

func (n *Notifier) Error(msg string) {
	n.print("✗", msg)
}

func (n *Notifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, mark, msg)
}
