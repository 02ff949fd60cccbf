// Package progress provides progress indication components.
//
// This package contains components for showing progress during
// long-running operations, such as spinners and progress bars.
// Both draw on stderr so stdout stays clean for piping.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
)

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

// indicator runs a bubbletea program and feeds it updates until stopped.
type indicator struct {
	program *tea.Program
	updates chan tea.Msg
	done    chan struct{}
	out     io.Writer

	mu      sync.Mutex
	running bool
}

func newIndicator() indicator {
	return indicator{
		updates: make(chan tea.Msg, 10),
		done:    make(chan struct{}),
		out:     os.Stderr,
	}
}

// start launches the program built by model. It is a no-op when running.
func (in *indicator) start(model func(updates <-chan tea.Msg) tea.Model) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.running {
		return
	}

	in.program = tea.NewProgram(model(in.updates), tea.WithoutSignalHandler(), tea.WithOutput(in.out))
	in.running = true

	go func() {
		_, _ = in.program.Run()
		close(in.done)
	}()
}

// send delivers msg without blocking, dropping it when the buffer is full.
// It reports false when the indicator is not running.
func (in *indicator) send(msg tea.Msg) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.running {
		return false
	}
	select {
	case in.updates <- msg:
	default:
	}
	return true
}

// stop quits the program and clears the line.
func (in *indicator) stop() {
	in.mu.Lock()
	if !in.running {
		in.mu.Unlock()
		return
	}
	in.running = false
	// Closed under the lock so send never writes to a closed channel.
	close(in.updates)
	in.mu.Unlock()

	in.program.Quit()

	select {
	case <-in.done:
	case <-time.After(stopTimeout):
	}

	fmt.Fprint(in.out, "\r\033[K")
}

// waitFor returns a command that receives the next update, quitting when
// the channel is closed.
func waitFor(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return msg
	}
}
