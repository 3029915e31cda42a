// Package toolstest provides a scripted tools.Runner for tests.
package toolstest

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/gwlsn/webpanim/internal/tools"
)

// Call records one invocation seen by Fake.
type Call struct {
	Tool string // Base name of the tool path
	Args []string
}

// Response is what a scripted tool returns.
type Response struct {
	Output   string
	ExitCode int // Non-zero makes the call fail with a *tools.ToolError
}

// Fake is a tools.Runner that answers from a script instead of spawning
// processes. It is safe for concurrent use.
type Fake struct {
	// Script decides the response for a call. A nil Script answers every
	// call with empty output and exit code 0.
	Script func(call Call) Response

	mu    sync.Mutex
	calls []Call
}

// CombinedOutput implements tools.Runner.
func (f *Fake) CombinedOutput(_ context.Context, path string, args ...string) ([]byte, error) {
	call := Call{Tool: filepath.Base(path), Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	var resp Response
	if f.Script != nil {
		resp = f.Script(call)
	}
	if resp.ExitCode != 0 {
		return []byte(resp.Output), &tools.ToolError{
			Tool:     call.Tool,
			ExitCode: resp.ExitCode,
			Output:   resp.Output,
		}
	}
	return []byte(resp.Output), nil
}

// Calls returns every call made so far, in invocation order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the calls made to the named tool.
func (f *Fake) CallsTo(tool string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}
