package vm

import (
	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrExecutionCancelled = errors.New("execution cancelled")

// A Result is the output from executing code on a VM.
type Result struct {
	// Closed when the result is ready. Read from this channel to detect
	// when the result has been populated and is safe to inspect.
	Ready chan struct{}
	// Error associated with the result, if any. Only read from this after
	// the result is ready.
	Error error
	// Value associated with the result if there is no error. Only read
	// from this after the result is ready.
	Value goja.Value

	// vmdone is a copy of the VM's done channel at the time Run* is
	// called. This removes the need to synchronize when reading from the
	// channel since the copy is made while the VM is locked.
	vmdone chan struct{}
	// cancel is closed to signal that the result is no longer needed.
	cancel chan struct{}
}

func newResult(vmdone chan struct{}) *Result {
	r := &Result{Ready: make(chan struct{}), cancel: make(chan struct{}), vmdone: vmdone}
	go func() {
		for {
			select {
			case <-r.Ready:
				// close the cancel channel if needed
				r.Cancel()
				return

			case <-r.cancel:
				// signal to cancel received, resolve with an error
				r.resolve(nil, ErrExecutionCancelled)

			case <-r.vmdone:
				// VM shutdown without resolving, cancel execution
				r.Cancel()
			}
		}
	}()
	return r
}

// resolve populates the result with the given value or error and signals
// ready.
func (r *Result) resolve(v goja.Value, err error) {
	select {
	case <-r.Ready:
		logrus.Debugln("vm: resolve called on already finished Result")

	default:
		r.Error = err
		r.Value = v
		close(r.Ready)
	}
}

// Await blocks until the result is ready and returns the result or error.
func (r *Result) Await() (goja.Value, error) {
	<-r.Ready
	return r.Value, r.Error
}

// Cancel the result to halt execution.
func (r *Result) Cancel() {
	select {
	case <-r.cancel:
		// already cancelled, don't bother

	default:
		close(r.cancel)
	}
}
