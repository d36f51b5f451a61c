// Package vm is an embeddable javascript interpreter for squawk.
//
// This package embeds goja (https://github.com/dop251/goja) as the
// javascript parser and executor, improving on it with a concurrency-safe
// API. All interaction with the underlying goja.Runtime happens on a
// single worker goroutine; callers submit jobs and receive Results.
package vm // import "code.dopame.me/veonik/squawk/vm"

import (
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

// A VM manages the state and environment of a javascript interpreter.
type VM struct {
	scheduler *scheduler

	// done is initialized when the VM is started and closed when it is
	// stopped.
	done chan struct{}
	mu   sync.Mutex
}

func New() *VM {
	return &VM{scheduler: newScheduler()}
}

// PrependRuntimeInit adds a runtime init handler at the front of the list.
func (vm *VM) PrependRuntimeInit(h func(*goja.Runtime)) {
	vm.scheduler.prependRuntimeInit(h)
}

// OnRuntimeInit adds a handler that runs against each newly created
// runtime, before any other code executes on it.
func (vm *VM) OnRuntimeInit(h func(*goja.Runtime)) {
	vm.scheduler.onRuntimeInit(h)
}

func (vm *VM) Compile(name, in string) (*goja.Program, error) {
	return goja.Compile(name, in, true)
}

func (vm *VM) Start() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.done != nil {
		select {
		case <-vm.done:
			// closed; the VM was stopped and may start again
		default:
			return nil
		}
	}
	vm.done = make(chan struct{})
	return vm.scheduler.start()
}

func (vm *VM) Shutdown() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	done := vm.done
	if done == nil {
		return errors.New("not started")
	}
	var err error
	go func() {
		select {
		case <-done:
			// do nothing, already closed
		default:
			err = vm.scheduler.stop()
			close(done)
		}
	}()
	select {
	case <-done:
		// all done, nothing to do
	case <-time.After(2 * time.Second):
		return errors.New("timed out waiting for vm to shutdown")
	}
	return err
}

func (vm *VM) doneChan() chan struct{} {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.done
}

func (vm *VM) RunString(in string) *Result {
	return vm.RunScript("<eval>", in)
}

func (vm *VM) RunScript(name, in string) *Result {
	res := newResult(vm.doneChan())
	vm.scheduler.run(func(r *goja.Runtime) {
		p, err := vm.Compile(name, in)
		if err != nil {
			res.resolve(nil, err)
		} else {
			res.resolve(r.RunProgram(p))
		}
	})
	return res
}

func (vm *VM) RunProgram(p *goja.Program) *Result {
	res := newResult(vm.doneChan())
	vm.scheduler.run(func(r *goja.Runtime) {
		res.resolve(r.RunProgram(p))
	})
	return res
}

// Do schedules the given function to run on the VM's worker with
// exclusive access to the underlying runtime.
func (vm *VM) Do(fn func(*goja.Runtime)) {
	vm.scheduler.run(fn)
}
