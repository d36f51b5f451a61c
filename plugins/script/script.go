// Package script loads user scripts into the client's javascript vm.
//
// Scripts are plain .js files in the configured scripts directory. They
// run each time a runtime is created, so a vm reload picks up changes
// on disk.
package script // import "code.dopame.me/veonik/squawk/plugins/script"

import (
	"os"
	"path/filepath"
	"strings"

	"code.dopame.me/veonik/squawk/vm"
)

type Script struct {
	Name string
	Body string
}

type Manager struct {
	rootDir string
}

func NewManager(rootDir string) *Manager {
	return &Manager{rootDir: rootDir}
}

// RunAll loads every script and runs each on the given vm, stopping at
// the first error.
func (m *Manager) RunAll(v *vm.VM) error {
	ss, err := m.LoadAll()
	if err != nil {
		return err
	}
	for _, s := range ss {
		if _, err = v.RunScript(s.Name, s.Body).Await(); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll reads every .js file in the scripts directory, in lexical
// order. Subdirectories and other files are skipped.
func (m *Manager) LoadAll() ([]Script, error) {
	fs, err := os.ReadDir(m.rootDir)
	if err != nil {
		return nil, err
	}
	var res []Script
	for _, f := range fs {
		if f.IsDir() {
			continue
		}
		n := f.Name()
		if !strings.HasSuffix(n, ".js") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(m.rootDir, n))
		if err != nil {
			return nil, err
		}
		res = append(res, Script{Name: n, Body: string(b)})
	}
	return res, nil
}
