// Package foreign implements require(path)'s native-library bridge
// (component C6): loading a compiled Go plugin and wrapping its exported
// functions into callable Sentra values, following the original's
// require_dynamic_lib.rs (build-if-directory, then plugin.Open) translated
// from a cdylib/libloading load into Go's own plugin package.
package foreign

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"strings"

	"sentra/internal/value"
)

// Callback lets foreign code re-enter a Sentra function value passed to it
// as an argument.
type Callback = value.Callback

// Symbol is the signature every exported plugin function and every bundled
// library function must satisfy.
type Symbol = func(args []value.Value, callback Callback) (value.Value, error)

// Load resolves require(path): the two libraries bundled into the binary
// (sql, ws) first, then a literal .so file, then — when path names a
// directory — a `go build -buildmode=plugin` of that directory before
// opening the result.
func Load(path string, cb Callback) (*value.NativeLibrary, error) {
	switch path {
	case "sql":
		return sqlLibrary(), nil
	case "ws":
		return wsLibrary(cb), nil
	}
	soPath, err := resolveSharedObject(path)
	if err != nil {
		return nil, err
	}
	return loadPlugin(soPath)
}

func resolveSharedObject(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ".so" {
			return "", fmt.Errorf("%s is not a shared object", path)
		}
		return path, nil
	}
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, filepath.Base(dir)+".so")
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", out, ".")
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("building plugin in %s: %w", dir, err)
	}
	return out, nil
}

// Library is the symbol every plugin built for require() must export: a
// name -> Symbol map, Go's idiomatic stand-in for the original's "every
// exported cdylib function is a library member" — plugin.Plugin has no
// symbol-table enumeration API, so the manifest has to be named rather than
// discovered.
type Library = map[string]Symbol

func loadPlugin(soPath string) (*value.NativeLibrary, error) {
	p, err := plugin.Open(soPath)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup("Library")
	if err != nil {
		return nil, fmt.Errorf("%s does not export a Library symbol: %w", soPath, err)
	}
	manifest, ok := sym.(*Library)
	if !ok {
		return nil, fmt.Errorf("%s's Library symbol has the wrong type", soPath)
	}
	lib := &value.NativeLibrary{Name: strings.TrimSuffix(filepath.Base(soPath), ".so"), Fields: map[string]value.Value{}}
	for name, fn := range *manifest {
		lib.Fields[name] = &value.NativeFunction{Name: name, Fn: fn}
	}
	return lib, nil
}
