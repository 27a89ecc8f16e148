// Package driver walks the filesystem on behalf of the jackc CLI: it opens
// source files, runs each through the compiler package, and writes the
// resulting VM code to a sibling file. None of this is part of the
// compilation pipeline itself — compiler.JackCompiler never touches a file
// handle.
package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/libklein/jackc/internal/compiler"
)

const (
	sourceExt = ".jack"
	outputExt = ".vm"
)

func siblingOutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + outputExt
}

// CompileFile tokenizes, parses, and emits VM code for a single .jack file,
// writing the result to a sibling .vm file. On any compile error the output
// file is not created or touched.
func CompileFile(log *zap.Logger, path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", errors.Annotatef(err, "opening %q for reading", path)
	}
	defer in.Close()

	tokenizer, err := compiler.NewTokenizer(in)
	if err != nil {
		return "", errors.Annotatef(err, "reading %q", path)
	}

	writer, err := compiler.NewJackCompiler(tokenizer).Compile()
	if err != nil {
		return "", errors.Annotatef(err, "compiling %q", path)
	}

	out := siblingOutputPath(path)
	file, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", errors.Annotatef(err, "opening %q for writing", out)
	}
	defer file.Close()

	if err := writer.Flush(file); err != nil {
		return "", errors.Annotatef(err, "writing %q", out)
	}

	log.Info("compiled", zap.String("source", path), zap.String("output", out))
	return out, nil
}

// CompileDirectory compiles every .jack file directly inside dir, in
// lexicographic order, continuing past a per-file failure. It returns one
// error per file that failed.
func CompileDirectory(log *zap.Logger, dir string) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []error{errors.Annotatef(err, "reading directory %q", dir)}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != sourceExt {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var failures []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := CompileFile(log, path); err != nil {
			log.Error("compile failed", zap.String("source", path), zap.Error(err))
			failures = append(failures, err)
			continue
		}
	}
	return failures
}

// CompilePath compiles path, which must be either a .jack file or a
// directory containing .jack files.
func CompilePath(log *zap.Logger, path string) []error {
	info, err := os.Stat(path)
	if err != nil {
		return []error{errors.Annotatef(err, "stat %q", path)}
	}

	if info.IsDir() {
		return CompileDirectory(log, path)
	}

	if filepath.Ext(path) != sourceExt {
		return []error{errors.Errorf("%q is not a %s file", path, sourceExt)}
	}
	if _, err := CompileFile(log, path); err != nil {
		return []error{err}
	}
	return nil
}
