package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompileFile_WritesSiblingVMFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Main.jack")
	require.NoError(t, os.WriteFile(src, []byte("class Main { function void run() { return; } }"), 0644))

	out, err := CompileFile(zap.NewNop(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Main.vm"), out)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "function Main.run 0\npush constant 0\nreturn", string(contents))
}

func TestCompileFile_DoesNotWriteOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Bad.jack")
	require.NoError(t, os.WriteFile(src, []byte("class Bad { function void f() { let x = 1 return; } }"), 0644))

	_, err := CompileFile(zap.NewNop(), src)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "Bad.vm"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompileDirectory_ContinuesPastFailuresInLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Good.jack"), []byte("class Good { function void f() { return; } }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Bad.jack"), []byte("class Bad { function void f() { let = ; } }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("not jack"), 0644))

	failures := CompileDirectory(zap.NewNop(), dir)
	require.Len(t, failures, 1)

	_, err := os.Stat(filepath.Join(dir, "Good.vm"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "skip.vm"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompilePath_RejectsNonJackFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0644))

	failures := CompilePath(zap.NewNop(), src)
	require.Len(t, failures, 1)
}
