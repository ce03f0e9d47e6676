package cmdline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/child"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

func startSleep(t *testing.T, args ...string) *child.Child {
	t.Helper()
	req, err := launch.NewBuilder("sleep").Args(args...).Build()
	require.NoError(t, err)
	c, err := child.Launch(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestArgs_Self(t *testing.T) {
	args, err := Args(os.Getpid())
	require.NoError(t, err)
	require.NotEmpty(t, args)
	assert.Equal(t, os.Args[0], args[0])
	assert.Equal(t, os.Args, args)
}

// startWaitingShell runs a shell that stays alive, with extra positional
// arguments in its argv. Its group is killed on cleanup so the sleep it
// forks does not outlive the test.
func startWaitingShell(t *testing.T, extra ...string) *child.Child {
	t.Helper()
	req, err := launch.NewBuilder("/bin/sh").
		Args(append([]string{"-c", "sleep 30 & wait"}, extra...)...).
		Group().
		Stdout(launch.Discard()).
		Stderr(launch.Discard()).
		Build()
	require.NoError(t, err)
	c, err := child.Launch(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestArgs_Child(t *testing.T) {
	c := startWaitingShell(t, "name", "", "last arg")
	want := []string{"/bin/sh", "-c", "sleep 30 & wait", "name", "", "last arg"}

	args, err := Args(c.Pid())
	require.NoError(t, err)
	assert.Equal(t, want, args)

	args, err = ArgsOf(c)
	require.NoError(t, err)
	assert.Equal(t, want, args)

	args, err = ArgsFromHandle(c.NativeHandle())
	require.NoError(t, err)
	assert.Equal(t, want, args)

	assert.Equal(t, want, MustArgs(c.Pid()))
}

func TestArgs_ReapedChild(t *testing.T) {
	c := startSleep(t, "0")
	pid := c.Pid()
	require.NoError(t, c.Wait(context.Background()))

	_, err := Args(pid)
	require.ErrorIs(t, err, lib.ErrNotFound)
	assert.Panics(t, func() { MustArgs(pid) })
}

func TestArgs_InvalidPid(t *testing.T) {
	_, err := Args(0)
	assert.ErrorIs(t, err, lib.ErrNotFound)
	_, err = Args(-5)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func fakeProc(t *testing.T, pid int, cmdline, stat string) {
	t.Helper()
	orig := procRoot
	procRoot = t.TempDir()
	t.Cleanup(func() { procRoot = orig })

	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0o444))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o444))
}

func TestArgs_Zombie(t *testing.T) {
	fakeProc(t, 77, "", "77 (my (odd) name) Z 1 77 77 0 -1")
	_, err := Args(77)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestArgs_KernelThread(t *testing.T) {
	fakeProc(t, 2, "", "2 (kthreadd) S 0 0 0 0 -1")
	args, err := Args(2)
	require.NoError(t, err)
	assert.Equal(t, []string{}, args)
}

func TestArgs_MissingStatAfterLookup(t *testing.T) {
	fakeProc(t, 9, "", "")
	require.NoError(t, os.Remove(filepath.Join(procRoot, "9", "stat")))
	_, err := Args(9)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestArgsFromHandle_NotPidfd(t *testing.T) {
	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer f.Close()

	_, err = ArgsFromHandle(f.Fd())
	assert.ErrorIs(t, err, lib.ErrParse)
	assert.Panics(t, func() { MustArgsFromHandle(f.Fd()) })
}

func TestArgsFromHandle_Closed(t *testing.T) {
	_, err := ArgsFromHandle(1 << 20)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}
