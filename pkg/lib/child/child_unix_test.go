//go:build unix

package child

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

func shell(t *testing.T, script string, inits ...launch.Initializer) *launch.Request {
	t.Helper()
	req, err := launch.NewBuilder("/bin/sh", inits...).Args("-c", script).Build()
	require.NoError(t, err)
	return req
}

func start(t *testing.T, req *launch.Request) *Child {
	t.Helper()
	c, err := Launch(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// sleeper execs sleep in place of the shell, so the launched pid is the
// process that has to die.
func sleeper(t *testing.T, seconds string, inits ...launch.Initializer) *launch.Request {
	t.Helper()
	return shell(t, "exec sleep "+seconds, inits...)
}

func alive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// gone reports whether pid has been killed and reaped by whoever owns it.
func gone(t *testing.T, pid int) bool {
	t.Helper()
	return assert.Eventually(t, func() bool { return !alive(pid) }, 5*time.Second, 10*time.Millisecond)
}

func TestLaunch_ExitCode(t *testing.T) {
	c := start(t, shell(t, "exit 42"))
	assert.True(t, c.Joinable())
	assert.Equal(t, lib.StateRunning, c.State())
	assert.Equal(t, -1, c.ExitCode())

	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, lib.StateExited, c.State())
	assert.False(t, c.Joinable())
	assert.Equal(t, 42, c.ExitCode())
	assert.Equal(t, 42, unix.WaitStatus(c.NativeExitStatus()).ExitStatus())
}

func TestWait_TwiceIssuesSingleOSWait(t *testing.T) {
	calls := 0
	orig := wait4
	wait4 = func(pid int, ws *unix.WaitStatus, options int, ru *unix.Rusage) (int, error) {
		calls++
		return orig(pid, ws, options, ru)
	}
	t.Cleanup(func() { wait4 = orig })

	c := start(t, shell(t, "exit 3"))
	require.NoError(t, c.Wait(context.Background()))
	require.Equal(t, 1, calls)

	require.NoError(t, c.Wait(context.Background()))
	exited, err := c.WaitFor(time.Second)
	require.NoError(t, err)
	assert.True(t, exited)
	running, err := c.Running()
	require.NoError(t, err)
	assert.False(t, running)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, c.ExitCode())
}

func TestLaunch_MissingExecutable(t *testing.T) {
	var hookErr error
	succeeded := false
	for _, path := range []string{"/nonexistent/childproc-test-binary", "childproc-test-binary-not-in-path"} {
		req, err := launch.NewBuilder(path).
			OnError(func(err error) { hookErr = err }).
			OnSuccess(func(int) { succeeded = true }).
			Build()
		require.NoError(t, err)

		c, err := Launch(req)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, lib.ErrLaunch)
		assert.ErrorIs(t, err, fs.ErrNotExist)

		var launchErr *lib.LaunchError
		require.True(t, errors.As(err, &launchErr))
		assert.False(t, launchErr.Started)
		assert.Equal(t, path, launchErr.Path)
		assert.Equal(t, err, hookErr)
	}
	assert.False(t, succeeded)
}

func TestWaitFor_TimeoutLeavesChildRunning(t *testing.T) {
	c := start(t, sleeper(t, "60"))

	exited, err := c.WaitFor(50 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, exited)
	assert.Equal(t, lib.StateRunning, c.State())
	assert.True(t, alive(c.Pid()))

	exited, err = c.WaitUntil(time.Now().Add(20 * time.Millisecond))
	require.NoError(t, err)
	assert.False(t, exited)
	assert.True(t, c.Joinable())
}

func TestWait_ContextCancelKeepsState(t *testing.T) {
	c := start(t, sleeper(t, "60"))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := c.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, lib.StateRunning, c.State())
	assert.True(t, alive(c.Pid()))
}

func TestTerminate_ThenWait(t *testing.T) {
	c := start(t, sleeper(t, "60"))

	require.NoError(t, c.Terminate())
	assert.Equal(t, lib.StateTerminated, c.State())
	assert.False(t, c.Joinable())
	assert.Equal(t, -1, c.ExitCode())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, int(syscall.SIGKILL), c.ExitCode())
	assert.True(t, unix.WaitStatus(c.NativeExitStatus()).Signaled())

	// Already exited: nothing is signalled.
	require.NoError(t, c.Terminate())
}

func TestClose_KillsOwnedChild(t *testing.T) {
	c, err := Launch(sleeper(t, "60"))
	require.NoError(t, err)
	pid := c.Pid()

	require.NoError(t, c.Close())
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, int(syscall.SIGKILL), c.ExitCode())
	assert.False(t, alive(pid))

	require.NoError(t, c.Close())
}

func TestClose_KillsGroupedGrandchild(t *testing.T) {
	dir := t.TempDir()
	started := filepath.Join(dir, "started")
	marker := filepath.Join(dir, "escaped")
	c, err := Launch(shell(t,
		"(touch \""+started+"\"; sleep 0.5; echo escaped > \""+marker+"\") & wait",
		launch.WithGroup()))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := os.Stat(started)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	assert.Equal(t, lib.StateExited, c.State())

	time.Sleep(time.Second)
	_, err = os.Stat(marker)
	assert.ErrorIs(t, err, fs.ErrNotExist, "grandchild outlived Close")
}

func TestWaitFor_HugeDurationStillWaits(t *testing.T) {
	c := start(t, sleeper(t, "0.3"))

	begin := time.Now()
	exited, err := c.WaitFor(time.Duration(math.MaxInt64))
	require.NoError(t, err)
	assert.True(t, exited)
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, 0, c.ExitCode())
	assert.GreaterOrEqual(t, time.Since(begin), 200*time.Millisecond)

	c2 := start(t, sleeper(t, "0.3"))
	exited, err = c2.WaitUntil(time.Unix(1<<62, 0))
	require.NoError(t, err)
	assert.True(t, exited)
}

func TestDetach_TerminatedChildIsReaped(t *testing.T) {
	c := start(t, sleeper(t, "60"))
	pid := c.Pid()

	require.NoError(t, c.Terminate())
	require.NoError(t, c.Detach())
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, int(syscall.SIGKILL), c.ExitCode())

	// No zombie is left behind: the pid is no longer ours to wait for.
	_, err := unix.Wait4(pid, nil, unix.WNOHANG, nil)
	assert.ErrorIs(t, err, unix.ECHILD)
}

func TestDetach_DroppedHandleDoesNotKill(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")
	c, err := Launch(shell(t, "sleep 0.5; echo alive > \""+marker+"\""))
	require.NoError(t, err)

	require.NoError(t, c.Detach())
	assert.Equal(t, lib.StateDetached, c.State())
	assert.False(t, c.Joinable())
	assert.ErrorIs(t, c.Wait(context.Background()), lib.ErrNotJoinable)
	assert.ErrorIs(t, c.Terminate(), lib.ErrNotJoinable)
	require.NoError(t, c.Close())

	c = nil
	runtime.GC()
	runtime.GC()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && strings.TrimSpace(string(data)) == "alive"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestFinalize_DroppedRunningChildIsKilled(t *testing.T) {
	c, err := Launch(sleeper(t, "60"))
	require.NoError(t, err)
	pid := c.Pid()
	c = nil

	// The pid only disappears once the cleanup has killed and reaped it.
	require.Eventually(t, func() bool {
		runtime.GC()
		return !alive(pid)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRunning_Polls(t *testing.T) {
	c := start(t, shell(t, "sleep 0.2"))

	running, err := c.Running()
	require.NoError(t, err)
	assert.True(t, running)

	require.Eventually(t, func() bool {
		running, err := c.Running()
		return err == nil && !running
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, 0, c.ExitCode())
}

func TestLaunch_Redirections(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	in := filepath.Join(dir, "in")
	require.NoError(t, os.WriteFile(in, []byte("from stdin\n"), 0o644))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	req, err := launch.NewBuilder("/bin/sh").
		Args("-c", "cat; echo to-stderr 1>&2").
		Stdin(launch.File(in)).
		Stdout(launch.File(out)).
		Stderr(launch.Pipe(w)).
		Build()
	require.NoError(t, err)

	c := start(t, req)
	require.NoError(t, w.Close())
	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 0, c.ExitCode())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", string(data))

	stderr, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "to-stderr\n", string(stderr))
}

func TestLaunch_DiscardAndEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	req, err := launch.NewBuilder("sh").
		Args("-c", "echo \"$GREETING|$(pwd -P)|${HOME-unset}\"; echo noise 1>&2").
		Env(map[string]string{"PATH": os.Getenv("PATH")}).
		SetEnv("GREETING", "hi there").
		Dir(dir).
		Stdout(launch.Pipe(w)).
		Stderr(launch.Discard()).
		Build()
	require.NoError(t, err)

	c := start(t, req)
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, "hi there|"+resolved+"|unset\n", string(out))
}

func TestTerminate_Group(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "grandchild")
	req, err := launch.NewBuilder("/bin/sh").
		Args("-c", "(sleep 0.5; echo escaped > \""+marker+"\") & wait").
		Group().
		Build()
	require.NoError(t, err)

	c := start(t, req)
	assert.True(t, c.InGroup())
	pgid, err := unix.Getpgid(c.Pid())
	require.NoError(t, err)
	assert.Equal(t, c.Pid(), pgid)

	require.NoError(t, c.Terminate())
	require.NoError(t, c.Wait(context.Background()))

	time.Sleep(time.Second)
	_, err = os.Stat(marker)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "grandchild survived group termination")
}

func TestSystemAndSpawn(t *testing.T) {
	code, err := System(context.Background(), shell(t, "exit 7"))
	require.NoError(t, err)
	assert.Equal(t, 7, code)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	pidCh := make(chan int, 1)
	_, err = System(ctx, sleeper(t, "60", launch.OnSuccess(func(pid int) { pidCh <- pid })))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	gone(t, <-pidCh)

	marker := filepath.Join(t.TempDir(), "spawned")
	pid, err := Spawn(shell(t, "echo ok > \""+marker+"\""))
	require.NoError(t, err)
	assert.Positive(t, pid)
	require.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	_, _, _ = reap(pid, true)
}

func TestInvalidHandle(t *testing.T) {
	var c *Child
	assert.False(t, c.Valid())
	assert.Equal(t, 0, c.Pid())
	assert.Equal(t, lib.StateUnspecified, c.State())
	assert.ErrorIs(t, c.Wait(context.Background()), lib.ErrNotJoinable)
	assert.NoError(t, c.Close())
}

func TestAttach_SpawnedChild(t *testing.T) {
	pid, err := Spawn(shell(t, "sleep 0.2; exit 5"))
	require.NoError(t, err)

	c, err := Attach(pid)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, pid, c.Pid())
	assert.False(t, c.InGroup())

	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, 5, c.ExitCode())
}

func TestAttach_ExitedChildIsCollected(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "done")
	pid, err := Spawn(shell(t, "touch \""+marker+"\"; exit 3"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	c, err := Attach(pid)
	require.NoError(t, err)
	exited, err := c.WaitFor(5 * time.Second)
	require.NoError(t, err)
	assert.True(t, exited)
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, 3, c.ExitCode())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, unix.Kill(pid, 0), unix.ESRCH)
}

func TestAttach_NonChildCanBeTerminatedNotWaited(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	parent := start(t, shell(t, "sleep 30 & echo $! > \""+pidFile+"\"; wait"))

	var pid int
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(pidFile)
		if err != nil || !strings.HasSuffix(string(data), "\n") {
			return false
		}
		pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	c, err := Attach(pid)
	require.NoError(t, err)
	assert.Equal(t, lib.StateRunning, c.State())

	err = c.Wait(context.Background())
	assert.ErrorIs(t, err, lib.ErrWait)
	assert.ErrorIs(t, err, unix.ECHILD)

	require.NoError(t, c.Close())
	assert.Equal(t, lib.StateTerminated, c.State())
	gone(t, pid)

	ok, err := parent.WaitFor(5 * time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttach_MissingProcess(t *testing.T) {
	for _, pid := range []int{0, -1} {
		_, err := Attach(pid)
		assert.ErrorIs(t, err, lib.ErrNotFound)
	}

	c := start(t, shell(t, "exit 0"))
	require.NoError(t, c.Wait(context.Background()))
	_, err := Attach(c.Pid())
	assert.ErrorIs(t, err, lib.ErrNotFound)
}
