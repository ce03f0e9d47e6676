package child

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

func cmd(t *testing.T, script string, inits ...launch.Initializer) *launch.Request {
	t.Helper()
	req, err := launch.NewBuilder("cmd.exe", inits...).Args("/c", script).Build()
	require.NoError(t, err)
	return req
}

func TestLaunch_ExitCode(t *testing.T) {
	c, err := Launch(cmd(t, "exit 42"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 42, c.ExitCode())
	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 42, c.ExitCode())
}

func TestTerminate_GroupJob(t *testing.T) {
	c, err := Launch(cmd(t, "ping -n 60 127.0.0.1 > NUL", launch.WithGroup(), launch.WithStdout(launch.Discard())))
	require.NoError(t, err)
	defer c.Close()
	assert.True(t, c.InGroup())

	exited, err := c.WaitFor(50 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, exited)

	require.NoError(t, c.Terminate())
	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, lib.StateExited, c.State())
	assert.Equal(t, 1, c.ExitCode())
}

func TestSortEnv_CaseInsensitiveByName(t *testing.T) {
	env := []string{"b=1", "=C:=C:\\", "Path=x", "A_B=2", "a=3", "PATHEXT=.exe"}
	assert.Equal(t,
		[]string{"=C:=C:\\", "a=3", "A_B=2", "b=1", "Path=x", "PATHEXT=.exe"},
		sortEnv(env))
	assert.Equal(t, "b=1", env[0], "input reordered")

	assert.Equal(t, "=C:", envName("=C:=C:\\"))
	assert.Equal(t, "KEY", envName("KEY=a=b"))
	assert.Equal(t, "NOVALUE", envName("NOVALUE"))
}
