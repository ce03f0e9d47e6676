//go:build !unix && !windows

package child

import (
	"time"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

const invalidHandle = ^uintptr(0)

type strategy struct{}

func (strategy) Name() string { return "unsupported" }

func (strategy) start(req *launch.Request) (*Child, error) {
	return nil, &lib.LaunchError{Path: req.Path(), Err: lib.ErrUnsupported}
}

type native struct{}

func (*native) handle() uintptr { return invalidHandle }

func (*native) wait(time.Duration) (bool, int, error) { return false, 0, lib.ErrUnsupported }

func (*native) kill(bool) error { return lib.ErrUnsupported }

func (*native) release() {}

func exitCode(status int) int { return status }

func attachNative(int) (*native, error) { return nil, lib.ErrUnsupported }

func notOurChild(error) bool { return false }
