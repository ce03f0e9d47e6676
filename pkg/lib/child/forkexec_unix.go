//go:build unix

package child

import (
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

// strategy is fork and exec. syscall.StartProcess forks, applies the stdio,
// directory and SysProcAttr setup in the child and execs. Any failure on the
// child side of the fork travels back over a close-on-exec pipe: a clean
// exec closes it and the parent reads EOF, a failed one writes the errno
// before exiting, and the runtime reaps that child before returning the
// errno here. Either way no untracked process is left behind.
type strategy struct{}

func (strategy) Name() string { return "fork-exec" }

func (strategy) start(req *launch.Request) (*Child, error) {
	fail := func(err error) error {
		return &lib.LaunchError{Path: req.Path(), Err: err}
	}

	path, err := lookExecutable(req.Path())
	if err != nil {
		return nil, fail(err)
	}

	files, err := openStdio(req)
	if err != nil {
		return nil, fail(err)
	}
	defer files.close()

	pidfd := -1
	sys, closeSys, err := sysProcAttr(req, &pidfd)
	if err != nil {
		return nil, fail(err)
	}
	defer closeSys()

	env := req.Environ()
	if env == nil {
		env = os.Environ()
	}

	attr := &syscall.ProcAttr{
		Dir:   req.Dir(),
		Env:   env,
		Files: files.fds(),
		Sys:   sys,
	}
	pid, _, err := syscall.StartProcess(path, req.Argv(), attr)
	runtime.KeepAlive(files)
	if err != nil {
		return nil, fail(err)
	}
	return newChild(pid, newNative(pid, pidfd), req.Group() || req.Setsid(), req.Path()), nil
}

func baseSysProcAttr(req *launch.Request) *syscall.SysProcAttr {
	sys := &syscall.SysProcAttr{
		Setsid: req.Setsid(),
		// A session leader already leads its own group and may not call
		// setpgid.
		Setpgid: req.Group() && !req.Setsid(),
	}
	if c := req.Credential(); c != nil {
		sys.Credential = &syscall.Credential{Uid: c.Uid, Gid: c.Gid, Groups: c.Groups}
	}
	return sys
}

// stdio holds the files wired into the child's slots 0, 1 and 2. Files that
// were opened for the launch are closed again afterwards; inherited and
// caller-owned ones are not.
type stdio struct {
	files [3]*os.File
	owned [3]bool
}

func openStdio(req *launch.Request) (*stdio, error) {
	s := &stdio{}
	inherited := [3]*os.File{os.Stdin, os.Stdout, os.Stderr}
	for i := range s.files {
		stream := launch.Stream(i)
		r := req.Stdio(stream)
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if stream == launch.Stdin {
			flag = os.O_RDONLY
		}
		switch r.Kind() {
		case launch.RedirectInherit:
			s.files[i] = inherited[i]
		case launch.RedirectPipe:
			s.files[i] = r.Endpoint()
		case launch.RedirectDiscard:
			f, err := os.OpenFile(os.DevNull, flag&^(os.O_CREATE|os.O_TRUNC), 0)
			if err != nil {
				s.close()
				return nil, fmt.Errorf("%s: %w", stream, err)
			}
			s.files[i], s.owned[i] = f, true
		case launch.RedirectFile:
			f, err := os.OpenFile(r.Path(), flag, 0o644)
			if err != nil {
				s.close()
				return nil, fmt.Errorf("%s: %w", stream, err)
			}
			s.files[i], s.owned[i] = f, true
		}
	}
	return s, nil
}

func (s *stdio) fds() []uintptr {
	fds := make([]uintptr, len(s.files))
	for i, f := range s.files {
		if f == nil {
			// A closed inherited stream leaves the child's slot closed too.
			fds[i] = ^uintptr(0)
			continue
		}
		fds[i] = f.Fd()
	}
	return fds
}

func (s *stdio) close() {
	for i, f := range s.files {
		if s.owned[i] && f != nil {
			_ = f.Close()
		}
	}
}
