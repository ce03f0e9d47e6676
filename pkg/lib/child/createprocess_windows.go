package child

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

// strategy is a single CreateProcess call. The command line and the
// environment block are composed up front; the call creates and starts the
// process and hands back its handle directly. Groups are job objects: the
// process is created suspended, assigned to a fresh job and only then
// resumed, so no descendant can escape the job.
type strategy struct{}

func (strategy) Name() string { return "create-process" }

func (strategy) start(req *launch.Request) (*Child, error) {
	fail := func(started bool, err error) error {
		return &lib.LaunchError{Path: req.Path(), Started: started, Err: err}
	}

	path, err := lookExecutable(req.Path())
	if err != nil {
		return nil, fail(false, err)
	}
	appName, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fail(false, err)
	}
	cmdline, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(req.Argv()))
	if err != nil {
		return nil, fail(false, err)
	}
	var dir *uint16
	if req.Dir() != "" {
		if dir, err = windows.UTF16PtrFromString(req.Dir()); err != nil {
			return nil, fail(false, err)
		}
	}
	envBlock, err := environmentBlock(req.Environ())
	if err != nil {
		return nil, fail(false, err)
	}

	std, err := openStdHandles(req)
	if err != nil {
		return nil, fail(false, err)
	}
	defer std.close()

	attrs, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return nil, fail(false, err)
	}
	defer attrs.Delete()
	inherit := std.inheritList()
	if err := attrs.Update(windows.PROC_THREAD_ATTRIBUTE_HANDLE_LIST, unsafe.Pointer(&inherit[0]), uintptr(len(inherit))*unsafe.Sizeof(inherit[0])); err != nil {
		return nil, fail(false, err)
	}

	si := &windows.StartupInfoEx{}
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.Flags = windows.STARTF_USESTDHANDLES
	si.StdInput = std.handles[0]
	si.StdOutput = std.handles[1]
	si.StdErr = std.handles[2]
	if req.HideWindow() {
		si.Flags |= windows.STARTF_USESHOWWINDOW
		si.ShowWindow = windows.SW_HIDE
	}
	si.ProcThreadAttributeList = attrs.List()

	flags := uint32(windows.CREATE_UNICODE_ENVIRONMENT | windows.EXTENDED_STARTUPINFO_PRESENT)
	if req.Group() {
		flags |= windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_SUSPENDED
	}

	var pi windows.ProcessInformation
	if err := windows.CreateProcess(appName, cmdline, nil, nil, true, flags, envBlock, dir, &si.StartupInfo, &pi); err != nil {
		return nil, fail(false, err)
	}
	defer windows.CloseHandle(pi.Thread)

	n := &native{process: pi.Process}
	if req.Group() {
		if err := n.joinNewJob(pi.Thread); err != nil {
			_ = windows.TerminateProcess(pi.Process, 1)
			_, _ = windows.WaitForSingleObject(pi.Process, windows.INFINITE)
			n.release()
			return nil, fail(true, err)
		}
	}
	return newChild(int(pi.ProcessId), n, req.Group(), req.Path()), nil
}

func (n *native) joinNewJob(thread windows.Handle) error {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return fmt.Errorf("create job object: %w", err)
	}
	n.job = job
	if err := windows.AssignProcessToJobObject(job, n.process); err != nil {
		return fmt.Errorf("assign process to job: %w", err)
	}
	if _, err := windows.ResumeThread(thread); err != nil {
		return fmt.Errorf("resume main thread: %w", err)
	}
	return nil
}

// envName returns the variable name of a KEY=VALUE entry. Names such as
// "=C:" start with '=', so the separator is searched from the second byte.
func envName(kv string) string {
	if kv == "" {
		return kv
	}
	if i := strings.IndexByte(kv[1:], '='); i >= 0 {
		return kv[:i+1]
	}
	return kv
}

// sortEnv orders entries by name without regard to case, which is the order
// CreateProcess expects in an environment block.
func sortEnv(env []string) []string {
	sorted := slices.Clone(env)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToUpper(envName(a)), strings.ToUpper(envName(b)))
	})
	return sorted
}

// environmentBlock encodes env as a double NUL terminated UTF-16 block,
// sorted by sortEnv. A nil env yields a nil block, which inherits the
// caller's.
func environmentBlock(env []string) (*uint16, error) {
	if env == nil {
		return nil, nil
	}
	if len(env) == 0 {
		block := []uint16{0, 0}
		return &block[0], nil
	}
	var block []uint16
	for _, kv := range sortEnv(env) {
		u, err := windows.UTF16FromString(kv)
		if err != nil {
			return nil, err
		}
		block = append(block, u...)
	}
	block = append(block, 0)
	return &block[0], nil
}

// stdHandles are inheritable duplicates of the handles the child gets, so
// that only these three reach it through the explicit handle list.
type stdHandles struct {
	handles [3]windows.Handle
	opened  []*os.File
}

func openStdHandles(req *launch.Request) (*stdHandles, error) {
	s := &stdHandles{}
	inherited := [3]*os.File{os.Stdin, os.Stdout, os.Stderr}
	for i := range s.handles {
		stream := launch.Stream(i)
		r := req.Stdio(stream)
		var f *os.File
		switch r.Kind() {
		case launch.RedirectInherit:
			f = inherited[i]
		case launch.RedirectPipe:
			f = r.Endpoint()
		case launch.RedirectDiscard, launch.RedirectFile:
			name := os.DevNull
			if r.Kind() == launch.RedirectFile {
				name = r.Path()
			}
			flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if stream == launch.Stdin {
				flag = os.O_RDONLY
			}
			opened, err := os.OpenFile(name, flag, 0o644)
			if err != nil {
				s.close()
				return nil, fmt.Errorf("%s: %w", stream, err)
			}
			s.opened = append(s.opened, opened)
			f = opened
		}
		src := windows.InvalidHandle
		if f != nil {
			src = windows.Handle(f.Fd())
		}
		if src == windows.InvalidHandle || src == 0 {
			// The caller has no such stream; give the child the null device.
			nul, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
			if err != nil {
				s.close()
				return nil, fmt.Errorf("%s: %w", stream, err)
			}
			s.opened = append(s.opened, nul)
			src = windows.Handle(nul.Fd())
		}
		self := windows.CurrentProcess()
		if err := windows.DuplicateHandle(self, src, self, &s.handles[i], 0, true, windows.DUPLICATE_SAME_ACCESS); err != nil {
			s.close()
			return nil, fmt.Errorf("%s: duplicate handle: %w", stream, err)
		}
	}
	return s, nil
}

// inheritList returns the distinct handles for the attribute list; the
// same handle may not appear twice.
func (s *stdHandles) inheritList() []windows.Handle {
	var list []windows.Handle
	for _, h := range s.handles {
		dup := false
		for _, seen := range list {
			if seen == h {
				dup = true
			}
		}
		if !dup {
			list = append(list, h)
		}
	}
	return list
}

func (s *stdHandles) close() {
	for i, h := range s.handles {
		if h != 0 {
			_ = windows.CloseHandle(h)
			s.handles[i] = 0
		}
	}
	for _, f := range s.opened {
		_ = f.Close()
	}
	s.opened = nil
}

// attachNative opens the process with the rights wait and kill need.
func attachNative(pid int) (*native, error) {
	const access = windows.SYNCHRONIZE | windows.PROCESS_QUERY_LIMITED_INFORMATION | windows.PROCESS_TERMINATE
	h, err := windows.OpenProcess(access, false, uint32(pid))
	switch err {
	case nil:
		return &native{process: h}, nil
	case windows.ERROR_INVALID_PARAMETER:
		return nil, lib.ErrNotFound
	case windows.ERROR_ACCESS_DENIED:
		return nil, lib.ErrAccessDenied
	default:
		return nil, err
	}
}

// Any process handle can be waited on.
func notOurChild(error) bool { return false }
