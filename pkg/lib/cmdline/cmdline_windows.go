package cmdline

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

const stillActive = 259

func args(pid int) ([]string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, uint32(pid))
	if err != nil {
		return nil, queryError(pid, err)
	}
	defer windows.CloseHandle(h)
	return readArgs(pid, h)
}

func handleArgs(handle uintptr) ([]string, error) {
	h := windows.Handle(handle)
	pid, err := windows.GetProcessId(h)
	if err != nil {
		return nil, queryError(-1, err)
	}
	return readArgs(int(pid), h)
}

func processArgs(p Process) ([]string, error) {
	return handleArgs(p.NativeHandle())
}

// readArgs reads the command line from the process parameters block of h.
// Processes of a different bitness than the caller are not supported.
func readArgs(pid int, h windows.Handle) ([]string, error) {
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return nil, queryError(pid, err)
	}
	if code != stillActive {
		return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound, Err: fmt.Errorf("process exited with %d", code)}
	}

	var info windows.PROCESS_BASIC_INFORMATION
	err := windows.NtQueryInformationProcess(h, windows.ProcessBasicInformation,
		unsafe.Pointer(&info), uint32(unsafe.Sizeof(info)), nil)
	if err != nil {
		return nil, queryError(pid, err)
	}

	var peb windows.PEB
	if err := readMemory(h, uintptr(unsafe.Pointer(info.PebBaseAddress)), unsafe.Pointer(&peb), unsafe.Sizeof(peb)); err != nil {
		return nil, queryError(pid, err)
	}
	var params windows.RTL_USER_PROCESS_PARAMETERS
	if err := readMemory(h, uintptr(unsafe.Pointer(peb.ProcessParameters)), unsafe.Pointer(&params), unsafe.Sizeof(params)); err != nil {
		return nil, queryError(pid, err)
	}

	n := int(params.CommandLine.Length / 2)
	if n == 0 {
		return []string{}, nil
	}
	buf := make([]uint16, n)
	if err := readMemory(h, uintptr(unsafe.Pointer(params.CommandLine.Buffer)), unsafe.Pointer(&buf[0]), uintptr(n*2)); err != nil {
		return nil, queryError(pid, err)
	}

	argv, err := windows.DecomposeCommandLine(windows.UTF16ToString(buf))
	if err != nil {
		return nil, parseError(pid, "command line: %v", err)
	}
	return argv, nil
}

func readMemory(h windows.Handle, addr uintptr, dst unsafe.Pointer, size uintptr) error {
	if addr == 0 {
		return fmt.Errorf("null address in process memory")
	}
	var read uintptr
	if err := windows.ReadProcessMemory(h, addr, (*byte)(dst), size, &read); err != nil {
		return err
	}
	if read != size {
		return fmt.Errorf("short read of process memory: %d of %d bytes", read, size)
	}
	return nil
}
