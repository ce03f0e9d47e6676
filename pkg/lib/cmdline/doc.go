// Package cmdline reads the argument vector of any running process, not
// only of children launched by this module.
//
// The source differs per OS: NUL separated strings from procfs on Linux and
// from the kern.proc.args sysctl on FreeBSD, the kern.procargs2 record on
// macOS, and the command line string in the process environment block on
// Windows, which is split following the Windows quoting rules. Remaining
// unix systems go through gopsutil.
//
// Results are snapshots. The process may exit or exec between the lookup
// and the read; a read that fails after the process was found is reported
// as lib.ErrNotFound. Nothing is cached and all functions are safe for
// concurrent use.
package cmdline
