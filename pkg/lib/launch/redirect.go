package launch

import (
	"fmt"
	"os"
)

// RedirectKind selects what a standard stream of the child is connected to.
type RedirectKind int

const (
	// RedirectInherit shares the caller's stream. It is the default.
	RedirectInherit RedirectKind = iota
	// RedirectDiscard connects the stream to the null device.
	RedirectDiscard
	// RedirectPipe connects the stream to a caller-owned open file, usually
	// one end of an os.Pipe.
	RedirectPipe
	// RedirectFile opens a path at launch time.
	RedirectFile
)

func (k RedirectKind) String() string {
	switch k {
	case RedirectInherit:
		return "inherit"
	case RedirectDiscard:
		return "discard"
	case RedirectPipe:
		return "pipe"
	case RedirectFile:
		return "file"
	default:
		return fmt.Sprintf("RedirectKind(%d)", int(k))
	}
}

// Redirect is the target of one standard stream. The zero value inherits.
type Redirect struct {
	kind RedirectKind
	file *os.File
	path string
}

func Inherit() Redirect { return Redirect{kind: RedirectInherit} }

func Discard() Redirect { return Redirect{kind: RedirectDiscard} }

// Pipe hands an already open endpoint to the child. The file stays owned by
// the caller: the launcher only duplicates it into the child's slot and never
// closes it.
func Pipe(f *os.File) Redirect { return Redirect{kind: RedirectPipe, file: f} }

// File opens path when the process is launched: read-only for stdin,
// create-or-truncate for stdout and stderr.
func File(path string) Redirect { return Redirect{kind: RedirectFile, path: path} }

func (r Redirect) Kind() RedirectKind { return r.kind }

// Endpoint returns the file passed to Pipe, or nil.
func (r Redirect) Endpoint() *os.File { return r.file }

// Path returns the path passed to File, or "".
func (r Redirect) Path() string { return r.path }

func (r Redirect) String() string {
	switch r.kind {
	case RedirectPipe:
		if r.file == nil {
			return "pipe(<nil>)"
		}
		return fmt.Sprintf("pipe(%s)", r.file.Name())
	case RedirectFile:
		return fmt.Sprintf("file(%s)", r.path)
	default:
		return r.kind.String()
	}
}

func (r Redirect) validate() error {
	switch r.kind {
	case RedirectInherit, RedirectDiscard:
		return nil
	case RedirectPipe:
		if r.file == nil {
			return fmt.Errorf("pipe redirect requires an open file")
		}
		return nil
	case RedirectFile:
		if r.path == "" {
			return fmt.Errorf("file redirect requires a path")
		}
		return nil
	default:
		return fmt.Errorf("unknown redirect kind %d", int(r.kind))
	}
}

// Stream indexes the three standard streams.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("Stream(%d)", int(s))
	}
}
