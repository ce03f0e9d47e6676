package launch

import (
	"os"
	"sort"
	"strings"
)

type envVar struct{ key, value string }

// Request is an immutable description of how to start one process. Obtain
// one from Builder.Build; accessors return copies.
type Request struct {
	path       string
	args       []string
	env        map[string]string
	overlay    []envVar
	dir        string
	stdio      [3]Redirect
	group      bool
	setsid     bool
	cred       *Credential
	cgroup     string
	hideWindow bool
	onSuccess  []func(pid int)
	onError    []func(error)
}

// Path is the executable as given to the builder.
func (r *Request) Path() string { return r.path }

// Args returns the arguments after argv[0].
func (r *Request) Args() []string { return append([]string(nil), r.args...) }

// Argv returns the full argument vector with argv[0] set to the executable
// path.
func (r *Request) Argv() []string {
	return append([]string{r.path}, r.args...)
}

// InheritsEnv reports whether the child starts from the caller's environment.
func (r *Request) InheritsEnv() bool { return r.env == nil }

// Environ returns the child environment as sorted KEY=VALUE pairs, or nil
// when the child simply inherits the caller's environment unchanged.
func (r *Request) Environ() []string {
	if r.env == nil && len(r.overlay) == 0 {
		return nil
	}
	merged := make(map[string]string)
	if r.env == nil {
		for _, kv := range os.Environ() {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			merged[k] = v
		}
	} else {
		for k, v := range r.env {
			merged[k] = v
		}
	}
	for _, ev := range r.overlay {
		merged[ev.key] = ev.value
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Dir is the working directory, "" meaning the caller's.
func (r *Request) Dir() string { return r.dir }

func (r *Request) Stdio(s Stream) Redirect {
	if s < Stdin || s > Stderr {
		return Redirect{}
	}
	return r.stdio[s]
}

func (r *Request) Stdin() Redirect  { return r.stdio[Stdin] }
func (r *Request) Stdout() Redirect { return r.stdio[Stdout] }
func (r *Request) Stderr() Redirect { return r.stdio[Stderr] }

// Group reports whether the child gets its own process group.
func (r *Request) Group() bool { return r.group }

func (r *Request) Setsid() bool { return r.setsid }

// Credential returns a copy of the requested credential, or nil.
func (r *Request) Credential() *Credential {
	if r.cred == nil {
		return nil
	}
	c := *r.cred
	c.Groups = append([]uint32(nil), c.Groups...)
	return &c
}

func (r *Request) Cgroup() string { return r.cgroup }

func (r *Request) HideWindow() bool { return r.hideWindow }

// NotifySuccess runs the OnSuccess hooks. Launchers call it once the child
// is running.
func (r *Request) NotifySuccess(pid int) {
	for _, fn := range r.onSuccess {
		fn(pid)
	}
}

// NotifyError runs the OnError hooks. Launchers call it before returning a
// launch error.
func (r *Request) NotifyError(err error) {
	for _, fn := range r.onError {
		fn(err)
	}
}

func (r *Request) String() string {
	return strings.Join(r.Argv(), " ")
}
