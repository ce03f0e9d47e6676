package launch

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind names an initializer kind. Support for a kind is decided per target
// platform at build time of the binary.
type Kind string

const (
	KindPath       Kind = "path"
	KindArgs       Kind = "args"
	KindEnv        Kind = "env"
	KindSetEnv     Kind = "setenv"
	KindDir        Kind = "dir"
	KindStdio      Kind = "stdio"
	KindGroup      Kind = "group"
	KindHook       Kind = "hook"
	KindSetsid     Kind = "setsid"
	KindCredential Kind = "credential"
	KindCgroup     Kind = "cgroup"
	KindHideWindow Kind = "hide-window"
)

// Initializer is one typed piece of a launch request.
type Initializer interface {
	Kind() Kind
	apply(b *Builder)
}

// Credential selects the user and groups the child runs as.
type Credential struct {
	Uid    uint32
	Gid    uint32
	Groups []uint32
}

func (c Credential) equal(o Credential) bool {
	return c.Uid == o.Uid && c.Gid == o.Gid && slices.Equal(c.Groups, o.Groups)
}

func (c Credential) String() string {
	return fmt.Sprintf("uid=%d gid=%d groups=%v", c.Uid, c.Gid, c.Groups)
}

type pathInit string

func (pathInit) Kind() Kind { return KindPath }
func (i pathInit) apply(b *Builder) {
	assign(b, &b.path, "executable", string(i), func(a, c string) bool { return a == c }, quote)
}

type argsInit []string

func (argsInit) Kind() Kind { return KindArgs }
func (i argsInit) apply(b *Builder) {
	assign(b, &b.args, "arguments", slices.Clone([]string(i)), func(a, c []string) bool { return slices.Equal(a, c) }, func(a []string) string {
		return "[" + strings.Join(a, " ") + "]"
	})
}

type envInit map[string]string

func (envInit) Kind() Kind { return KindEnv }
func (i envInit) apply(b *Builder) {
	assign(b, &b.env, "environment", maps.Clone(map[string]string(i)), func(a, c map[string]string) bool { return maps.Equal(a, c) }, func(m map[string]string) string {
		return fmt.Sprintf("%d variables", len(m))
	})
}

type setEnvInit struct{ key, value string }

func (setEnvInit) Kind() Kind { return KindSetEnv }
func (i setEnvInit) apply(b *Builder) {
	if b.overlay == nil {
		b.overlay = make(map[string]*setting[string])
	}
	s, ok := b.overlay[i.key]
	if !ok {
		s = &setting[string]{}
		b.overlay[i.key] = s
		b.overlayOrder = append(b.overlayOrder, i.key)
	}
	assign(b, s, "environment variable "+i.key, i.value, func(a, c string) bool { return a == c }, quote)
}

type dirInit string

func (dirInit) Kind() Kind { return KindDir }
func (i dirInit) apply(b *Builder) {
	assign(b, &b.dir, "working directory", string(i), func(a, c string) bool { return a == c }, quote)
}

type stdioInit struct {
	stream Stream
	target Redirect
}

func (stdioInit) Kind() Kind { return KindStdio }
func (i stdioInit) apply(b *Builder) {
	if i.stream < Stdin || i.stream > Stderr {
		b.errs = append(b.errs, fmt.Errorf("unknown standard stream %d", int(i.stream)))
		return
	}
	assign(b, &b.stdio[i.stream], i.stream.String()+" redirection", i.target, func(a, c Redirect) bool { return a == c }, Redirect.String)
}

type groupInit struct{}

func (groupInit) Kind() Kind         { return KindGroup }
func (groupInit) apply(b *Builder) { b.group = true }

type setsidInit struct{}

func (setsidInit) Kind() Kind         { return KindSetsid }
func (setsidInit) apply(b *Builder) { b.setsid = true }

type credentialInit Credential

func (credentialInit) Kind() Kind { return KindCredential }
func (i credentialInit) apply(b *Builder) {
	c := Credential(i)
	c.Groups = slices.Clone(c.Groups)
	assign(b, &b.cred, "credential", c, Credential.equal, Credential.String)
}

type cgroupInit string

func (cgroupInit) Kind() Kind { return KindCgroup }
func (i cgroupInit) apply(b *Builder) {
	assign(b, &b.cgroup, "cgroup", string(i), func(a, c string) bool { return a == c }, quote)
}

type hideWindowInit struct{}

func (hideWindowInit) Kind() Kind         { return KindHideWindow }
func (hideWindowInit) apply(b *Builder) { b.hideWindow = true }

type hookInit struct {
	onSuccess func(pid int)
	onError   func(error)
}

func (hookInit) Kind() Kind { return KindHook }
func (i hookInit) apply(b *Builder) {
	if i.onSuccess != nil {
		b.onSuccess = append(b.onSuccess, i.onSuccess)
	}
	if i.onError != nil {
		b.onError = append(b.onError, i.onError)
	}
}

// WithPath sets the executable. A path without a separator is looked up in
// PATH at launch time.
func WithPath(path string) Initializer { return pathInit(path) }

// WithArgs sets the arguments after argv[0]. argv[0] is always the
// executable path.
func WithArgs(args ...string) Initializer { return argsInit(args) }

// WithEnv replaces the inherited environment with env.
func WithEnv(env map[string]string) Initializer { return envInit(env) }

// WithSetEnv sets one variable on top of the inherited (or WithEnv)
// environment.
func WithSetEnv(key, value string) Initializer { return setEnvInit{key: key, value: value} }

func WithDir(dir string) Initializer { return dirInit(dir) }

func WithStdin(r Redirect) Initializer  { return stdioInit{stream: Stdin, target: r} }
func WithStdout(r Redirect) Initializer { return stdioInit{stream: Stdout, target: r} }
func WithStderr(r Redirect) Initializer { return stdioInit{stream: Stderr, target: r} }

// WithGroup starts the child in a new process group (a job object on
// Windows) so it can be terminated together with its descendants.
func WithGroup() Initializer { return groupInit{} }

// WithSetsid starts the child in a new session. POSIX only.
func WithSetsid() Initializer { return setsidInit{} }

// WithCredential runs the child as another user. POSIX only.
func WithCredential(c Credential) Initializer { return credentialInit(c) }

// WithCgroup places the child into the cgroup v2 directory dir before it
// executes. Linux only.
func WithCgroup(dir string) Initializer { return cgroupInit(dir) }

// WithHideWindow starts a console child without showing its window.
// Windows only.
func WithHideWindow() Initializer { return hideWindowInit{} }

// OnSuccess registers fn to run in the parent once the child is running.
func OnSuccess(fn func(pid int)) Initializer { return hookInit{onSuccess: fn} }

// OnError registers fn to run in the parent when the launch fails.
func OnError(fn func(error)) Initializer { return hookInit{onError: fn} }

func quote(s string) string { return fmt.Sprintf("%q", s) }
