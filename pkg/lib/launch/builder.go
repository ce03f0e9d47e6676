package launch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

type setting[T any] struct {
	set   bool
	value T
}

// Builder accumulates initializers. It is not safe for concurrent use.
type Builder struct {
	path         setting[string]
	args         setting[[]string]
	env          setting[map[string]string]
	overlay      map[string]*setting[string]
	overlayOrder []string
	dir          setting[string]
	stdio        [3]setting[Redirect]
	group        bool
	setsid       bool
	cred         setting[Credential]
	cgroup       setting[string]
	hideWindow   bool
	onSuccess    []func(pid int)
	onError      []func(error)

	kinds     []Kind
	conflicts []*lib.ConflictError
	errs      []error
}

// NewBuilder starts a request for the executable at path.
func NewBuilder(path string, inits ...Initializer) *Builder {
	b := &Builder{}
	b.Apply(WithPath(path))
	return b.Apply(inits...)
}

// Apply folds initializers into the builder. Nil initializers are ignored.
func (b *Builder) Apply(inits ...Initializer) *Builder {
	for _, init := range inits {
		if init == nil {
			continue
		}
		b.noteKind(init.Kind())
		init.apply(b)
	}
	return b
}

func (b *Builder) Args(args ...string) *Builder       { return b.Apply(WithArgs(args...)) }
func (b *Builder) Env(env map[string]string) *Builder { return b.Apply(WithEnv(env)) }
func (b *Builder) SetEnv(key, value string) *Builder  { return b.Apply(WithSetEnv(key, value)) }
func (b *Builder) Dir(dir string) *Builder            { return b.Apply(WithDir(dir)) }
func (b *Builder) Stdin(r Redirect) *Builder          { return b.Apply(WithStdin(r)) }
func (b *Builder) Stdout(r Redirect) *Builder         { return b.Apply(WithStdout(r)) }
func (b *Builder) Stderr(r Redirect) *Builder         { return b.Apply(WithStderr(r)) }
func (b *Builder) Group() *Builder                    { return b.Apply(WithGroup()) }
func (b *Builder) Setsid() *Builder                   { return b.Apply(WithSetsid()) }
func (b *Builder) Credential(c Credential) *Builder   { return b.Apply(WithCredential(c)) }
func (b *Builder) Cgroup(dir string) *Builder         { return b.Apply(WithCgroup(dir)) }
func (b *Builder) HideWindow() *Builder               { return b.Apply(WithHideWindow()) }
func (b *Builder) OnSuccess(fn func(pid int)) *Builder {
	return b.Apply(OnSuccess(fn))
}
func (b *Builder) OnError(fn func(error)) *Builder { return b.Apply(OnError(fn)) }

func (b *Builder) noteKind(k Kind) {
	for _, seen := range b.kinds {
		if seen == k {
			return
		}
	}
	b.kinds = append(b.kinds, k)
}

// assign records v into s, or a conflict when s already holds a different
// value.
func assign[T any](b *Builder, s *setting[T], field string, v T, eq func(a, c T) bool, show func(T) string) {
	if !s.set {
		s.set = true
		s.value = v
		return
	}
	if eq(s.value, v) {
		return
	}
	for _, c := range b.conflicts {
		if c.Field == field {
			c.Values = append(c.Values, show(v))
			return
		}
	}
	b.conflicts = append(b.conflicts, &lib.ConflictError{Field: field, Values: []string{show(s.value), show(v)}})
}

// Build validates the accumulated initializers and returns the request. All
// problems are reported together.
func (b *Builder) Build() (*Request, error) {
	var errs []error
	for _, c := range b.conflicts {
		errs = append(errs, c)
	}
	for _, k := range b.kinds {
		if !platformSupports(k) {
			errs = append(errs, fmt.Errorf("initializer %q: %w", k, lib.ErrUnsupported))
		}
	}
	for _, err := range b.errs {
		errs = append(errs, fmt.Errorf("%w: %v", lib.ErrInvalid, err))
	}
	if strings.TrimSpace(b.path.value) == "" {
		errs = append(errs, fmt.Errorf("%w: executable path is required", lib.ErrInvalid))
	}
	if strings.ContainsRune(b.path.value, 0) {
		errs = append(errs, fmt.Errorf("%w: executable path contains NUL", lib.ErrInvalid))
	}
	for _, a := range b.args.value {
		if strings.ContainsRune(a, 0) {
			errs = append(errs, fmt.Errorf("%w: argument %q contains NUL", lib.ErrInvalid, a))
		}
	}
	for k := range b.env.value {
		if err := validEnvKey(k); err != nil {
			errs = append(errs, err)
		}
	}
	for _, k := range b.overlayOrder {
		if err := validEnvKey(k); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range b.stdio {
		if err := b.stdio[i].value.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", lib.ErrInvalid, Stream(i), err))
		}
	}
	if b.cgroup.set && b.cgroup.value == "" {
		errs = append(errs, fmt.Errorf("%w: cgroup directory is empty", lib.ErrInvalid))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	req := &Request{
		path:       b.path.value,
		args:       append([]string(nil), b.args.value...),
		dir:        b.dir.value,
		group:      b.group,
		setsid:     b.setsid,
		cgroup:     b.cgroup.value,
		hideWindow: b.hideWindow,
		onSuccess:  slices.Clone(b.onSuccess),
		onError:    slices.Clone(b.onError),
	}
	if b.env.set {
		req.env = make(map[string]string, len(b.env.value))
		for k, v := range b.env.value {
			req.env[k] = v
		}
	}
	for _, k := range b.overlayOrder {
		req.overlay = append(req.overlay, envVar{key: k, value: b.overlay[k].value})
	}
	for i := range b.stdio {
		req.stdio[i] = b.stdio[i].value
	}
	if b.cred.set {
		c := b.cred.value
		c.Groups = append([]uint32(nil), c.Groups...)
		req.cred = &c
	}
	return req, nil
}

func validEnvKey(k string) error {
	if k == "" || strings.ContainsAny(k, "=\x00") {
		return fmt.Errorf("%w: invalid environment variable name %q", lib.ErrInvalid, k)
	}
	return nil
}
