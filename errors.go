package qom

import (
	"fmt"

	"github.com/pkg/errors"
)

// FaultKind classifies why the core gave up. All of them are fatal: the
// propagation policy in this package is "diagnose, then panic" — there is
// no recoverable error return from a type-system operation. Negative
// answers from Lookup, ClassByName and the non-assert casts (unknown name,
// failed cast, ambiguous interface) are not faults;
// they are zero values / false / nil, handled by the caller in the normal
// path.
type FaultKind int

const (
	// UsageFault covers duplicate registration, instantiating an abstract
	// type, a required name that was empty, a ref/unref imbalance, or
	// registering while the registry is enumerating.
	UsageFault FaultKind = iota
	// ResolutionFault covers an unknown parent, an unknown declared
	// interface, an unknown type name passed to IsCompatible, Initialize,
	// GetInstanceSize or Retire, and any *Assert cast that fails, whether
	// its target is unknown, unrelated or an ambiguous interface.
	ResolutionFault
	// StructuralFault covers a parent-chain cycle, a class size smaller
	// than the parent's, or a class payload that cannot receive its
	// parent's class value. Instance sizes are never compared with a
	// header size.
	StructuralFault
	// AmbiguityFault names a dynamic cast to an interface reachable
	// through two or more distinct interface entries. No path in this
	// package raises it: ObjectClassDynamicCast returns nil for such a
	// cast, and the *Assert variants report that nil as a ResolutionFault.
	AmbiguityFault
)

func (k FaultKind) String() string {
	switch k {
	case UsageFault:
		return "usage"
	case ResolutionFault:
		return "resolution"
	case StructuralFault:
		return "structural"
	case AmbiguityFault:
		return "ambiguity"
	default:
		return "unknown"
	}
}

// CallerSite pinpoints the caller of an *Assert entry point, so the
// terminal diagnostic names the offending site rather than this library.
type CallerSite struct {
	File string
	Line int
	Func string
}

func (c CallerSite) String() string {
	if c.File == "" {
		return "<unknown caller>"
	}
	return fmt.Sprintf("%s:%d:%s", c.File, c.Line, c.Func)
}

// Fault is the panic value raised by every fatal path in this package.
// It carries a stack (via github.com/pkg/errors) so a recovering caller
// can log a useful trace instead of a bare string.
type Fault struct {
	Kind  FaultKind
	Msg   string
	Site  CallerSite
	stack error
}

func (f *Fault) Error() string {
	if f.Site.File != "" {
		return fmt.Sprintf("qom: %s fault at %s: %s", f.Kind, f.Site, f.Msg)
	}
	return fmt.Sprintf("qom: %s fault: %s", f.Kind, f.Msg)
}

// Unwrap exposes the captured stack trace to errors.As/errors.Is chains.
func (f *Fault) Unwrap() error { return f.stack }

// FatalFunc is the environment's fatal-error sink: it prints a diagnostic
// and terminates. The default implementation logs via the package logger
// and panics with the *Fault, which is what every test in this module
// recovers from; a caller that wants the original C semantics of aborting
// the process can install a FatalFunc that calls os.Exit instead.
type FatalFunc func(f *Fault)

var fatal FatalFunc = defaultFatal

// SetFatal overrides the fatal-error sink. Passing nil restores the default.
func SetFatal(fn FatalFunc) {
	if fn == nil {
		fatal = defaultFatal
		return
	}
	fatal = fn
}

func defaultFatal(f *Fault) {
	logger().Errorw("qom: fatal", "kind", f.Kind.String(), "msg", f.Msg, "site", f.Site.String())
	panic(f)
}

func newFault(kind FaultKind, site CallerSite, format string, args ...any) *Fault {
	return &Fault{
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
		Site:  site,
		stack: errors.New(fmt.Sprintf(format, args...)),
	}
}

func raise(kind FaultKind, format string, args ...any) {
	fatal(newFault(kind, CallerSite{}, format, args...))
}

func raiseAt(kind FaultKind, site CallerSite, format string, args ...any) {
	fatal(newFault(kind, site, format, args...))
}
