// Package errors provides error wrapping that carries slog attributes and
// the source location of the wrap site, so failures log with structured
// context. It re-exports the standard library helpers so callers only need
// one errors import.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError wraps an error with a message, slog attributes, and the
// program counter of the wrap site.
type annotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	pc          uintptr
}

// Error implements the error interface.
func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a sentinel error suitable for errors.Is comparisons.
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, pc: callerPC(2)}
}

// Wrap annotates err with a message and optional slog attributes. The wrap
// site is recorded so SlogError can point at the origin of the failure.
func Wrap(err error, msg string, annotations ...slog.Attr) error {
	return &annotatedError{
		msg:         msg,
		err:         err,
		annotations: annotations,
		pc:          callerPC(2),
	}
}

// New re-exports errors.New.
func New(msg string) error {
	return stderrors.New(msg)
}

// Is re-exports errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As re-exports errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap re-exports errors.Unwrap.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join re-exports errors.Join.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// DecoratePanic converts a recovered panic value into an error whose source
// points at the panic site rather than at the recovery plumbing.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &annotatedError{
		msg: fmt.Sprintf("panic: %v", recovered),
		pc:  panicSitePC(),
	}
}

// SlogError renders err as a single grouped slog attribute containing the
// message, all annotations found in the error chain, and the source
// location of the outermost wrap site.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	attrs := []any{slog.String("message", err.Error())}

	if source := sourceLocation(err); source != "" {
		attrs = append(attrs, slog.String("source", source))
	}

	if annotations := collectAnnotations(err); len(annotations) > 0 {
		groupArgs := make([]any, 0, len(annotations))
		for _, a := range annotations {
			groupArgs = append(groupArgs, a)
		}
		attrs = append(attrs, slog.Group("annotations", groupArgs...))
	}

	return slog.Group("error", attrs...)
}

// collectAnnotations gathers slog attributes from every annotated error in
// the chain, outermost first. Joined errors contribute all branches.
func collectAnnotations(err error) []slog.Attr {
	var annotations []slog.Attr
	walkChain(err, func(ae *annotatedError) {
		annotations = append(annotations, ae.annotations...)
	})
	return annotations
}

// sourceLocation returns "file:line" of the outermost annotated error.
func sourceLocation(err error) string {
	var pc uintptr
	walkChain(err, func(ae *annotatedError) {
		if pc == 0 {
			pc = ae.pc
		}
	})
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", baseName(frame.File), frame.Line)
}

func walkChain(err error, visit func(*annotatedError)) {
	for err != nil {
		if ae, ok := err.(*annotatedError); ok {
			visit(ae)
			err = ae.err
			continue
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				walkChain(branch, visit)
			}
			return
		}
		err = stderrors.Unwrap(err)
	}
}

// callerPC returns the program counter skip frames above the caller.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// panicSitePC finds the frame below runtime.gopanic, which is where the
// panic originated.
func panicSitePC() uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	fallback := uintptr(0)
	for {
		frame, more := frames.Next()
		isRuntime := strings.HasPrefix(frame.Function, "runtime.")
		if sawPanic && !isRuntime {
			return frame.PC
		}
		if strings.Contains(frame.Function, "runtime.gopanic") {
			sawPanic = true
		}
		if fallback == 0 && !isRuntime && !strings.Contains(frame.File, "annotatederror.go") {
			fallback = frame.PC
		}
		if !more {
			return fallback
		}
	}
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
