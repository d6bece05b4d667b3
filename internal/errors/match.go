// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package errors

// Template describes the parts of an *Err a caller cares about. Zero fields
// are wildcards, so a Template built only from a Kind matches every Code of
// that Kind.
type Template struct {
	Err
	Kind Kind
}

// T builds a Template from any mix of Code, Kind, Op, message string and
// wrapped error. Later arguments of the same type replace earlier ones and
// arguments of any other type are dropped.
func T(args ...any) *Template {
	t := &Template{}
	for _, a := range args {
		switch v := a.(type) {
		case Code:
			t.Code = v
		case Kind:
			t.Kind = v
		case Op:
			t.Op = v
		case string:
			t.Msg = v
		case *Err:
			// copied so later changes to v don't leak into the template;
			// must precede the error case.
			cp := *v
			t.Wrapped = &cp
		case error:
			t.Wrapped = v
		}
	}
	return t
}

// Info reports the template's Code info, or a synthetic Unknown entry
// carrying only the Kind when no Code is set.
func (t *Template) Info() Info {
	switch {
	case t == nil:
		return errorCodeInfo[Unknown]
	case t.Code != Unknown:
		return t.Code.Info()
	case t.Kind != Other:
		return Info{Message: "Unknown", Kind: t.Kind}
	}
	return errorCodeInfo[Unknown]
}

// Error makes Template an error so it can sit in a Wrapped field. It carries
// no detail and is not meant to be returned from operations.
func (t *Template) Error() string {
	return "Template error"
}

// Match reports whether err, or an *Err it wraps, agrees with every
// non-zero field of t. A Template in t.Wrapped is matched recursively against
// the wrapped error; any other wrapped error is compared by its text.
func Match(t *Template, err error) bool {
	if t == nil || err == nil {
		return false
	}
	var e *Err
	if !As(err, &e) {
		return false
	}
	return t.matches(e)
}

func (t *Template) matches(e *Err) bool {
	switch {
	case t.Code != Unknown && t.Code != e.Code:
		return false
	case t.Msg != "" && t.Msg != e.Msg:
		return false
	case t.Op != "" && t.Op != e.Op:
		return false
	case t.Kind != Other && t.Info().Kind != e.Info().Kind:
		return false
	}
	switch w := t.Wrapped.(type) {
	case nil:
		return true
	case *Template:
		return Match(w, e.Wrapped)
	default:
		return e.Wrapped == nil || w.Error() == e.Wrapped.Error()
	}
}
