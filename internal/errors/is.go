// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target, and if so,
// sets target to that error value and returns true.
func As(err error, target any) bool {
	if err == nil {
		return false
	}
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if err's
// type contains an Unwrap method returning error.  Otherwise, Unwrap returns
// nil.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// IsUniqueError returns a boolean indicating whether the error is known to
// report a unique constraint violation.
func IsUniqueError(err error) bool {
	return hasCode(err, NotUnique)
}

// IsNotFoundError returns a boolean indicating whether the error is known to
// report a not found violation.
func IsNotFoundError(err error) bool {
	return hasCode(err, RecordNotFound)
}

// IsMissingTableError returns a boolean indicating whether the error is known
// to report a undefined/missing table violation.
func IsMissingTableError(err error) bool {
	return hasCode(err, MissingTable)
}

func hasCode(err error, c Code) bool {
	if err == nil {
		return false
	}
	var domainErr *Err
	if As(err, &domainErr) && domainErr.Code == c {
		return true
	}
	if converted, ok := Convert(err).(*Err); ok && converted.Code == c {
		return true
	}
	return false
}
