// Package errutil contains common error-related utilities.
package errutil

import "strings"

// Multi combines multiple errors into one:
//
//   - If all errors are nil, it returns nil.
//
//   - If there is exactly one non-nil error, it is returned.
//
//   - Otherwise, the returned error combines the messages of all non-nil
//     arguments.
//
// Errors that were themselves returned by Multi are flattened, so the
// following two calls return the same value:
//
//	Multi(Multi(err1, err2), Multi(err3, err4))
//	Multi(err1, err2, err3, err4)
func Multi(errs ...error) error {
	var flat []error
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			flat = append(flat, err...)
		default:
			flat = append(flat, err)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return multiError(flat)
}

type multiError []error

func (me multiError) Error() string {
	var sb strings.Builder
	sb.WriteString("multiple errors: ")
	for i, err := range me {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}
