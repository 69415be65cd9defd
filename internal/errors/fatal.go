package errors

import "fmt"

// fatalError is a message meant for the user. Once it reaches main, the
// message is printed as-is and bcup exits with a non-zero status.
type fatalError struct {
	msg string
	err error
}

func (e *fatalError) Error() string { return e.msg }

func (e *fatalError) Unwrap() error { return e.err }

// IsFatal reports whether err, or any error it wraps, was created by Fatal or
// Fatalf.
func IsFatal(err error) bool {
	var fatal *fatalError
	return As(err, &fatal)
}

// Fatal returns an error that is marked fatal.
func Fatal(s string) error {
	return Wrap(&fatalError{msg: s}, "Fatal")
}

// Fatalf returns an error that is marked fatal. The last error in data, if
// any, is kept as the cause so that Is and As still see it.
func Fatalf(s string, data ...interface{}) error {
	fatal := &fatalError{msg: fmt.Sprintf(s, data...)}
	for i := len(data) - 1; i >= 0; i-- {
		if err, ok := data[i].(error); ok {
			fatal.err = err
			break
		}
	}

	return Wrap(fatal, "Fatal")
}

// FatalMessage returns the message passed to Fatal or Fatalf without the
// "Fatal: " prefix. Other errors are returned as err.Error().
func FatalMessage(err error) string {
	var fatal *fatalError
	if As(err, &fatal) {
		return fatal.msg
	}
	return err.Error()
}
