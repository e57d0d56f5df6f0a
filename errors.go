package att

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is an ATT-layer result: either a peer error response or one of the
// engine-synthesized application codes (I/O, Timeout, Aborted). Status 0 is
// never carried by Error -- success is the absence of one.
type Error struct {
	Code    byte
	Message string
}

func (e *Error) Error() string { return e.Message }

func newATTError(code byte) *Error {
	msg, ok := ErrorName(code)
	if !ok {
		msg = fmt.Sprintf("unknown ATT error 0x%02x", code)
	}
	return &Error{Code: code, Message: msg}
}

var errAbortedCode = &Error{Code: ecodeAborted, Message: errorNames[ecodeAborted]}

// ioError turns a transport failure (link write/read failure, peer close)
// into an *Error with the synthesized I/O status code. Message carries the
// cause's text; the cause itself is not retained, so errors.Cause on the
// result returns the *Error.
func ioError(cause error) *Error {
	return &Error{Code: ecodeIO, Message: errors.Wrap(cause, "link I/O error").Error()}
}

// ErrTimeout is the reserved Timeout (0x81) status code (spec.md §7): this
// engine never enforces a request deadline or produces this error itself,
// but a caller timing out an operation on its own (e.g. with a context
// deadline around a callback) can report it consistently by using this
// value rather than inventing its own status.
var ErrTimeout = &Error{Code: ecodeTimeout, Message: errorNames[ecodeTimeout]}

// errInvalidPDU reports a malformed incoming PDU body. When the body is a
// response to the outstanding request that fails to parse, the error is
// delivered to that request's callback; any other malformed PDU (empty,
// a bad Error Response or notification) is surfaced on the engine error
// channel.
func errInvalidPDU(format string, args ...interface{}) error {
	return errors.Errorf("att: malformed pdu: "+format, args...)
}

// pendingError is returned synchronously to a caller whose submission could
// not claim the transaction slot.
func pendingError(opcode byte) error {
	name, ok := OpcodeName(opcode)
	if !ok {
		name = fmt.Sprintf("opcode 0x%02x", opcode)
	}
	return errors.Errorf("Request already pending: %s", name)
}
