package att

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ReadFunc receives the value of a Read Request.
type ReadFunc func(value []byte, err error)

// WriteFunc receives the outcome of a Write Request.
type WriteFunc func(err error)

// SentFunc receives the outcome of submitting a Write Command: nil once the
// link has accepted the write, or the write's I/O error. Write Command
// carries no ATT response and never touches the transaction slot.
type SentFunc func(err error)

// MTUExchangeFunc receives the negotiated MTU of an MTU Exchange, the
// smaller of the client's and server's advertised values.
type MTUExchangeFunc func(mtu int, err error)

// Engine is the public surface of the ATT client: one method per protocol
// operation, notification subscription, and the out-of-band error sink.
// All methods are non-blocking; completion is always reported through the
// supplied callback. The engine invokes it from its Link's read-loop
// goroutine for responses, and synchronously on the calling goroutine for
// submission failures, Write Command results, and the abort of an
// outstanding request by Close.
type Engine struct {
	link Link
	tx   *Transaction
	nt   *notifyTable
	log  logrus.FieldLogger

	mu     sync.Mutex
	onErr  func(error)
	closed bool
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithLogger overrides the engine's logger. The default is
// logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds an Engine driving link. It installs itself as link's
// sole recv/error callback, so a Link must not be shared between two
// Engines.
func NewEngine(link Link, opts ...EngineOption) *Engine {
	e := &Engine{
		link: link,
		nt:   newNotifyTable(),
		log:  logrus.StandardLogger(),
	}
	e.tx = NewTransaction(link)
	for _, opt := range opts {
		opt(e)
	}

	link.SetOnRecv(e.handleIncoming)
	link.SetOnError(e.handleLinkError)
	return e
}

// OnError registers the engine-wide sink for protocol violations and
// notifications with no registered listener. It is never called for ATT
// peer errors or I/O errors belonging to an outstanding request -- those
// travel on that request's own callback.
func (e *Engine) OnError(cb func(error)) {
	e.mu.Lock()
	e.onErr = cb
	e.mu.Unlock()
}

// Close aborts any outstanding request with an "aborted" I/O error,
// discards the notification table, and closes the Link. It is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.tx.Abort(errAbortedCode)
	e.nt.clear()
	return e.link.Close()
}

// ReadAttribute issues a Read Request for handle.
func (e *Engine) ReadAttribute(handle Handle, cb ReadFunc) {
	desc := &txDescriptor{
		reqOpcode:    opReadReq,
		expectOpcode: opReadResp,
		onResponse: func(body []byte) txOutcome {
			if len(body) > maxAttributeValueLen {
				err := errInvalidPDU("read response: value length %d exceeds %d", len(body), maxAttributeValueLen)
				return txOutcome{done: true, deliver: func() { cb(nil, err) }}
			}
			value := append([]byte(nil), body...)
			return txOutcome{done: true, deliver: func() { cb(value, nil) }}
		},
		onATTError: func(code byte) txOutcome {
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(nil, attErr) }}
		},
		onAbort: func(err error) { cb(nil, err) },
	}
	e.submit(desc, EncodeHandleOp(opReadReq, handle, nil, e.link.MTU()))
}

// WriteCommand fire-and-forgets a Write Command: no ATT response is
// expected, and the transaction slot is never touched, so a WriteCommand
// can be submitted even while another request is outstanding. onSent, if
// non-nil, is invoked with the link's write result.
func (e *Engine) WriteCommand(handle Handle, value []byte, onSent SentFunc) {
	pdu := EncodeHandleOp(opWriteCmd, handle, value, e.link.MTU())
	err := e.link.Submit(pdu)
	if onSent != nil {
		onSent(err)
	}
}

// WriteRequest issues a Write Request and delivers the Write Response
// (or error) to cb. Unlike the narrower behavior noted for the source system in
// spec.md §9 Open Question 2, this engine claims the transaction slot for
// the duration of the write, so the response is delivered to cb rather than
// silently absorbed as an unexpected PDU.
func (e *Engine) WriteRequest(handle Handle, value []byte, cb WriteFunc) {
	desc := &txDescriptor{
		reqOpcode:    opWriteReq,
		expectOpcode: opWriteResp,
		onResponse: func(body []byte) txOutcome {
			return txOutcome{done: true, deliver: func() { cb(nil) }}
		},
		onATTError: func(code byte) txOutcome {
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(attErr) }}
		},
		onAbort: func(err error) { cb(err) },
	}
	e.submit(desc, EncodeHandleOp(opWriteReq, handle, value, e.link.MTU()))
}

// ExchangeMTU runs the ATT MTU Exchange: it informs the peer of
// clientMTU and, on success, updates the Link's working MTU to
// min(clientMTU, peer's reported MTU). See SPEC_FULL.md §12: the source
// system this engine is modeled on never runs this handshake automatically,
// so it is offered here as an explicit operation rather than firing on
// connect.
func (e *Engine) ExchangeMTU(clientMTU int, cb MTUExchangeFunc) {
	if clientMTU < DefaultMTU {
		clientMTU = DefaultMTU
	}
	desc := &txDescriptor{
		reqOpcode:    opMtuReq,
		expectOpcode: opMtuResp,
		onResponse: func(body []byte) txOutcome {
			if len(body) != 2 {
				err := errInvalidPDU("mtu response: body length %d != 2", len(body))
				return txOutcome{done: true, deliver: func() { cb(0, err) }}
			}
			serverMTU := int(binary.LittleEndian.Uint16(body))
			negotiated := clientMTU
			if serverMTU < negotiated {
				negotiated = serverMTU
			}
			e.link.SetMTU(negotiated)
			return txOutcome{done: true, deliver: func() { cb(negotiated, nil) }}
		},
		onATTError: func(code byte) txOutcome {
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(0, attErr) }}
		},
		onAbort: func(err error) { cb(0, err) },
	}

	w := newFrameBuilder(e.link.MTU())
	w.writeByte(opMtuReq)
	w.writeUint16(uint16(clientMTU))
	e.submit(desc, w.bytes())
}

// SubscribeNotifications registers fn to be called, with the value bytes
// only, whenever a Handle Value Notification arrives for handle. A later
// call for the same handle replaces fn. There is no unsubscribe: the
// listener lives until Close discards the table.
func (e *Engine) SubscribeNotifications(handle Handle, fn NotifyFunc) {
	e.nt.subscribe(handle, fn)
}

// submit claims the transaction slot for desc and sends pdu. If the slot is
// occupied, desc's implied callback is invoked synchronously with the
// "already pending" submission error (spec.md §4.6). If the claim succeeds
// but the link write fails, the request is aborted with an I/O error.
func (e *Engine) submit(desc *txDescriptor, pdu []byte) {
	if err := e.tx.Claim(desc); err != nil {
		if desc.onAbort != nil {
			desc.onAbort(err)
		}
		return
	}
	if err := e.link.Submit(pdu); err != nil {
		e.tx.Abort(ioError(err))
	}
}

// handleIncoming demultiplexes one PDU from the Link: Error Responses and
// the slot's expected response go to Transaction; Handle Value
// Notifications go to the notify table; anything else is surfaced on the
// error sink.
func (e *Engine) handleIncoming(pdu []byte) {
	if len(pdu) == 0 {
		e.surface(errInvalidPDU("empty PDU"))
		return
	}
	opcode, body := pdu[0], pdu[1:]

	switch opcode {
	case opError:
		e.handleErrorResponse(body)
	case opHandleNotify:
		e.handleNotification(body)
	case opHandleInd:
		e.surface(fmt.Errorf("att: unhandled handle value indication (confirmation not implemented)"))
	default:
		if _, expect, ok := e.tx.Expected(); ok && opcode == expect {
			if e.tx.DeliverResponse(body) {
				return
			}
		}
		if name, ok := OpcodeName(opcode); ok {
			e.surface(fmt.Errorf("att: unexpected %s", name))
		} else {
			e.surface(fmt.Errorf("att: unknown opcode 0x%02x", opcode))
		}
	}
}

func (e *Engine) handleErrorResponse(body []byte) {
	if len(body) != 4 {
		e.surface(errInvalidPDU("error response: body length %d != 4", len(body)))
		return
	}
	reqOpcode := body[0]
	handle := Handle(binary.LittleEndian.Uint16(body[1:3]))
	code := body[3]

	if e.tx.DeliverError(reqOpcode, code) {
		return
	}
	name, ok := OpcodeName(reqOpcode)
	if !ok {
		name = fmt.Sprintf("opcode 0x%02x", reqOpcode)
	}
	e.surface(fmt.Errorf("att: error response for %s we did not send (handle %s, code 0x%02x)", name, handle, code))
}

func (e *Engine) handleNotification(body []byte) {
	if len(body) < 2 {
		e.surface(errInvalidPDU("handle value notification: body length %d < 2", len(body)))
		return
	}
	handle := Handle(binary.LittleEndian.Uint16(body[:2]))
	value := body[2:]
	if !e.nt.dispatch(handle, value) {
		e.surface(fmt.Errorf("att: unexpected notification for handle %s", handle))
	}
}

func (e *Engine) handleLinkError(err error) {
	e.log.WithError(err).Warn("att: link error")
	e.tx.Abort(ioError(err))
}

func (e *Engine) surface(err error) {
	e.mu.Lock()
	cb := e.onErr
	e.mu.Unlock()
	if cb != nil {
		cb(err)
		return
	}
	e.log.WithError(err).Debug("att: unhandled protocol event")
}
