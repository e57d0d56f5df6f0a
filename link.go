package att

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMTU is the ATT_MTU every connection starts at before a successful
// MTU Exchange (Vol 3, Part F, 3.4.2).
const DefaultMTU = 23

// Link is the engine's sole collaborator: a single L2CAP channel fixed to
// the ATT CID (0x0004). It sends and receives exactly one ATT PDU per
// Submit/callback invocation -- L2CAP preserves datagram boundaries, so the
// engine never has to frame or reassemble.
type Link interface {
	// Submit sends exactly one PDU. It returns once the underlying
	// transport has accepted the write.
	Submit(pdu []byte) error

	// SetOnRecv installs the sole inbound callback, invoked at most once at
	// a time with one complete PDU per call.
	SetOnRecv(cb func(pdu []byte))

	// SetOnError installs the sole I/O-error callback (peer close, read or
	// write failure). No further PDUs are delivered after it fires.
	SetOnError(cb func(err error))

	// Close tears the channel down; subsequent Submits fail.
	Close() error

	// MTU returns the current negotiated ATT MTU.
	MTU() int

	// SetMTU updates the working ATT MTU after a successful MTU Exchange.
	SetMTU(mtu int)
}

// conn is the default Link, implemented over any datagram-preserving
// io.ReadWriteCloser -- typically the raw L2CAP socket linux.Open
// returns, or a fake in tests. Grounded on the teacher's l2cap.go: a single
// send mutex serializing writes, and a dedicated read-loop goroutine
// driving the one inbound callback.
type conn struct {
	rwc io.ReadWriteCloser
	log logrus.FieldLogger

	sendmu sync.Mutex

	mu      sync.Mutex
	mtu     int
	onRecv  func(pdu []byte)
	onError func(err error)
	closed  bool
}

// NewLink wraps rwc -- a connected, datagram-preserving channel already
// bound to the ATT CID -- as a Link with the given initial MTU (typically
// DefaultMTU, or a kernel-reported inbound MTU) and starts its read loop.
func NewLink(rwc io.ReadWriteCloser, initialMTU int, log logrus.FieldLogger) Link {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if initialMTU < DefaultMTU {
		initialMTU = DefaultMTU
	}
	c := &conn{rwc: rwc, mtu: initialMTU, log: log}
	go c.readLoop()
	return c
}

func (c *conn) Submit(pdu []byte) error {
	c.sendmu.Lock()
	defer c.sendmu.Unlock()
	_, err := c.rwc.Write(pdu)
	if err != nil {
		c.log.WithError(err).Warn("att: link write failed")
		c.reportError(err)
	}
	return err
}

func (c *conn) SetOnRecv(cb func(pdu []byte)) {
	c.mu.Lock()
	c.onRecv = cb
	c.mu.Unlock()
}

func (c *conn) SetOnError(cb func(err error)) {
	c.mu.Lock()
	c.onError = cb
	c.mu.Unlock()
}

func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.rwc.Close()
}

func (c *conn) MTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mtu
}

// SetMTU updates the negotiated MTU after a successful MTU Exchange. Unlike
// the rest of conn's state this is only ever touched from the engine's
// single-threaded PDU-handling path, but it still goes through the mutex
// since MTU() may be read concurrently by a submitting goroutine sizing a
// buffer.
func (c *conn) SetMTU(mtu int) {
	c.mu.Lock()
	c.mtu = mtu
	c.mu.Unlock()
}

func (c *conn) readLoop() {
	buf := make([]byte, 65535)
	for {
		n, err := c.rwc.Read(buf)
		if err != nil {
			c.log.WithError(err).Debug("att: link closed")
			c.reportError(err)
			return
		}
		if n == 0 {
			continue
		}
		pdu := make([]byte, n)
		copy(pdu, buf[:n])

		c.mu.Lock()
		cb := c.onRecv
		c.mu.Unlock()
		if cb != nil {
			cb(pdu)
		}
	}
}

func (c *conn) reportError(err error) {
	c.mu.Lock()
	cb := c.onError
	c.mu.Unlock()
	if cb != nil {
		cb(errors.Wrap(err, "att link"))
	}
}
