// Package centralpipe implements the byte-stream abstraction described in
// SPEC_FULL.md §12: a io.ReadWriter-shaped pipe over a pair of
// already-discovered ATT handles, one written to with Write Command, one
// subscribed to for Handle Value Notifications. It is grounded on
// original_source/src/central.cc's central_write/on_notification pairing,
// which drives a byte stream over GATT the same way once characteristic
// handles are known -- this package stops at the ATT layer, taking the
// handles as given rather than discovering them via GATT.
package centralpipe

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/xc-ble/attc"
)

// Engine is the subset of *att.Engine a Pipe needs: just the two
// handle-addressed operations it's built from. Matching an interface
// instead of the concrete type keeps this package testable against a fake.
type Engine interface {
	WriteCommand(handle att.Handle, value []byte, cb att.SentFunc)
	SubscribeNotifications(handle att.Handle, fn att.NotifyFunc)
}

// Pipe presents a byte-stream view over a peer's pair of ATT handles: bytes
// written to it leave as Write Commands to the write handle, and bytes
// arriving as notifications on the notify handle queue up for Read. It
// implements io.ReadWriteCloser.
type Pipe struct {
	eng       Engine
	writeHdl  att.Handle
	notifyHdl att.Handle

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
	err    error
}

// New builds a Pipe writing to writeHandle and reading notifications from
// notifyHandle. It subscribes to notifyHandle immediately; a notifyHandle
// already subscribed elsewhere will have its listener replaced.
func New(eng Engine, writeHandle, notifyHandle att.Handle) *Pipe {
	p := &Pipe{eng: eng, writeHdl: writeHandle, notifyHdl: notifyHandle}
	p.cond = sync.NewCond(&p.mu)
	eng.SubscribeNotifications(notifyHandle, p.onNotify)
	return p
}

func (p *Pipe) onNotify(value []byte) {
	p.mu.Lock()
	if !p.closed {
		p.buf = append(p.buf, value...)
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

// Read blocks until at least one notification byte is available or the
// pipe is closed. It never blocks past a closed pipe with buffered data
// still to deliver; once a closed pipe's buffer is drained it returns
// io.EOF. A failed Write is reported by Write only: it neither wakes nor
// fails a pending Read.
func (p *Pipe) Read(out []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.buf) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.buf) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, io.EOF
	}
	n := copy(out, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

// Write submits data as a single Write Command. Callers wanting MTU-sized
// chunking should split data themselves -- Write Command silently truncates
// to the link MTU (spec.md §4.1), so a write larger than the MTU loses its
// tail rather than erroring.
func (p *Pipe) Write(data []byte) (int, error) {
	done := make(chan error, 1)
	p.eng.WriteCommand(p.writeHdl, data, func(err error) { done <- err })
	if err := <-done; err != nil {
		return 0, errors.Wrap(err, "centralpipe: write")
	}
	return len(data), nil
}

// Close unblocks any pending Read with io.EOF. It does not touch the
// underlying engine or link; the caller owns their lifetime.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	return nil
}
