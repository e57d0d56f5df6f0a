package centralpipe

import (
	"io"
	"net"

	"github.com/sirupsen/logrus"
)

// Listener is the "small TCP-style byte pipe" SPEC_FULL.md §12 recovers
// from original_source/src/central.cc/central.h: it accepts local TCP
// connections and bridges each one's bytes to/from a Pipe, so a process
// with no BLE awareness can treat a peripheral's handle pair as a plain
// socket. Every accepted TCP connection is bridged to the same Pipe at
// once: a later connection does not replace an earlier one, and
// notification bytes go to whichever connection's bridge reads them from
// the Pipe first.
type Listener struct {
	ln   net.Listener
	pipe *Pipe
	log  logrus.FieldLogger
}

// Listen starts accepting TCP connections on addr (e.g. "127.0.0.1:0") and
// bridges each to pipe. Call Serve to run it.
func Listen(addr string, pipe *Pipe, log logrus.FieldLogger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listener{ln: ln, pipe: pipe, log: log}, nil
}

// Addr returns the listener's bound address, useful when addr was
// "host:0" and the kernel picked a port.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until the listener is closed, bridging each
// one to the Pipe in both directions. It always returns the non-nil Accept
// error that ended the loop; after Close that is the closed-listener error.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return err
		}
		go l.bridge(conn)
	}
}

func (l *Listener) bridge(conn net.Conn) {
	defer conn.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(conn, l.pipe)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(l.pipe, conn)
		done <- struct{}{}
	}()
	<-done

	l.log.WithField("remote", conn.RemoteAddr()).Debug("centralpipe: connection closed")
}

// Close stops accepting new connections. Already-bridged connections run
// until their next I/O error.
func (l *Listener) Close() error {
	return l.ln.Close()
}
