// Package linux provides the Bluetooth socket-opener collaborator spec.md
// §6 treats as external to the ATT engine: the address-family plumbing
// needed to open an L2CAP socket on a local adapter and connect it to a
// peer. None of the ATT protocol logic lives here.
//
// It is a from-scratch rewrite, on golang.org/x/sys/unix, of the approach
// the teacher took in linux/internal/socket/socket.go with the bare
// syscall package: Linux has no AF_BLUETOOTH sockaddr type in the standard
// library (or in x/sys/unix), so the raw sockaddr_l2 layout is still
// hand-rolled. socket(2), read(2), write(2) and close(2) go through
// x/sys/unix's wrappers; bind(2), connect(2), setsockopt(2) and
// getsockopt(2) take the hand-rolled structs and are issued as raw
// unix.Syscall/unix.Syscall6 calls.
package linux

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Bluetooth address family and protocol constants (bluetooth.h / l2cap.h).
// Not exposed by golang.org/x/sys/unix.
const (
	afBluetooth  = 31
	btProtoL2CAP = 0
	solBluetooth = 274
)

// LE address types, as used in sockaddr_l2's bdaddr_type field.
const (
	AddrTypePublic = 0x00
	AddrTypeRandom = 0x01
)

// SecurityLevel mirrors BT_SECURITY_* socket option values.
type SecurityLevel int

const (
	SecurityLow SecurityLevel = 1 + iota
	SecurityMedium
	SecurityHigh
)

// Options is the socket-opener's options record: source/destination
// address, address type, security level, target CID, and a fallback
// inbound MTU. CID 0x0004 is ATT's fixed channel. PSM and OutboundMTU are
// carried but not applied by Open, and InboundMTU is not sent to the
// kernel: Open reports it as the MTU only when reading back the kernel's
// inbound MTU fails.
type Options struct {
	SourceAddr  [6]byte
	DestAddr    [6]byte
	DestType    uint8
	CID         uint16
	PSM         uint16
	Security    SecurityLevel
	InboundMTU  uint16
	OutboundMTU uint16
}

// sockaddrL2 is the kernel's struct sockaddr_l2 (bluetooth/l2cap.h):
// family, psm, bdaddr, cid, bdaddr_type. Field order and size must match
// exactly for the raw connect(2)/bind(2) calls below.
type sockaddrL2 struct {
	family    uint16
	psm       uint16
	bdaddr    [6]byte
	cid       uint16
	bdaddrTyp uint8
	_         [3]byte // struct padding to a 4-byte boundary
}

// ParseAddr parses a colon-separated hex Bluetooth device address, e.g.
// "AA:BB:CC:DD:EE:FF", into the little-endian 6-byte form the kernel wants.
func ParseAddr(s string) ([6]byte, error) {
	var out [6]byte
	var parts [6]uint64
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&parts[5], &parts[4], &parts[3], &parts[2], &parts[1], &parts[0])
	if err != nil || n != 6 {
		return out, fmt.Errorf("linux: invalid bluetooth address %q", s)
	}
	for i, p := range parts {
		out[i] = byte(p)
	}
	return out, nil
}

// Connection is an open L2CAP channel: a raw socket file descriptor wrapped
// to present io.ReadWriteCloser.
type Connection struct {
	fd  int
	mtu uint16
}

// Open connects an L2CAP socket to opts.DestAddr/opts.CID. On success it
// reports the kernel-negotiated inbound MTU via Connection.MTU, matching
// the Link contract's "returns once ... the negotiated inbound MTU ...
// have been read back".
func Open(opts Options, log logrus.FieldLogger) (*Connection, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.CID == 0 {
		opts.CID = 4 // ATT's fixed CID.
	}
	if opts.InboundMTU == 0 {
		opts.InboundMTU = 23
	}

	fd, err := unix.Socket(afBluetooth, unix.SOCK_SEQPACKET, btProtoL2CAP)
	if err != nil {
		return nil, fmt.Errorf("linux: socket: %w", err)
	}

	if err := setSockoptSecurity(fd, opts.Security); err != nil {
		unix.Close(fd)
		return nil, err
	}

	local := sockaddrL2{family: afBluetooth, bdaddr: opts.SourceAddr, cid: opts.CID}
	if err := bindRaw(fd, &local); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("linux: bind: %w", err)
	}

	remote := sockaddrL2{family: afBluetooth, bdaddr: opts.DestAddr, cid: opts.CID, bdaddrTyp: opts.DestType}
	if err := connectRaw(fd, &remote); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("linux: connect: %w", err)
	}

	mtu := negotiatedMTU(fd, opts.InboundMTU)
	log.WithFields(logrus.Fields{"fd": fd, "mtu": mtu}).Debug("linux: l2cap socket connected")
	return &Connection{fd: fd, mtu: mtu}, nil
}

func (c *Connection) Read(p []byte) (int, error)  { return unix.Read(c.fd, p) }
func (c *Connection) Write(p []byte) (int, error) { return unix.Write(c.fd, p) }
func (c *Connection) Close() error                { return unix.Close(c.fd) }

// MTU returns the kernel-negotiated inbound MTU read back at connect time.
func (c *Connection) MTU() int { return int(c.mtu) }

func setSockoptSecurity(fd int, level SecurityLevel) error {
	if level == 0 {
		return nil
	}
	// struct bt_security { uint8_t level; uint8_t key_size; }
	opt := [2]byte{byte(level), 0}
	_, _, errno := unix.Syscall6(unix.SYS_SETSOCKOPT, uintptr(fd), uintptr(solBluetooth), 4, /* BT_SECURITY */
		uintptr(unsafe.Pointer(&opt[0])), uintptr(len(opt)), 0)
	if errno != 0 {
		return fmt.Errorf("linux: setsockopt(BT_SECURITY): %w", errno)
	}
	return nil
}

func bindRaw(fd int, sa *sockaddrL2) error {
	_, _, errno := unix.Syscall(unix.SYS_BIND, uintptr(fd), uintptr(unsafe.Pointer(sa)), unsafe.Sizeof(*sa))
	if errno != 0 {
		return errno
	}
	return nil
}

func connectRaw(fd int, sa *sockaddrL2) error {
	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd), uintptr(unsafe.Pointer(sa)), unsafe.Sizeof(*sa))
	if errno != 0 {
		return errno
	}
	return nil
}

// negotiatedMTU reads back the kernel's L2CAP_OPTIONS sockopt to discover
// the actual inbound MTU in effect; if the kernel call fails (e.g. running
// against a mock during tests) it falls back to the requested value.
func negotiatedMTU(fd int, requested uint16) uint16 {
	// struct l2cap_options { uint16_t omtu; uint16_t imtu; uint16_t flush_to; uint8_t mode; uint8_t fcs; uint8_t max_tx; uint16_t txwin_size; }
	var opt [12]byte
	size := uint32(len(opt))
	_, _, errno := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(fd), 6 /* SOL_L2CAP */, 1, /* L2CAP_OPTIONS */
		uintptr(unsafe.Pointer(&opt[0])), uintptr(unsafe.Pointer(&size)), 0)
	if errno != 0 {
		return requested
	}
	return binary.LittleEndian.Uint16(opt[2:4])
}
