//go:build linux

package att

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xc-ble/attc/linux"
)

// Dial opens an L2CAP socket to a peripheral's ATT channel on the local
// Bluetooth adapter and returns an Engine driving it. It is the Linux
// convenience path through the socket-opener collaborator of §6; on other
// platforms callers build a Link over their own transport and call
// NewEngine directly.
func Dial(opts ...DialOption) (*Engine, error) {
	return DialWithLogger(logrus.StandardLogger(), opts...)
}

// DialWithLogger is Dial with an explicit logger, threaded through to both
// the socket opener and the resulting Engine.
func DialWithLogger(log logrus.FieldLogger, opts ...DialOption) (*Engine, error) {
	o := ResolveDialOptions(opts...)

	dest, err := linux.ParseAddr(o.Address)
	if err != nil {
		return nil, errors.Wrap(err, "att: dial")
	}

	sockOpts := linux.Options{
		DestAddr:   dest,
		DestType:   addrTypeToLinux(o.AddressType),
		CID:        AttCID,
		Security:   securityToLinux(o.Security),
		InboundMTU: uint16(o.MTU),
	}

	sock, err := linux.Open(sockOpts, log)
	if err != nil {
		return nil, errors.Wrap(err, "att: dial")
	}

	link := NewLink(sock, sock.MTU(), log)
	return NewEngine(link, WithLogger(log)), nil
}

func addrTypeToLinux(t AddressType) uint8 {
	if t == AddressTypeRandom {
		return linux.AddrTypeRandom
	}
	return linux.AddrTypePublic
}

func securityToLinux(s SecurityLevel) linux.SecurityLevel {
	switch s {
	case SecurityMedium:
		return linux.SecurityMedium
	case SecurityHigh:
		return linux.SecurityHigh
	default:
		return linux.SecurityLow
	}
}
