package linux

// Advertiser is the advertising-controller collaborator spec.md §6 scopes
// out of the ATT engine entirely: scanning, connecting, and advertisement
// parsing belong to HCI, not ATT, and this package does not implement them.
// Advertiser exists only so a caller on this platform has a named contract
// to satisfy (or fake in tests) when wiring a central's connection setup
// ahead of handing the resulting socket to Open.
type Advertiser interface {
	// Scan starts LE scanning, invoking cb once per advertising report seen
	// until the returned stop function is called.
	Scan(cb func(Advertisement)) (stop func(), err error)

	// Connect initiates an LE connection to addr/addrType and returns once
	// the link layer connection completes, without touching L2CAP or ATT.
	Connect(addr [6]byte, addrType uint8) error
}

// Advertisement is the subset of an HCI advertising report this package's
// callers need to decide whether to connect: address, address type, and
// raw AD structure bytes. Parsing those structures is a GAP/GATT concern,
// left to the caller.
type Advertisement struct {
	Addr     [6]byte
	AddrType uint8
	RSSI     int8
	Data     []byte
}
