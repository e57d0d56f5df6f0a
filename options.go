package att

// AddressType distinguishes a public from a random LE device address.
type AddressType int

const (
	AddressTypePublic AddressType = iota
	AddressTypeRandom
)

// SecurityLevel mirrors the L2CAP socket option of the same name (§6):
// LOW requires no link-layer security, MEDIUM requires encryption, HIGH
// requires authenticated encryption.
type SecurityLevel int

const (
	SecurityLow SecurityLevel = iota
	SecurityMedium
	SecurityHigh
)

// AttCID is the fixed L2CAP channel ID reserved for ATT.
const AttCID = 0x0004

// AttPSM is the L2CAP Protocol/Service Multiplexer historically used for
// ATT over BR/EDR; LE connections address ATT purely by AttCID.
const AttPSM = 31

// DialOptions configures the socket-opener collaborator of §6: address
// family plumbing this package treats as an external dependency, not ATT
// semantics. The engine itself only ever consumes the resulting Link.
type DialOptions struct {
	// Address is the peer's Bluetooth device address, e.g.
	// "AA:BB:CC:DD:EE:FF".
	Address string
	// AddressType is the peer's LE address type.
	AddressType AddressType
	// Security is the minimum security level to request on the socket.
	Security SecurityLevel
	// MTU is the fallback inbound MTU handed to the socket opener. It is
	// not sent to the kernel; it seeds Link.MTU() only when the kernel's
	// inbound MTU cannot be read back, until a successful MTU Exchange
	// replaces it.
	MTU int
}

// DialOption mutates a DialOptions record. The functional-options shape
// follows the teacher's device Option pattern (option_linux.go).
type DialOption func(*DialOptions)

// WithAddress sets the peer address and its LE address type.
func WithAddress(addr string, t AddressType) DialOption {
	return func(o *DialOptions) { o.Address = addr; o.AddressType = t }
}

// WithSecurity sets the minimum security level to request.
func WithSecurity(level SecurityLevel) DialOption {
	return func(o *DialOptions) { o.Security = level }
}

// WithMTU sets the fallback inbound MTU (see DialOptions.MTU).
func WithMTU(mtu int) DialOption {
	return func(o *DialOptions) { o.MTU = mtu }
}

// defaultDialOptions matches spec.md §6's stated environment defaults:
// LOW security, LE public address, default ATT MTU.
func defaultDialOptions() DialOptions {
	return DialOptions{
		AddressType: AddressTypePublic,
		Security:    SecurityLow,
		MTU:         DefaultMTU,
	}
}

// ResolveDialOptions applies opts over the package defaults. Exported so
// platform-specific Dial implementations (see dial_linux.go) can build the
// socket-opener's options record without duplicating the defaulting logic.
func ResolveDialOptions(opts ...DialOption) DialOptions {
	o := defaultDialOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
