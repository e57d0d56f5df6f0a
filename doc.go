// Package att implements the client side of the Bluetooth Low Energy
// Attribute Protocol (ATT).
//
// It drives the request/response state machine against a single L2CAP
// channel (fixed CID 0x0004): it encodes and decodes ATT PDUs, enforces the
// one-outstanding-request rule, runs the discovery procedures (Find
// Information, Find By Type Value and Read By Group Type over multiple
// rounds, Read By Type as a single round),
// and dispatches unsolicited Handle Value Notifications to per-handle
// listeners.
//
// GATT-layer concepts (services, characteristics, descriptors, CCCD
// bookkeeping) are not part of this package; callers address attributes by
// raw handle and UUID.
package att
