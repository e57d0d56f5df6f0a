package att

import "encoding/binary"

// frameBuilder assembles an outgoing PDU, truncating the final value
// argument to whatever room is left under the link's negotiated MTU. This
// mirrors the teacher's l2capWriter (see l2cap_writer_test.go in the
// retrieval pack) but is deliberately simpler: a request PDU has at most
// one variable-length tail (the value/match-value argument), so there is
// no need for the teacher's per-record Chunk/Commit bookkeeping.
type frameBuilder struct {
	buf []byte
	mtu int
}

func newFrameBuilder(mtu int) *frameBuilder {
	return &frameBuilder{mtu: mtu}
}

func (w *frameBuilder) remaining() int { return w.mtu - len(w.buf) }

func (w *frameBuilder) writeByte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *frameBuilder) writeUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *frameBuilder) writeUUID(u UUID) {
	w.buf = append(w.buf, u.Bytes()...)
}

// writeValueTruncated appends min(len(v), remaining()) bytes of v. This is
// the silent-truncation policy spec.md §3 requires: a value argument that
// exceeds the remaining PDU budget is cut to fit, never rejected.
func (w *frameBuilder) writeValueTruncated(v []byte) {
	n := w.remaining()
	if n < 0 {
		n = 0
	}
	if n > len(v) {
		n = len(v)
	}
	w.buf = append(w.buf, v[:n]...)
}

func (w *frameBuilder) bytes() []byte { return w.buf }

// EncodeHandleOp builds [opcode][handle][value?], used by Read Request,
// Write Command, Write Request. value is truncated to fit mtu.
func EncodeHandleOp(opcode byte, handle Handle, value []byte, mtu int) []byte {
	w := newFrameBuilder(mtu)
	w.writeByte(opcode)
	w.writeUint16(uint16(handle))
	if value != nil {
		w.writeValueTruncated(value)
	}
	return w.bytes()
}

// EncodeRangeOp builds [opcode][start][end][uuid?][value?], used by the
// discovery procedures. uuid is omitted entirely when nil (Find
// Information); value is the Find By Type Value match-value payload and is
// truncated to fit mtu.
func EncodeRangeOp(opcode byte, start, end Handle, uuid *UUID, value []byte, mtu int) []byte {
	w := newFrameBuilder(mtu)
	w.writeByte(opcode)
	w.writeUint16(uint16(start))
	w.writeUint16(uint16(end))
	if uuid != nil {
		w.writeUUID(*uuid)
	}
	if value != nil {
		w.writeValueTruncated(value)
	}
	return w.bytes()
}

// ParseFindInfoResp parses the body of a Find Information Response: a
// format byte (1 = 16-bit UUIDs, 2 = 128-bit) followed by packed
// (handle, uuid) pairs of the implied width.
func ParseFindInfoResp(body []byte) ([]AttributeInfo, error) {
	if len(body) < 1 {
		return nil, errInvalidPDU("find information response: empty body")
	}
	var uuidLen int
	switch body[0] {
	case 0x01:
		uuidLen = 2
	case 0x02:
		uuidLen = 16
	default:
		return nil, errInvalidPDU("find information response: unknown format 0x%02x", body[0])
	}

	rec := body[1:]
	stride := 2 + uuidLen
	if len(rec)%stride != 0 {
		return nil, errInvalidPDU("find information response: body length %d not a multiple of %d", len(rec), stride)
	}

	out := make([]AttributeInfo, 0, len(rec)/stride)
	for len(rec) > 0 {
		h := Handle(binary.LittleEndian.Uint16(rec[:2]))
		u := UUID{b: append([]byte(nil), rec[2:stride]...)}
		out = append(out, AttributeInfo{Handle: h, UUID: u})
		rec = rec[stride:]
	}
	return out, nil
}

// ParseHandlesInfoList parses the body of a Find By Type Value Response:
// packed (found-handle, group-end-handle) pairs.
func ParseHandlesInfoList(body []byte) ([]HandlesInfo, error) {
	const stride = 4
	if len(body)%stride != 0 {
		return nil, errInvalidPDU("find by type value response: body length %d not a multiple of %d", len(body), stride)
	}
	out := make([]HandlesInfo, 0, len(body)/stride)
	for len(body) > 0 {
		out = append(out, HandlesInfo{
			Handle:         Handle(binary.LittleEndian.Uint16(body[0:2])),
			GroupEndHandle: Handle(binary.LittleEndian.Uint16(body[2:4])),
		})
		body = body[stride:]
	}
	return out, nil
}

// ParseAttrDataList parses the body of a Read By Type Response: a
// per-record length byte L (>= 2) followed by packed records of length L,
// each (handle, value of length L-2).
func ParseAttrDataList(body []byte) ([]AttributeData, error) {
	if len(body) < 1 {
		return nil, errInvalidPDU("read by type response: empty body")
	}
	l := int(body[0])
	if l < 2 {
		return nil, errInvalidPDU("read by type response: record length %d < 2", l)
	}
	if l-2 > maxAttributeValueLen {
		return nil, errInvalidPDU("read by type response: value length %d exceeds %d", l-2, maxAttributeValueLen)
	}
	rec := body[1:]
	if len(rec)%l != 0 {
		return nil, errInvalidPDU("read by type response: body length %d not a multiple of %d", len(rec), l)
	}

	out := make([]AttributeData, 0, len(rec)/l)
	for len(rec) > 0 {
		h := Handle(binary.LittleEndian.Uint16(rec[:2]))
		v := append([]byte(nil), rec[2:l]...)
		out = append(out, AttributeData{Handle: h, Value: v})
		rec = rec[l:]
	}
	return out, nil
}

// ParseGroupAttrDataList parses the body of a Read By Group Type Response:
// a per-record length byte L (>= 4) followed by packed records of length L,
// each (handle, group-end-handle, value of length L-4).
func ParseGroupAttrDataList(body []byte) ([]GroupAttributeData, error) {
	if len(body) < 1 {
		return nil, errInvalidPDU("read by group type response: empty body")
	}
	l := int(body[0])
	if l < 4 {
		return nil, errInvalidPDU("read by group type response: record length %d < 4", l)
	}
	if l-4 > maxAttributeValueLen {
		return nil, errInvalidPDU("read by group type response: value length %d exceeds %d", l-4, maxAttributeValueLen)
	}
	rec := body[1:]
	if len(rec)%l != 0 {
		return nil, errInvalidPDU("read by group type response: body length %d not a multiple of %d", len(rec), l)
	}

	out := make([]GroupAttributeData, 0, len(rec)/l)
	for len(rec) > 0 {
		out = append(out, GroupAttributeData{
			Handle:         Handle(binary.LittleEndian.Uint16(rec[0:2])),
			GroupEndHandle: Handle(binary.LittleEndian.Uint16(rec[2:4])),
			Value:          append([]byte(nil), rec[4:l]...),
		})
		rec = rec[l:]
	}
	return out, nil
}
