package att

// Discovery drives the four ATT discovery procedures: three multi-round,
// plus Read By Type, which this engine runs as a single round. It owns no
// concurrency primitives of its own: each procedure installs a txDescriptor
// whose onResponse/onATTError closures are invoked synchronously from
// Transaction's completion path (DeliverResponse/DeliverError), exactly as
// spec.md §4.4 describes. The closures below are that invocation.

// FindInformationFunc receives the accumulated (handle, UUID) pairs of a
// Find Information procedure, or a non-nil err on failure.
type FindInformationFunc func(result []AttributeInfo, err error)

// FindInformation discovers the mapping of attribute handles to types over
// [start, end], reissuing the request with an advanced start handle until
// the peer returns ATTRIBUTE_NOT_FOUND or the accumulated list reaches end.
func (e *Engine) FindInformation(start, end Handle, cb FindInformationFunc) {
	var acc []AttributeInfo

	var desc *txDescriptor
	reissue := func(next Handle) []byte {
		return EncodeRangeOp(opFindInfoReq, next, end, nil, nil, e.link.MTU())
	}

	desc = &txDescriptor{
		reqOpcode:    opFindInfoReq,
		expectOpcode: opFindInfoResp,
		onResponse: func(body []byte) txOutcome {
			recs, err := ParseFindInfoResp(body)
			if err != nil {
				return txOutcome{done: true, deliver: func() { cb(nil, err) }}
			}
			acc = append(acc, recs...)
			if len(recs) == 0 || acc[len(acc)-1].Handle >= end {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			next := acc[len(acc)-1].Handle + 1
			return txOutcome{done: false, next: reissue(next)}
		},
		onATTError: func(code byte) txOutcome {
			if code == ecodeAttrNotFound {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(nil, attErr) }}
		},
		onAbort: func(err error) { cb(nil, err) },
	}

	e.submit(desc, EncodeRangeOp(opFindInfoReq, start, end, nil, nil, e.link.MTU()))
}

// FindByTypeValueFunc receives the accumulated (found-handle,
// group-end-handle) pairs of a Find By Type Value procedure.
type FindByTypeValueFunc func(result []HandlesInfo, err error)

// FindByTypeValue finds attributes over [start, end] whose type is typeUUID
// and whose value equals value, reissuing with an advanced start handle
// until ATTRIBUTE_NOT_FOUND or the list reaches end. value is carried
// verbatim across rounds, truncated to fit the link MTU.
func (e *Engine) FindByTypeValue(start, end Handle, typeUUID UUID, value []byte, cb FindByTypeValueFunc) {
	var acc []HandlesInfo

	buildReq := func(from Handle) []byte {
		w := newFrameBuilder(e.link.MTU())
		w.writeByte(opFindByTypeReq)
		w.writeUint16(uint16(from))
		w.writeUint16(uint16(end))
		w.writeUUID(typeUUID)
		w.writeValueTruncated(value)
		return w.bytes()
	}

	var desc *txDescriptor
	desc = &txDescriptor{
		reqOpcode:    opFindByTypeReq,
		expectOpcode: opFindByTypeResp,
		onResponse: func(body []byte) txOutcome {
			recs, err := ParseHandlesInfoList(body)
			if err != nil {
				return txOutcome{done: true, deliver: func() { cb(nil, err) }}
			}
			acc = append(acc, recs...)
			if len(recs) == 0 || acc[len(acc)-1].Handle >= end {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			next := acc[len(acc)-1].Handle + 1
			return txOutcome{done: false, next: buildReq(next)}
		},
		onATTError: func(code byte) txOutcome {
			if code == ecodeAttrNotFound {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(nil, attErr) }}
		},
		onAbort: func(err error) { cb(nil, err) },
	}

	e.submit(desc, buildReq(start))
}

// ReadByTypeFunc receives the attribute-data records of a Read By Type
// request.
type ReadByTypeFunc func(result []AttributeData, err error)

// ReadByType reads the values of attributes over [start, end] whose type is
// typeUUID. This engine narrows the procedure to a single round: the
// response is parsed and delivered immediately, with no automatic
// continuation even if more matching attributes remain beyond what fit in
// one response (spec.md §4.4, §9 Open Question 1).
func (e *Engine) ReadByType(start, end Handle, typeUUID UUID, cb ReadByTypeFunc) {
	desc := &txDescriptor{
		reqOpcode:    opReadByTypeReq,
		expectOpcode: opReadByTypeResp,
		onResponse: func(body []byte) txOutcome {
			recs, err := ParseAttrDataList(body)
			if err != nil {
				return txOutcome{done: true, deliver: func() { cb(nil, err) }}
			}
			return txOutcome{done: true, deliver: func() { cb(recs, nil) }}
		},
		onATTError: func(code byte) txOutcome {
			if code == ecodeAttrNotFound {
				return txOutcome{done: true, deliver: func() { cb(nil, nil) }}
			}
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(nil, attErr) }}
		},
		onAbort: func(err error) { cb(nil, err) },
	}

	pdu := EncodeRangeOp(opReadByTypeReq, start, end, &typeUUID, nil, e.link.MTU())
	e.submit(desc, pdu)
}

// ReadByGroupTypeFunc receives the accumulated group-attribute-data records
// of a Read By Group Type procedure.
type ReadByGroupTypeFunc func(result []GroupAttributeData, err error)

// ReadByGroupType discovers grouping attributes (e.g. primary services)
// over [start, end] of type typeUUID, reissuing with an advanced start
// handle until ATTRIBUTE_NOT_FOUND or the list reaches end.
func (e *Engine) ReadByGroupType(start, end Handle, typeUUID UUID, cb ReadByGroupTypeFunc) {
	var acc []GroupAttributeData

	reissue := func(next Handle) []byte {
		return EncodeRangeOp(opReadByGroupReq, next, end, &typeUUID, nil, e.link.MTU())
	}

	var desc *txDescriptor
	desc = &txDescriptor{
		reqOpcode:    opReadByGroupReq,
		expectOpcode: opReadByGroupResp,
		onResponse: func(body []byte) txOutcome {
			recs, err := ParseGroupAttrDataList(body)
			if err != nil {
				return txOutcome{done: true, deliver: func() { cb(nil, err) }}
			}
			acc = append(acc, recs...)
			if len(recs) == 0 || acc[len(acc)-1].Handle >= end {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			next := acc[len(acc)-1].Handle + 1
			return txOutcome{done: false, next: reissue(next)}
		},
		onATTError: func(code byte) txOutcome {
			if code == ecodeAttrNotFound {
				result := acc
				return txOutcome{done: true, deliver: func() { cb(result, nil) }}
			}
			attErr := newATTError(code)
			return txOutcome{done: true, deliver: func() { cb(nil, attErr) }}
		},
		onAbort: func(err error) { cb(nil, err) },
	}

	e.submit(desc, reissue(start))
}
