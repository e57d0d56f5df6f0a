package att

import "sync"

// txOutcome is how a txDescriptor's response/error handler tells Transaction
// what to do next: either the procedure is done (and deliver, if set, must
// run after the slot is cleared) or it continues with next re-submitted on
// the same, still-occupied slot.
type txOutcome struct {
	done    bool
	next    []byte
	deliver func()
}

// txDescriptor is the slot's occupant: everything Transaction needs to
// route an incoming PDU back to the submitter, without knowing anything
// about the payload types a particular operation produces.
type txDescriptor struct {
	reqOpcode    byte
	expectOpcode byte

	// onResponse handles a PDU whose opcode is expectOpcode. body excludes
	// the opcode byte.
	onResponse func(body []byte) txOutcome

	// onATTError handles an Error Response whose embedded request opcode
	// equals reqOpcode. Per spec.md §4.3 this always terminates the
	// procedure (done is always true in practice), but the shape is the
	// same as onResponse for symmetry.
	onATTError func(code byte) txOutcome

	// onAbort is invoked at most once, with the link/engine error, if the
	// request is abandoned before a response arrives (I/O error or engine
	// Close).
	onAbort func(err error)
}

// Transaction owns the single-slot "current request". At most one
// txDescriptor occupies the slot at a time; Claim rejects a second
// submission synchronously rather than queueing it.
type Transaction struct {
	link Link

	mu   sync.Mutex
	slot *txDescriptor
}

// NewTransaction returns a Transaction that resubmits multi-round
// continuations on link.
func NewTransaction(link Link) *Transaction {
	return &Transaction{link: link}
}

// Claim installs desc as the sole outstanding request. It fails with an
// "already pending" error, synchronously, if the slot is occupied; the slot
// is never silently overwritten.
func (t *Transaction) Claim(desc *txDescriptor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.slot != nil {
		return pendingError(desc.reqOpcode)
	}
	t.slot = desc
	return nil
}

// Expected reports the request/response opcode pair of the current
// occupant, if any. The engine's incoming-PDU demultiplexer uses this to
// decide whether a PDU belongs to the outstanding request before calling
// DeliverResponse or DeliverError.
func (t *Transaction) Expected() (reqOpcode, expectOpcode byte, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.slot == nil {
		return 0, 0, false
	}
	return t.slot.reqOpcode, t.slot.expectOpcode, true
}

// DeliverResponse routes a successful response PDU (opcode already
// confirmed by the caller to equal the slot's expected opcode) to the
// occupant. It reports false if the slot was empty, in which case the
// caller should treat the PDU as an out-of-band protocol violation.
func (t *Transaction) DeliverResponse(body []byte) bool {
	desc := t.peek()
	if desc == nil {
		return false
	}

	outcome := desc.onResponse(body)
	t.settle(desc, outcome)
	return true
}

// DeliverError routes an Error Response whose embedded request opcode is
// reqOpcode. It reports false -- leaving the slot untouched -- if the slot
// is empty or its request opcode does not match, per the defensive "error
// matching rule" in spec.md §4.3: such a PDU is surfaced out-of-band
// instead.
func (t *Transaction) DeliverError(reqOpcode byte, code byte) bool {
	desc := t.peek()
	if desc == nil || desc.reqOpcode != reqOpcode {
		return false
	}

	outcome := desc.onATTError(code)
	t.settle(desc, outcome)
	return true
}

// Abort clears the slot (if occupied) and invokes the occupant's onAbort
// exactly once. Used for link I/O errors and engine shutdown.
func (t *Transaction) Abort(err error) {
	t.mu.Lock()
	desc := t.slot
	t.slot = nil
	t.mu.Unlock()

	if desc != nil && desc.onAbort != nil {
		desc.onAbort(err)
	}
}

// Occupied reports whether a request is currently outstanding.
func (t *Transaction) Occupied() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slot != nil
}

func (t *Transaction) peek() *txDescriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slot
}

// settle applies outcome for desc: either the procedure terminates (the
// slot is cleared before outcome.deliver runs -- satisfying the invariant
// that a callback may safely submit a fresh request by re-entering the
// engine) or it resubmits the next round's PDU on the still-occupied slot.
func (t *Transaction) settle(desc *txDescriptor, outcome txOutcome) {
	if !outcome.done {
		if err := t.link.Submit(outcome.next); err != nil {
			// A Link that reports failed writes through its own error
			// callback (the default conn does, synchronously, from within
			// Submit) will have already routed this same failure through
			// Abort by the time Submit returns. Abort here too rather than
			// calling desc.onAbort directly -- Abort only fires onAbort for
			// a slot it still finds occupied, so whichever path gets there
			// first is the only one the occupant observes.
			t.Abort(ioError(err))
		}
		return
	}

	t.clear(desc)
	if outcome.deliver != nil {
		outcome.deliver()
	}
}

func (t *Transaction) clear(desc *txDescriptor) {
	t.mu.Lock()
	if t.slot == desc {
		t.slot = nil
	}
	t.mu.Unlock()
}
