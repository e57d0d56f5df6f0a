package att

import "sync"

// fakeLink is an in-memory Link used across this package's tests: Submit
// records the PDU instead of touching a real transport, and tests drive
// responses by calling deliver directly.
type fakeLink struct {
	mu             sync.Mutex
	mtu            int
	sent           [][]byte
	onRecv         func([]byte)
	onError        func(error)
	failNextSubmit error
}

func newFakeLink(mtu int) *fakeLink {
	return &fakeLink{mtu: mtu}
}

func (f *fakeLink) Submit(pdu []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextSubmit != nil {
		err := f.failNextSubmit
		f.failNextSubmit = nil
		return err
	}
	f.sent = append(f.sent, append([]byte(nil), pdu...))
	return nil
}

func (f *fakeLink) SetOnRecv(cb func(pdu []byte)) {
	f.mu.Lock()
	f.onRecv = cb
	f.mu.Unlock()
}

func (f *fakeLink) SetOnError(cb func(err error)) {
	f.mu.Lock()
	f.onError = cb
	f.mu.Unlock()
}

func (f *fakeLink) Close() error { return nil }

func (f *fakeLink) MTU() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mtu
}

func (f *fakeLink) SetMTU(mtu int) {
	f.mu.Lock()
	f.mtu = mtu
	f.mu.Unlock()
}

// deliver feeds an inbound PDU to whatever the engine/transaction under
// test installed via SetOnRecv.
func (f *fakeLink) deliver(pdu []byte) {
	f.mu.Lock()
	cb := f.onRecv
	f.mu.Unlock()
	if cb != nil {
		cb(pdu)
	}
}

func (f *fakeLink) lastSent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeLink) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
