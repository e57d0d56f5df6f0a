package att

import "testing"

func TestNotifyTableDispatch(t *testing.T) {
	nt := newNotifyTable()
	var got []byte
	nt.subscribe(Handle(0x10), func(value []byte) { got = value })

	if ok := nt.dispatch(Handle(0x10), []byte{1, 2, 3}); !ok {
		t.Fatal("dispatch: expected a registered listener")
	}
	if string(got) != "\x01\x02\x03" {
		t.Errorf("dispatch: listener got %v", got)
	}
}

func TestNotifyTableDispatchUnregisteredHandle(t *testing.T) {
	nt := newNotifyTable()
	if ok := nt.dispatch(Handle(0x99), []byte{1}); ok {
		t.Error("dispatch: expected no listener for unregistered handle")
	}
}

func TestNotifyTableSubscribeReplaces(t *testing.T) {
	nt := newNotifyTable()
	var first, second bool
	nt.subscribe(Handle(0x10), func(value []byte) { first = true })
	nt.subscribe(Handle(0x10), func(value []byte) { second = true })

	nt.dispatch(Handle(0x10), nil)
	if first {
		t.Error("first listener should have been replaced")
	}
	if !second {
		t.Error("second listener should have fired")
	}
}

func TestNotifyTableClear(t *testing.T) {
	nt := newNotifyTable()
	nt.subscribe(Handle(0x10), func(value []byte) {})
	nt.clear()
	if ok := nt.dispatch(Handle(0x10), nil); ok {
		t.Error("dispatch after clear should find no listener")
	}
}

func TestNotifyTableReentrantSubscribeFromDispatch(t *testing.T) {
	nt := newNotifyTable()
	var secondFired bool
	nt.subscribe(Handle(0x10), func(value []byte) {
		nt.subscribe(Handle(0x20), func(value []byte) { secondFired = true })
	})

	nt.dispatch(Handle(0x10), nil)
	nt.dispatch(Handle(0x20), nil)
	if !secondFired {
		t.Error("listener should be able to subscribe a new handle from within dispatch")
	}
}
