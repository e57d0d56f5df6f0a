package att

import "testing"

func TestResolveDialOptionsDefaults(t *testing.T) {
	o := ResolveDialOptions()
	if o.Security != SecurityLow {
		t.Errorf("default Security = %v, want SecurityLow", o.Security)
	}
	if o.MTU != DefaultMTU {
		t.Errorf("default MTU = %d, want %d", o.MTU, DefaultMTU)
	}
	if o.AddressType != AddressTypePublic {
		t.Errorf("default AddressType = %v, want AddressTypePublic", o.AddressType)
	}
}

func TestResolveDialOptionsApplied(t *testing.T) {
	o := ResolveDialOptions(
		WithAddress("AA:BB:CC:DD:EE:FF", AddressTypeRandom),
		WithSecurity(SecurityHigh),
		WithMTU(100),
	)
	if o.Address != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Address = %q", o.Address)
	}
	if o.AddressType != AddressTypeRandom {
		t.Errorf("AddressType = %v, want AddressTypeRandom", o.AddressType)
	}
	if o.Security != SecurityHigh {
		t.Errorf("Security = %v, want SecurityHigh", o.Security)
	}
	if o.MTU != 100 {
		t.Errorf("MTU = %d, want 100", o.MTU)
	}
}
