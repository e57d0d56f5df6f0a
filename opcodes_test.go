package att

import "testing"

func TestOpcodeName(t *testing.T) {
	name, ok := OpcodeName(opReadReq)
	if !ok || name != "read request" {
		t.Errorf("OpcodeName(opReadReq) = %q, %v", name, ok)
	}
	if _, ok := OpcodeName(0xFF); ok {
		t.Error("OpcodeName(0xFF) should report unknown")
	}
}

func TestErrorName(t *testing.T) {
	name, ok := ErrorName(ecodeAttrNotFound)
	if !ok || name != "attribute not found" {
		t.Errorf("ErrorName(ecodeAttrNotFound) = %q, %v", name, ok)
	}
	if _, ok := ErrorName(0xFF); ok {
		t.Error("ErrorName(0xFF) should report unknown")
	}
}
