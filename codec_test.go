package att

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHandleOp(t *testing.T) {
	got := EncodeHandleOp(opReadReq, Handle(0x0012), nil, 23)
	want := []byte{opReadReq, 0x12, 0x00}
	assert.Equal(t, want, got)
}

func TestEncodeHandleOpTruncatesValue(t *testing.T) {
	value := bytes.Repeat([]byte{0xAB}, 40)
	got := EncodeHandleOp(opWriteCmd, Handle(0x0001), value, 10)
	require.Len(t, got, 10)
	assert.Equal(t, []byte{opWriteCmd, 0x01, 0x00}, got[:3])
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 7), got[3:])
}

func TestEncodeRangeOpWithUUID(t *testing.T) {
	u := UUID16(0x2800)
	got := EncodeRangeOp(opReadByGroupReq, Handle(0x0001), Handle(0xFFFF), &u, nil, 23)
	want := []byte{opReadByGroupReq, 0x01, 0x00, 0xFF, 0xFF, 0x00, 0x28}
	assert.Equal(t, want, got)
}

func TestParseFindInfoResp16Bit(t *testing.T) {
	body := []byte{0x01, 0x01, 0x00, 0x00, 0x28, 0x02, 0x00, 0x03, 0x28}
	got, err := ParseFindInfoResp(body)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Handle(1), got[0].Handle)
	assert.True(t, got[0].UUID.Equal(UUID16(0x2800)))
	assert.Equal(t, Handle(2), got[1].Handle)
	assert.True(t, got[1].UUID.Equal(UUID16(0x2803)))
}

func TestParseFindInfoRespUnknownFormat(t *testing.T) {
	_, err := ParseFindInfoResp([]byte{0x09, 0x00})
	assert.Error(t, err)
}

func TestParseFindInfoRespMisaligned(t *testing.T) {
	_, err := ParseFindInfoResp([]byte{0x01, 0x01, 0x00, 0x00})
	assert.Error(t, err)
}

func TestParseHandlesInfoList(t *testing.T) {
	body := []byte{0x01, 0x00, 0x05, 0x00, 0x06, 0x00, 0x0A, 0x00}
	got, err := ParseHandlesInfoList(body)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, HandlesInfo{Handle: 1, GroupEndHandle: 5}, got[0])
	assert.Equal(t, HandlesInfo{Handle: 6, GroupEndHandle: 10}, got[1])
}

func TestParseAttrDataList(t *testing.T) {
	body := []byte{4, 0x01, 0x00, 0xAA, 0xBB, 0x02, 0x00, 0xCC, 0xDD}
	got, err := ParseAttrDataList(body)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Handle(1), got[0].Handle)
	assert.Equal(t, []byte{0xAA, 0xBB}, got[0].Value)
	assert.Equal(t, Handle(2), got[1].Handle)
	assert.Equal(t, []byte{0xCC, 0xDD}, got[1].Value)
}

func TestParseAttrDataListRejectsShortRecordLength(t *testing.T) {
	_, err := ParseAttrDataList([]byte{1, 0x01, 0x00})
	assert.Error(t, err)
}

func TestParseGroupAttrDataList(t *testing.T) {
	body := []byte{6, 0x01, 0x00, 0x05, 0x00, 0xAA, 0xBB}
	got, err := ParseGroupAttrDataList(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Handle(1), got[0].Handle)
	assert.Equal(t, Handle(5), got[0].GroupEndHandle)
	assert.Equal(t, []byte{0xAA, 0xBB}, got[0].Value)
}
