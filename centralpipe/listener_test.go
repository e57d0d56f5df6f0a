package centralpipe

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xc-ble/attc"
)

func TestListenerBridgesNotificationsToTCP(t *testing.T) {
	eng := &fakeEngine{}
	pipe := New(eng, att.Handle(0x10), att.Handle(0x11))

	l, err := Listen("127.0.0.1:0", pipe, nil)
	require.NoError(t, err)
	defer l.Close()

	go l.Serve()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(20 * time.Millisecond)
	eng.notifyFn([]byte("from-peripheral"))

	buf := make([]byte, 32)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "from-peripheral", string(buf[:n]))
}

func TestListenerBridgesTCPWritesToPeripheral(t *testing.T) {
	eng := &fakeEngine{}
	pipe := New(eng, att.Handle(0x10), att.Handle(0x11))

	l, err := Listen("127.0.0.1:0", pipe, nil)
	require.NoError(t, err)
	defer l.Close()

	go l.Serve()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("to-peripheral"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(eng.writes) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []byte("to-peripheral"), eng.writes[0])
}
