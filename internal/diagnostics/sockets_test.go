package diagnostics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Port 4444 is 0x115C; 9515 is 0x252B.
const tcpTable = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:C350 0100007F:115C 06 00000000:00000000 03:00000F9C 00000000     0        0 0 3 0000000000000000
   1: 0100007F:C351 0100007F:115C 06 00000000:00000000 03:00000F9C 00000000     0        0 0 3 0000000000000000
   2: 0100007F:C352 0100007F:115C 08 00000000:00000000 00:00000000 00000000  1000        0 4242 1 0000000000000000 20 4 0 10 -1
   3: 0100007F:C353 0100007F:115C 01 00000000:00000000 00:00000000 00000000  1000        0 4243 1 0000000000000000 20 4 0 10 -1
   4: 0100007F:C354 0100007F:252B 06 00000000:00000000 03:00000F9C 00000000     0        0 0 3 0000000000000000
   5: 00000000:115C 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 4244 1 0000000000000000 100 0 0 10 0
`

const tcp6Table = `  sl  local_address                         remote_address                        st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000000000000000000001000000:D431 00000000000000000000000001000000:115C 06 00000000:00000000 03:00001770 00000000     0        0 0 3 0000000000000000
`

func TestCountSockets(t *testing.T) {
	tests := []struct {
		name   string
		port   int
		states []TCPState
		want   int
	}{
		{"time wait and close wait to server", 4444, []TCPState{StateTimeWait, StateCloseWait}, 3},
		{"time wait only", 4444, []TCPState{StateTimeWait}, 2},
		{"any port", 0, []TCPState{StateTimeWait}, 3},
		{"established", 4444, []TCPState{StateEstablished}, 1},
		{"other port", 9515, []TCPState{StateTimeWait, StateCloseWait}, 1},
		{"no states", 4444, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountSockets(strings.NewReader(tcpTable), tt.port, tt.states)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountSockets_Malformed(t *testing.T) {
	_, err := CountSockets(strings.NewReader("header\n 0: 0100007F:C350 0100007F:115C ZZ\n"), 0, []TCPState{StateTimeWait})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad state")

	_, err = CountSockets(strings.NewReader("header\n 0: 0100007F:C350 0100007F 06\n"), 4444, []TCPState{StateTimeWait})
	assert.ErrorContains(t, err, "bad address")
}

func TestProcNetCounter_Count(t *testing.T) {
	dir := t.TempDir()
	tcp := filepath.Join(dir, "tcp")
	tcp6 := filepath.Join(dir, "tcp6")
	require.NoError(t, os.WriteFile(tcp, []byte(tcpTable), 0o600))
	require.NoError(t, os.WriteFile(tcp6, []byte(tcp6Table), 0o600))

	counter := NewDisconnectedCounter(4444)
	counter.Paths = []string{tcp, tcp6, filepath.Join(dir, "missing")}

	n, err := counter.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n, "three IPv4 sockets plus one IPv6 socket")
}

func TestProcNetCounter_NoTables(t *testing.T) {
	counter := &ProcNetCounter{Paths: []string{filepath.Join(t.TempDir(), "nope")}}
	_, err := counter.Count(context.Background())
	assert.ErrorContains(t, err, "no socket tables readable")
}

func TestProcNetCounter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDisconnectedCounter(0).Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTCPState_String(t *testing.T) {
	assert.Equal(t, "TIME_WAIT", StateTimeWait.String())
	assert.Equal(t, "CLOSE_WAIT", StateCloseWait.String())
	assert.Equal(t, "state(0A)", TCPState(0x0A).String())
}
