// File: internal/diagnostics/sockets.go
package diagnostics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// TCPState is a socket state as encoded in /proc/net/tcp.
type TCPState uint8

const (
	StateEstablished TCPState = 0x01
	StateTimeWait    TCPState = 0x06
	StateCloseWait   TCPState = 0x08
)

func (s TCPState) String() string {
	switch s {
	case StateEstablished:
		return "ESTABLISHED"
	case StateTimeWait:
		return "TIME_WAIT"
	case StateCloseWait:
		return "CLOSE_WAIT"
	default:
		return fmt.Sprintf("state(%02X)", uint8(s))
	}
}

// ConnectionCounter reports how many sockets are lingering after use.
type ConnectionCounter interface {
	Count(ctx context.Context) (int, error)
}

// ProcNetCounter counts sockets by reading the kernel socket tables.
type ProcNetCounter struct {
	// RemotePort restricts the count to connections to this port; 0 counts all.
	RemotePort int
	// States to count. Empty means TIME_WAIT and CLOSE_WAIT.
	States []TCPState
	// Paths of the tables to read. Empty means /proc/net/tcp and /proc/net/tcp6.
	Paths []string
}

var _ ConnectionCounter = (*ProcNetCounter)(nil)

// NewDisconnectedCounter counts TIME_WAIT and CLOSE_WAIT sockets towards port.
func NewDisconnectedCounter(port int) *ProcNetCounter {
	return &ProcNetCounter{RemotePort: port}
}

// Count sums matching sockets over all tables. Missing tables (tcp6 on a
// host without IPv6) are skipped; if none can be read an error is returned.
func (c *ProcNetCounter) Count(ctx context.Context) (int, error) {
	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"/proc/net/tcp", "/proc/net/tcp6"}
	}
	states := c.States
	if len(states) == 0 {
		states = []TCPState{StateTimeWait, StateCloseWait}
	}

	total, read := 0, 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := countFile(path, c.RemotePort, states)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += n
		read++
	}
	if read == 0 {
		return 0, fmt.Errorf("no socket tables readable in %v", paths)
	}
	return total, nil
}

func countFile(path string, port int, states []TCPState) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := CountSockets(f, port, states)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return n, nil
}

// CountSockets parses a /proc/net/tcp formatted table from r and counts the
// rows in one of states whose remote port matches port (0 matches any).
func CountSockets(r io.Reader, port int, states []TCPState) (int, error) {
	wanted := make(map[TCPState]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}

	scanner := bufio.NewScanner(r)
	count := 0
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		// sl local_address rem_address st ...
		if len(fields) < 4 {
			continue
		}
		state, err := strconv.ParseUint(fields[3], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("bad state %q: %w", fields[3], err)
		}
		if !wanted[TCPState(state)] {
			continue
		}
		if port != 0 {
			remotePort, err := portOf(fields[2])
			if err != nil {
				return 0, err
			}
			if remotePort != port {
				continue
			}
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// portOf extracts the port from an "ADDR:PORT" hex pair.
func portOf(hexAddr string) (int, error) {
	idx := strings.LastIndexByte(hexAddr, ':')
	if idx < 0 {
		return 0, fmt.Errorf("bad address %q", hexAddr)
	}
	p, err := strconv.ParseUint(hexAddr[idx+1:], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad port in %q: %w", hexAddr, err)
	}
	return int(p), nil
}
