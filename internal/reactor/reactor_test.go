package reactor

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/nullkv/internal/logging"
	"github.com/akashmaji946/nullkv/internal/store"
)

// startReactor binds to an ephemeral port and returns the address once the
// listener is up, along with a cancel func that shuts the reactor down.
func startReactor(t *testing.T) (addr string, cancel func()) {
	t.Helper()

	st := store.New()
	r := New("127.0.0.1:0", st, logging.New(io.Discard), nil)

	ready := make(chan string, 1)
	r.OnReady(func(a string) { ready <- a })

	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case a := <-ready:
		addr = a
	case <-time.After(2 * time.Second):
		t.Fatal("reactor did not become ready in time")
	}

	return addr, func() {
		cancelFn()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("reactor did not shut down in time")
		}
	}
}

func TestReactorRespondsToPing(t *testing.T) {
	addr, cancel := startReactor(t)
	defer cancel()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)
}

func TestReactorDispatchesPipelinedFramesInOrder(t *testing.T) {
	addr, cancel := startReactor(t)
	defer cancel()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	request := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\n1\r\n" + "*2\r\n$4\r\nINCR\r\n$1\r\nk\r\n"
	_, err = conn.Write([]byte(request))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ":2\r\n", line)
}

func TestReactorHandlesSequentialConnections(t *testing.T) {
	addr, cancel := startReactor(t)
	defer cancel()

	for i := 0; i < 3; i++ {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		require.NoError(t, err)

		_, err = conn.Write([]byte("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"))
		require.NoError(t, err)

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		reply := make([]byte, len("$2\r\nhi\r\n"))
		_, err = io.ReadFull(conn, reply)
		require.NoError(t, err)
		require.Equal(t, "$2\r\nhi\r\n", string(reply))

		conn.Close()
	}
}
