package ascii

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/arloliu/go-stage/logger"
	"github.com/arloliu/go-stage/transport"
	"github.com/stretchr/testify/require"
)

// exchange is one scripted command/reply pair of a fake controller.
type exchange struct {
	command string
	reply   string
}

// newTestLink creates a Link backed by the local end of net.Pipe().
// Returns the link and the remote end for controller simulation.
func newTestLink(t *testing.T, opts ...LinkOption) (*Link, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	defaults := []LinkOption{
		WithReadTimeout(time.Second),
		WithPollInterval(0),
		WithLogger(logger.GetLogger()),
	}

	cfg, err := NewLinkConfig(append(defaults, opts...)...)
	require.NoError(t, err)

	link, err := NewLink(transport.NewNetPort(local), cfg)
	require.NoError(t, err)

	return link, remote
}

// newTestDevice creates device 1 on a pipe-backed link.
func newTestDevice(t *testing.T, opts ...LinkOption) (*Device, net.Conn) {
	t.Helper()

	link, remote := newTestLink(t, opts...)
	dev, err := NewDevice(link, 1)
	require.NoError(t, err)

	return dev, remote
}

// runController plays script on remote. The returned channel yields nil when
// every command matched and no further command arrived, or the first mismatch.
func runController(remote net.Conn, script []exchange) <-chan error {
	done := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(remote)

		for i, ex := range script {
			_ = remote.SetReadDeadline(time.Now().Add(2 * time.Second))
			line, err := reader.ReadString('\n')
			if err != nil {
				done <- fmt.Errorf("step %d: read command: %w", i, err)
				return
			}

			if line != ex.command {
				done <- fmt.Errorf("step %d: got command %q, want %q", i, line, ex.command)
				return
			}

			if ex.reply == "" {
				continue
			}

			if _, err := remote.Write([]byte(ex.reply)); err != nil {
				done <- fmt.Errorf("step %d: write reply: %w", i, err)
				return
			}
		}

		// Nothing else may be sent once the script is exhausted.
		_ = remote.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		line, err := reader.ReadString('\n')
		if err == nil || line != "" {
			done <- fmt.Errorf("unexpected extra command %q", line)
			return
		}
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			done <- fmt.Errorf("after script: %w", err)
			return
		}

		done <- nil
	}()

	return done
}

// waitController fails the test when the scripted controller reported an error.
func waitController(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("controller script did not finish")
	}
}
