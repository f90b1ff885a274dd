package binary

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/arloliu/go-stage/transport"
	"github.com/stretchr/testify/require"
)

// newTestLink creates a Link backed by the local end of net.Pipe().
func newTestLink(t *testing.T, opts ...LinkOption) (*Link, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	cfg, err := NewLinkConfig(append([]LinkOption{WithReadTimeout(time.Second)}, opts...)...)
	require.NoError(t, err)

	link, err := NewLink(transport.NewNetPort(local), cfg)
	require.NoError(t, err)

	return link, remote
}

// readFrame reads one frame from r.
func readFrame(r io.Reader) ([]byte, error) {
	buf := make([]byte, FrameSize)
	_, err := io.ReadFull(r, buf)

	return buf, err
}
