package testnats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "nats:2.10-alpine"

// Server is a throwaway NATS broker owned by one test.
type Server struct {
	URL string
}

// Start runs a broker for the calling test and terminates it when the test
// finishes. In short mode the test is skipped.
func Start(t *testing.T) *Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping NATS container test in short mode")
	}

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate nats container: %v", err)
		}
	})

	endpoint, err := ctr.PortEndpoint(ctx, "4222/tcp", "nats")
	require.NoError(t, err)

	return &Server{URL: endpoint}
}

// Subscribe connects a client and opens a synchronous subscription, flushed
// so that messages published right after the call are not missed.
func (s *Server) Subscribe(t *testing.T, subject string) *nats.Subscription {
	t.Helper()

	conn, err := nats.Connect(s.URL)
	require.NoError(t, err, "connect %s", s.URL)
	t.Cleanup(conn.Close)

	sub, err := conn.SubscribeSync(subject)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())
	return sub
}
