package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "formrelay"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	for _, endpoint := range []string{"127.0.0.1:4317", "http://127.0.0.1:4317"} {
		shutdown, err := Setup(context.Background(), Config{
			Endpoint:       endpoint,
			Insecure:       true,
			ServiceName:    "formrelay",
			ServiceVersion: "test",
		})
		require.NoError(t, err, endpoint)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = shutdown(ctx)
		cancel()
	}
}
