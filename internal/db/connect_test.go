package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", PoolOptions{AppName: "komisi-test"})
	require.ErrorContains(t, err, "db: parse config")
}
