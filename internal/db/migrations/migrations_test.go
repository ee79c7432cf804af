package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPGXURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@localhost:5432/komisi", pgxURL("postgres://u:p@localhost:5432/komisi"))
	require.Equal(t, "pgx5://localhost/komisi", pgxURL("postgresql://localhost/komisi"))
	require.Equal(t, "pgx5://already", pgxURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	up, err := fs.Glob(files, "*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(files, "*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, up)
	require.Len(t, down, len(up))
}
