package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/Totarae/linkgate/internal/storage"
	"github.com/Totarae/linkgate/internal/storage/sqlite"
	"github.com/Totarae/linkgate/internal/storage/storetest"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := sqlite.Open(filepath.Join(t.TempDir(), "links.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.db")

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpen_ReportsPragmaErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "links.db")
	_, err := sqlite.Open(path)
	require.ErrorContains(t, err, "open "+path)
}
