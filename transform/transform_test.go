package transform

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/dataset"
	"github.com/heartsnn/trickdata/features"
	"github.com/heartsnn/trickdata/shard"
	"github.com/heartsnn/trickdata/solverio"
	"github.com/heartsnn/trickdata/testhelpers"
)

func writeSolverFile(t *testing.T, path string, records int) {
	t.Helper()
	var buf bytes.Buffer
	legal := []card.Card{card.FromSuitAndRank(card.Spades, card.Two+1), card.FromSuitAndRank(card.Hearts, card.Ace)}
	for i := range records {
		require.NoError(t, solverio.Write(&buf, testhelpers.NewState(4*i, i%4, [4]int{}, legal)))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestAll(t *testing.T) {
	enc, err := features.NewEncoder(features.DefaultLayout())
	require.NoError(t, err)

	dir := t.TempDir()
	good1 := filepath.Join(dir, "a3-01")
	good2 := filepath.Join(dir, "a9-02")
	bad := filepath.Join(dir, "a3-03")
	writeSolverFile(t, good1, 5)
	writeSolverFile(t, good2, 3)
	require.NoError(t, os.WriteFile(bad, []byte("zz\n"), 0o644))

	results, err := All(testContext(), []string{good1, good2, bad}, 2, enc, dataset.WriteOptions{Seed: "t"})
	assert.ErrorIs(t, err, solverio.ErrProtocol)
	require.Len(t, results, 3)

	assert.Equal(t, 5, results[0].Rows)
	assert.Equal(t, shard.Training, results[0].Purpose)
	assert.Equal(t, 3, results[1].Rows)
	assert.Equal(t, shard.Validation, results[1].Purpose)
	assert.Error(t, results[2].Err)

	schema := dataset.DefaultSchema()
	g, err := dataset.LoadDataset(good1+".d", schema)
	require.NoError(t, err)
	defer g.Close()
	n, err := g.Rows()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = os.Stat(bad + ".d")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	m, err := dataset.Verify(good2 + ".d")
	require.NoError(t, err)
	assert.Equal(t, []string{good2}, m.Sources)
}

func TestAllCancelled(t *testing.T) {
	enc, err := features.NewEncoder(features.DefaultLayout())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "b1-01")
	writeSolverFile(t, path, 2)

	ctx, cancel := context.WithCancel(testContext())
	cancel()
	results, err := All(ctx, []string{path}, 1, enc, dataset.WriteOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, results[0].Rows)

	_, err = All(testContext(), nil, 0, enc, dataset.WriteOptions{})
	assert.Error(t, err)
}

func TestOutputDir(t *testing.T) {
	assert.Equal(t, "data/07.d", OutputDir("data/07"))
}
