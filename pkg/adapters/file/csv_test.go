package file_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/agora/pkg/adapters/file"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStore_Contract(t *testing.T) {
	store := file.NewCSVStore(filepath.Join(t.TempDir(), "debate.csv"))
	ports.RunTranscriptStoreContract(t, store)
}

func TestCSVStore_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debate.csv")
	store := file.NewCSVStore(path)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 0, "a", "a", "b")))
	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 1, "b", "b", "b")))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, file.Header, rows[0])
	assert.Equal(t, []string{
		"1", "X", "a", "b", "c",
		"Player 1: r1\nPlayer 2: r2\nPlayer 3: r3",
		`{"a": 2, "b": 1}`,
		`{"Player 1": "a", "Player 2": "a", "Player 3": "b"}`,
		"a",
	}, rows[1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, []string{"b", "c", "a"}, rows[2][2:5])
}

func TestCSVStore_TieColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate.csv")
	store := file.NewCSVStore(path)

	require.NoError(t, store.Append(context.Background(), ports.ContractRecord("X", 0, "a", "b", "c")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tie between: a, b, c")
}

func TestCSVStore_ReadsLegacyMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate.csv")
	legacy := strings.Join(file.Header, ",") + "\n" +
		`1,Climate,carbon tax,cap-and-trade,direct regulation,"Player 1: x` + "\n" + `Player 2: y",` +
		`"{'carbon tax': 2, 'direct regulation': 1}","{'Player 1': 'carbon tax', 'Player 2': 'carbon tax', 'Player 3': 'direct regulation'}",carbon tax` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	rec, err := file.NewCSVStore(path).Get(context.Background(), domain.Key{Topic: "Climate", Number: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Index)
	assert.Equal(t, domain.Transcript{"Player 1: x", "Player 2: y"}, rec.Transcript)
	assert.Equal(t, []string{"carbon tax", "direct regulation"}, rec.Votes.Keys())
	assert.Equal(t, 3, rec.AgentVotes.Len())
	assert.Equal(t, domain.Outcome{Winner: "carbon tax"}, rec.Outcome)
}

func TestCSVStore_MissingFileIsEmpty(t *testing.T) {
	store := file.NewCSVStore(filepath.Join(t.TempDir(), "none.csv"))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate.csv")
	require.NoError(t, os.WriteFile(path, []byte("only,three,columns\n"), 0644))

	_, err := file.NewCSVStore(path).List(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestCSVStore_AppendFailure(t *testing.T) {
	dir := t.TempDir()
	store := file.NewCSVStore(dir) // a directory cannot be opened for appending

	err := store.Append(context.Background(), ports.ContractRecord("X", 0, "a", "a", "a"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestCSVStore_DefaultPath(t *testing.T) {
	assert.Equal(t, file.DefaultTranscriptFile, file.NewCSVStore("").Path)
}
