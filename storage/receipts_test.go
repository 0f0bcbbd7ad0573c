package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"voting-settlement/models"
	"voting-settlement/storage"
)

func settlement(id string, proposal uint64, result int64, at time.Time) *models.Settlement {
	return &models.Settlement{
		ID:          id,
		ProposalID:  proposal,
		Result:      result,
		BallotCount: 3,
		TxHash:      "0x" + id,
		BlockNumber: 10,
		Signer:      "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		SettledAt:   at,
	}
}

func openStores(t *testing.T) map[string]storage.ReceiptStore {
	t.Helper()
	dir := t.TempDir()

	stores := map[string]storage.ReceiptStore{}
	for _, kind := range []string{"memory", "json", "badger"} {
		s, err := storage.Open(kind, filepath.Join(dir, kind), zerolog.Nop())
		require.NoError(t, err, kind)
		t.Cleanup(func() { s.Close() })
		stores[kind] = s
	}
	return stores
}

func TestReceiptStores(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for kind, store := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			all, err := store.List()
			require.NoError(t, err)
			require.Empty(t, all)

			require.NoError(t, store.Put(settlement("b", 42, 6, base.Add(time.Minute))))
			require.NoError(t, store.Put(settlement("a", 7, -1, base)))
			require.NoError(t, store.Put(settlement("c", 42, 9, base.Add(2*time.Minute))))

			all, err = store.List()
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

			forty, err := store.ForProposal(42)
			require.NoError(t, err)
			require.Len(t, forty, 2)
			require.Equal(t, int64(6), forty[0].Result)
			require.Equal(t, int64(9), forty[1].Result)

			none, err := store.ForProposal(1)
			require.NoError(t, err)
			require.Empty(t, none)
		})
	}
}

func TestStoresReturnCopies(t *testing.T) {
	for kind, store := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			s := settlement("x", 1, 1, time.Now().UTC())
			require.NoError(t, store.Put(s))
			s.Result = 99

			got, err := store.ForProposal(1)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, int64(1), got[0].Result)
		})
	}
}

func TestJSONStoreReloads(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	store, err := storage.NewJSONStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(settlement("a", 3, 5, at)))

	reopened, err := storage.NewJSONStore(dir)
	require.NoError(t, err)
	got, err := reopened.ForProposal(3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "0xa", got[0].TxHash)
	require.True(t, at.Equal(got[0].SettledAt))
}

func TestBadgerStoreReloads(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	store, err := storage.NewBadgerStore(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Put(settlement("a", 3, 5, at)))
	require.NoError(t, store.Close())

	reopened, err := storage.NewBadgerStore(dir, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint64(3), got[0].ProposalID)
}

func TestOpenUnknownStore(t *testing.T) {
	_, err := storage.Open("s3", t.TempDir(), zerolog.Nop())
	require.Error(t, err)
}
