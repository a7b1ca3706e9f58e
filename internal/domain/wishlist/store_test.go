package wishlist

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront/internal/localstore"
	"github.com/your-org/storefront/internal/remote"
)

func newTestStore(t *testing.T) (*Store, remote.Service) {
	t.Helper()
	local, err := localstore.New(t.TempDir())
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := remote.NewMemoryService()
	return NewStore(svc, local, logrus.NewEntry(logger)), svc
}

func TestAddAndIsWishlisted(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(Item{ProductID: "1", Name: "Tee", Price: 250})

	assert.True(t, s.IsWishlisted("1"))
	assert.False(t, s.IsWishlisted("2"))
	assert.Len(t, s.Items(), 1)
}

func TestAddIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(Item{ProductID: "1"})
	s.Add(Item{ProductID: "1"})

	assert.Len(t, s.Items(), 1)
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(Item{ProductID: "1"})
	s.Add(Item{ProductID: "2"})

	s.Remove("1")

	assert.False(t, s.IsWishlisted("1"))
	assert.True(t, s.IsWishlisted("2"))
}

func TestFetchMissingDocumentYieldsEmptyList(t *testing.T) {
	s, _ := newTestStore(t)

	items, err := s.Fetch(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchLoadsRemoteDocument(t *testing.T) {
	s, svc := newTestStore(t)
	col := svc.Collection(Collection)
	require.NoError(t, col.Set(context.Background(), "user-1", document{Items: []Item{{ProductID: "9", Name: "Hoodie", Price: 900}}}, false))

	items, err := s.Fetch(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ProductID)
	assert.True(t, s.IsWishlisted("9"))
}

func TestMutationsSyncRemoteDocumentAfterFetch(t *testing.T) {
	s, svc := newTestStore(t)
	_, err := s.Fetch(context.Background(), "user-1")
	require.NoError(t, err)

	s.Add(Item{ProductID: "1", Name: "Tee"})
	s.Flush()

	var payload document
	require.NoError(t, svc.Collection(Collection).Get(context.Background(), "user-1", &payload))
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "1", payload.Items[0].ProductID)

	s.Remove("1")
	s.Flush()

	require.NoError(t, svc.Collection(Collection).Get(context.Background(), "user-1", &payload))
	assert.Empty(t, payload.Items)
}

func TestSyncFailureKeepsLocalState(t *testing.T) {
	s, svc := newTestStore(t)
	_, err := s.Fetch(context.Background(), "user-1")
	require.NoError(t, err)

	remote.FailWrites(svc.Collection(Collection), true)
	s.Add(Item{ProductID: "1"})
	s.Flush()

	assert.True(t, s.IsWishlisted("1"))
}
