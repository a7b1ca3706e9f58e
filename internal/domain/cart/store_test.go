package cart

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront/internal/localstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	local, err := localstore.New(t.TempDir())
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewStore(local, logrus.NewEntry(logger))
}

func TestAddMergesSameProductAndSize(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add(AddRequest{ProductID: "7", Name: "Tee", Price: 250, Size: "M", Quantity: 2}))
	require.NoError(t, s.Add(AddRequest{ProductID: "7", Name: "Tee", Price: 250, Size: "M", Quantity: 1}))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(750), s.Subtotal())
	assert.Equal(t, 3, s.TotalCount())
}

func TestAddDifferentSizesAreSeparateLines(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add(AddRequest{ProductID: "7", Price: 250, Size: "M"}))
	require.NoError(t, s.Add(AddRequest{ProductID: "7", Price: 250, Size: "L"}))

	assert.Len(t, s.Items(), 2)
	assert.Equal(t, 2, s.TotalCount())
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add(AddRequest{ProductID: "1", Price: 100}))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddRequiresProductID(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.Add(AddRequest{Price: 100}))
	assert.Empty(t, s.Items())
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(AddRequest{ProductID: "1", Size: "M"}))
	require.NoError(t, s.Add(AddRequest{ProductID: "2", Size: "M"}))

	s.Remove("1", "M")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ProductID)

	// removing an absent line is a no-op
	s.Remove("1", "M")
	assert.Len(t, s.Items(), 1)
}

func TestSetQuantity(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(AddRequest{ProductID: "1", Size: "M", Quantity: 2}))

	s.SetQuantity("1", "M", 5)
	assert.Equal(t, 5, s.Items()[0].Quantity)

	s.SetQuantity("1", "M", 0)
	assert.Empty(t, s.Items())
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(AddRequest{ProductID: "1"}))
	require.NoError(t, s.Add(AddRequest{ProductID: "2"}))

	s.Clear()

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalCount())
	assert.Equal(t, int64(0), s.Subtotal())
}

func TestRehydratesFromLocalStorage(t *testing.T) {
	dir := t.TempDir()
	local, err := localstore.New(dir)
	require.NoError(t, err)
	logger := logrus.NewEntry(logrus.New())

	s := NewStore(local, logger)
	require.NoError(t, s.Add(AddRequest{ProductID: "1", Price: 100, Quantity: 2}))

	reloaded := NewStore(local, logger)
	assert.Equal(t, s.Items(), reloaded.Items())
	assert.Equal(t, int64(200), reloaded.Subtotal())
}
