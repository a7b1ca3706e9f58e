package remote

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedService(t *testing.T) (*RedisService, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRedisServiceFromClient(db, logger), mock
}

func TestRedisGet(t *testing.T) {
	svc, mock := newMockedService(t)
	col := svc.Collection("products")

	mock.ExpectHGet("docs:products", "p1").SetVal(`{"name":"Tee","price":250}`)

	var got testDoc
	require.NoError(t, col.Get(context.Background(), "p1", &got))
	assert.Equal(t, testDoc{Name: "Tee", Price: 250}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetMissing(t *testing.T) {
	svc, mock := newMockedService(t)
	col := svc.Collection("products")

	mock.ExpectHGet("docs:products", "missing").RedisNil()

	var got testDoc
	err := col.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDelete(t *testing.T) {
	svc, mock := newMockedService(t)
	col := svc.Collection("products")

	mock.ExpectTxPipeline()
	mock.ExpectHDel("docs:products", "p1").SetVal(1)
	mock.ExpectZRem("docs:products:idx", "p1").SetVal(1)
	mock.ExpectPublish("docs:products:events", "p1").SetVal(0)
	mock.ExpectTxPipelineExec()

	require.NoError(t, col.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisListUnordered(t *testing.T) {
	svc, mock := newMockedService(t)
	col := svc.Collection("products")

	mock.ExpectHGetAll("docs:products").SetVal(map[string]string{
		"p1": `{"name":"Tee","price":250}`,
	})

	docs, err := col.List(context.Background(), SubscribeOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p1", docs[0].ID)

	var got testDoc
	require.NoError(t, docs[0].Decode(&got))
	assert.Equal(t, "Tee", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisListOrderedNewestFirst(t *testing.T) {
	svc, mock := newMockedService(t)
	col := svc.Collection("products")

	older := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	mock.ExpectHGetAll("docs:products").SetVal(map[string]string{
		"old": `{"name":"old"}`,
		"new": `{"name":"new"}`,
	})
	mock.ExpectZRevRangeWithScores("docs:products:idx", 0, -1).SetVal([]redis.Z{
		{Score: float64(newer.UnixNano()), Member: "new"},
		{Score: float64(older.UnixNano()), Member: "old"},
	})

	docs, err := col.List(context.Background(), SubscribeOptions{OrderByCreatedAtDesc: true})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, newer, docs[0].CreatedAt)
	assert.Equal(t, "old", docs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCollectionHandlesAreShared(t *testing.T) {
	svc, _ := newMockedService(t)

	assert.Same(t, svc.Collection("products"), svc.Collection("products"))
}
