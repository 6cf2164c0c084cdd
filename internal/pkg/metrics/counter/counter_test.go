package counter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedsamir-dev/netcafes/internal/pkg/cache"
)

func requireTestRedis(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.GetClient().Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
}

func TestFlushMissingKeyIsNoop(t *testing.T) {
	requireTestRedis(t)

	// A flush cycle with nothing pending must return cleanly without ever
	// touching the database.
	key := fmt.Sprintf("netcafes:test:counters:%d", time.Now().UnixNano())
	assert.NoError(t, flushHashToTable(key, "users", "login_count"))
}

func TestAddLoginAccumulates(t *testing.T) {
	requireTestRedis(t)

	ctx := context.Background()
	rdb := cache.GetClient()
	const field = "424242"
	t.Cleanup(func() { rdb.HDel(ctx, userLoginsKey, field) })

	require.NoError(t, AddLogin(424242))
	require.NoError(t, AddLogin(424242))

	pending, err := rdb.HGet(ctx, userLoginsKey, field).Int64()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pending, int64(2))
}
