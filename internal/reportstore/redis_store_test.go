package reportstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/pkg/models"
)

func TestKeyLayout(t *testing.T) {
	s := newStore(nil, RedisConfig{KeyPrefix: " bia "})
	assert.Equal(t, "bia:report:r1", s.reportKey("r1"))
	assert.Equal(t, "bia:digest:abc", s.digestKey("abc"))
	assert.Equal(t, DefaultTTL, s.ttl)

	assert.Equal(t, DefaultKeyPrefix+":digest:abc", newStore(nil, RedisConfig{}).digestKey("abc"))
}

func TestWriteReportsSkipsEmptyBatches(t *testing.T) {
	s := newStore(nil, RedisConfig{})
	require.NoError(t, s.WriteReports(nil))
}

// Requires a reachable Redis; set CONTINUITY_TEST_REDIS_ADDR to run.
func TestRedisStoreDigestLookup(t *testing.T) {
	addr := os.Getenv("CONTINUITY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONTINUITY_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(RedisConfig{Addr: addr, KeyPrefix: "continuity:test:" + t.Name(), TTL: time.Minute})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteReports([]*models.Report{
		{ReportID: "r1", OrganizationID: "acme", SnapshotDigest: "d1", BCDR: models.BCDRReport{ReadinessScore: 63}},
		nil,
		{ReportID: "r2", OrganizationID: "acme"},
	}))

	ctx := context.Background()
	got, err := store.ByDigest(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ReportID)
	assert.Equal(t, 63, got.BCDR.ReadinessScore)

	_, err = store.ByDigest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
