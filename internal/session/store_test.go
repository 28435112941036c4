package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIndexUpsertsOnConflict(t *testing.T) {
	chdirTemp(t)

	created := time.Now().Add(-time.Hour)
	require.NoError(t, recordIndex("abc", created, created))
	require.NoError(t, recordIndex("abc", created, created.Add(time.Minute)))

	ids, err := indexedIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, ids)
}

func TestIndexedIDsOrderedByCreation(t *testing.T) {
	chdirTemp(t)

	now := time.Now()
	require.NoError(t, recordIndex("second", now.Add(time.Minute), now.Add(time.Minute)))
	require.NoError(t, recordIndex("first", now, now))

	ids, err := indexedIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ids)
}
