package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStores(t *testing.T) {
	stores := map[string]BlobStore{
		"memory": NewMemoryBlobStore(),
		"file":   NewFileBlobStore(t.TempDir()),
	}
	for name, bs := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, bs.PutNew(ctx, "a/2.csv", []byte("two")))
			require.NoError(t, bs.PutNew(ctx, "a/1.csv", []byte("one")))
			require.NoError(t, bs.PutNew(ctx, "a/errors/1.csv", []byte("err")))
			require.NoError(t, bs.PutNew(ctx, "b/1.csv", []byte("other")))

			err := bs.PutNew(ctx, "a/1.csv", []byte("again"))
			assert.True(t, errors.Is(err, ErrAlreadyExists))

			got, err := bs.Get(ctx, "a/1.csv")
			require.NoError(t, err)
			assert.Equal(t, "one", string(got))

			_, err = bs.Get(ctx, "a/3.csv")
			assert.True(t, errors.Is(err, ErrNotFound))

			keys, err := bs.List(ctx, "a/")
			require.NoError(t, err)
			assert.Equal(t, []string{"a/1.csv", "a/2.csv", "a/errors/1.csv"}, keys)
		})
	}
}

func TestFileBlobStoreListMissingDir(t *testing.T) {
	bs := NewFileBlobStore(t.TempDir() + "/nope")
	keys, err := bs.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
