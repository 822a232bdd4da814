package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	astraeatest "github.com/Haser0305/astraea/testing"
)

func TestEnsureBucket(t *testing.T) {
	_, nc := astraeatest.StartEmbeddedNATS(t)

	ctx := context.Background()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	t.Run("creates on first try", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{
			Bucket:  "ensure-bucket-1",
			History: 1,
			TTL:     5 * time.Second,
		}

		kv, err := EnsureBucket(ctx, js, cfg, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
	})

	t.Run("opens existing bucket", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{
			Bucket:  "ensure-bucket-2",
			History: 1,
			TTL:     5 * time.Second,
		}

		kv1, err := js.CreateKeyValue(ctx, cfg)
		require.NoError(t, err)
		require.NotNil(t, kv1)

		// Creation loses to the existing bucket and falls back to opening it.
		kv2, err := EnsureBucket(ctx, js, cfg, 3)
		require.NoError(t, err)
		require.NotNil(t, kv2)
	})

	t.Run("concurrent ensures - same bucket", func(t *testing.T) {
		const numWorkers = 10
		cfg := jetstream.KeyValueConfig{
			Bucket:  "ensure-bucket-3",
			History: 1,
			TTL:     5 * time.Second,
		}

		var wg sync.WaitGroup
		errChan := make(chan error, numWorkers)
		kvs := make([]jetstream.KeyValue, numWorkers)

		for i := 0; i < numWorkers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				kv, err := EnsureBucket(ctx, js, cfg, 5)
				if err != nil {
					errChan <- err
					return
				}
				kvs[idx] = kv
			}(i)
		}

		wg.Wait()
		close(errChan)

		var errList []error
		for err := range errChan {
			errList = append(errList, err)
		}
		require.Empty(t, errList, "all workers should get the bucket")

		for i, kv := range kvs {
			require.NotNil(t, kv, "worker %d should have a valid KV instance", i)
		}
	})

	t.Run("expired context fails gracefully", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()

		time.Sleep(time.Millisecond)

		cfg := jetstream.KeyValueConfig{
			Bucket:  "ensure-bucket-4",
			History: 1,
		}

		_, err := EnsureBucket(shortCtx, js, cfg, 3)
		require.Error(t, err)
	})
}
