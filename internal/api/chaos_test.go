package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConcurrentMassTagging(t *testing.T) {
	var count atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/tags" {
			var body MassTagging
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "stress", body.Tags)
			count.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	const workers = 50
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errCh <- client.PutMassTags(context.Background(), []int64{id}, "stress")
		}(int64(i))
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestClientUnicodeTagSpec(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "été,-日本,🚀", string(body))
		w.WriteHeader(http.StatusOK)
	})

	err := client.PutItemTags(context.Background(), 3, "été,-日本,🚀")
	require.NoError(t, err)
}
