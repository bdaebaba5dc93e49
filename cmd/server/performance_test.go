package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmotionDetector_LoadTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping load test in short mode")
	}

	a := newTestApp(t, okUpstream)

	const workers = 10
	const perWorker = 4

	target := "/emotionDetector?" + url.Values{"textToAnalyze": {"I love this new technology."}}.Encode()
	durations := make([]time.Duration, 0, workers*perWorker)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				start := time.Now()
				w := httptest.NewRecorder()
				req, _ := http.NewRequest(http.MethodGet, target, nil)
				a.router.ServeHTTP(w, req)
				elapsed := time.Since(start)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.Contains(t, w.Body.String(), "The dominant emotion is joy.")

				mu.Lock()
				durations = append(durations, elapsed)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ps := calculatePercentiles(durations, 50, 95)
	p50, p95 := ps[0], ps[1]
	t.Logf("Load test completed: %d requests, p50=%v p95=%v", len(durations), p50, p95)
	assert.Less(t, p95, 2*time.Second)
}

func calculatePercentiles(durations []time.Duration, percentiles ...float64) []time.Duration {
	if len(durations) == 0 {
		return make([]time.Duration, len(percentiles))
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	results := make([]time.Duration, len(percentiles))
	for i, p := range percentiles {
		index := int(float64(len(sorted)-1) * p / 100)
		results[i] = sorted[index]
	}
	return results
}

func TestCalculatePercentiles(t *testing.T) {
	durations := []time.Duration{5, 1, 4, 2, 3}

	assert.Equal(t, []time.Duration{1, 3, 5}, calculatePercentiles(durations, 0, 50, 100))
	assert.Equal(t, []time.Duration{0}, calculatePercentiles(nil, 50))
}
