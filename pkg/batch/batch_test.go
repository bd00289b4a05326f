// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestSlices(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		ceiling int
		want    [][2]int
	}{
		{name: "empty", n: 0, ceiling: 3, want: nil},
		{name: "exact", n: 6, ceiling: 3, want: [][2]int{{0, 3}, {3, 6}}},
		{name: "remainder", n: 5, ceiling: 2, want: [][2]int{{0, 2}, {2, 4}, {4, 5}}},
		{name: "ceiling_larger_than_n", n: 2, ceiling: 10, want: [][2]int{{0, 2}}},
		{name: "unbounded", n: 7, ceiling: Unbounded, want: [][2]int{{0, 7}}},
		{name: "one_at_a_time", n: 3, ceiling: 1, want: [][2]int{{0, 1}, {1, 2}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slices(tt.n, tt.ceiling))
		})
	}
}

func TestRun_BoundsInFlightOperations(t *testing.T) {
	for _, ceiling := range []int{1, 2, 3, 7, 50, Unbounded} {
		for _, n := range []int{0, 1, 5, 20} {
			var inFlight, peak, processed atomic.Int64

			items := make([]int, n)
			for i := range items {
				items[i] = i
			}

			results, err := Run(context.Background(), items, ceiling, func(ctx context.Context, item int) (int, error) {
				cur := inFlight.Add(1)
				for {
					p := peak.Load()
					if cur <= p || peak.CompareAndSwap(p, cur) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				processed.Add(1)
				return item * 2, nil
			})
			require.NoError(t, err)

			assert.EqualValues(t, n, processed.Load(), "ceiling=%d n=%d", ceiling, n)
			if ceiling != Unbounded {
				assert.LessOrEqual(t, peak.Load(), int64(ceiling), "ceiling=%d n=%d", ceiling, n)
			}
			require.Len(t, results, n)
			for i, r := range results {
				assert.Equal(t, i*2, r)
			}
		}
	}
}

func TestRun_FailureDrainsSliceAndStopsLaterSlices(t *testing.T) {
	boom := errors.New("boom")
	var started, finished [6]atomic.Bool

	_, err := Run(context.Background(), []int{0, 1, 2, 3, 4, 5}, 3, func(ctx context.Context, item int) (int, error) {
		started[item].Store(true)
		defer finished[item].Store(true)
		if item == 0 {
			return 0, boom
		}
		time.Sleep(20 * time.Millisecond)
		return item, nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	// siblings in the failing slice ran to completion before Run returned
	for i := 0; i < 3; i++ {
		assert.True(t, finished[i].Load(), "item %d should have settled", i)
	}
	for i := 3; i < 6; i++ {
		assert.False(t, started[i].Load(), "item %d should never start", i)
	}
}

func TestRun_FailureInLaterSlice(t *testing.T) {
	var calls atomic.Int64
	err := Each(context.Background(), []string{"a", "b", "c", "d", "e"}, 2, func(ctx context.Context, item string) error {
		calls.Add(1)
		if item == "c" {
			return errors.Errorf("bad item %s", item)
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad item c")
	assert.EqualValues(t, 4, calls.Load())
}

func TestRun_InvalidCeiling(t *testing.T) {
	for _, ceiling := range []int{0, -2} {
		err := Each(context.Background(), []int{1}, ceiling, func(ctx context.Context, item int) error {
			t.Fatal("op must not run")
			return nil
		})
		require.Error(t, err)
	}
}
