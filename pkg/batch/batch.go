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

// Package batch runs an operation over a list of items with a concurrency ceiling.
//
// Items are cut into consecutive slices of at most ceiling items. Every item of a
// slice runs concurrently, and the next slice only starts once the whole slice has
// settled. The first failure fails the batch: operations already in flight in the
// failing slice are drained and their results dropped, and no further slice starts.
package batch

import (
	"context"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Unbounded puts every item into a single slice.
const Unbounded = -1

// ✅ Valid reports whether ceiling is usable
func Valid(ceiling int) bool {
	return ceiling == Unbounded || ceiling >= 1
}

// ✂️ Slices returns the [start, end) bounds of each slice of n items
func Slices(n, ceiling int) [][2]int {
	if n == 0 {
		return nil
	}
	size := ceiling
	if ceiling == Unbounded || ceiling > n {
		size = n
	}
	out := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}

// 🏃 Run applies op to every item and returns the results in item order
func Run[T, R any](ctx context.Context, items []T, ceiling int, op func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if !Valid(ceiling) {
		return nil, errors.Errorf("invalid concurrency ceiling %d", ceiling)
	}

	results := make([]R, len(items))
	for _, bounds := range Slices(len(items), ceiling) {
		// a plain group: siblings are not cancelled when one fails
		var g errgroup.Group
		for i := bounds[0]; i < bounds[1]; i++ {
			g.Go(func() error {
				r, err := op(ctx, items[i])
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// 🔁 Each is Run for operations without a result
func Each[T any](ctx context.Context, items []T, ceiling int, op func(ctx context.Context, item T) error) error {
	_, err := Run(ctx, items, ceiling, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, op(ctx, item)
	})
	return err
}
