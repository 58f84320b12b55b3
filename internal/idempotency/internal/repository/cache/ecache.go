// Copyright 2024 opshive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"time"

	"github.com/ecodeclub/ecache"
)

type IdempotencyCache interface {
	// SetNXKey 尝试占位,返回 false 表示键已被占用
	SetNXKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	DelKey(ctx context.Context, key string) (int64, error)
}

type idempotencyECache struct {
	ec ecache.Cache
}

func NewIdempotencyECache(ec ecache.Cache) IdempotencyCache {
	return &idempotencyECache{
		ec: &ecache.NamespaceCache{
			Namespace: "idempotency:",
			C:         ec,
		},
	}
}

func (q *idempotencyECache) SetNXKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return q.ec.SetNX(ctx, q.reserveKey(key), 1, ttl)
}

func (q *idempotencyECache) DelKey(ctx context.Context, key string) (int64, error) {
	return q.ec.Delete(ctx, q.reserveKey(key))
}

func (q *idempotencyECache) reserveKey(key string) string {
	return "reserve:" + key
}
