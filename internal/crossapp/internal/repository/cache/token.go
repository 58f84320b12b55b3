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
	"encoding/json"
	"time"

	"github.com/ecodeclub/ecache"
	"github.com/opshive/opshive/internal/crossapp/internal/domain"
)

type TokenCache interface {
	Get(ctx context.Context, token string) (domain.AppSession, error)
	// Set 缓存会话,实际 TTL 取 ttl 与默认上限的较小值
	Set(ctx context.Context, token string, sess domain.AppSession, ttl time.Duration) error
}

type TokenECache struct {
	cache      ecache.Cache
	expiration time.Duration
}

func NewTokenECache(c ecache.Cache) TokenCache {
	return &TokenECache{
		cache: &ecache.NamespaceCache{
			Namespace: "crossapp:",
			C:         c,
		},
		expiration: time.Minute * 10,
	}
}

func (t *TokenECache) Get(ctx context.Context, token string) (domain.AppSession, error) {
	var sess domain.AppSession
	err := t.cache.Get(ctx, t.key(token)).JSONScan(&sess)
	return sess, err
}

func (t *TokenECache) Set(ctx context.Context, token string, sess domain.AppSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if ttl <= 0 || ttl > t.expiration {
		ttl = t.expiration
	}
	return t.cache.Set(ctx, t.key(token), data, ttl)
}

func (t *TokenECache) key(token string) string {
	return "session:" + token
}
