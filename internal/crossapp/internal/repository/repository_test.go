// Copyright 2024 opshive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/opshive/opshive/internal/crossapp/internal/domain"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokenDAO struct {
	token dao.AppAccessToken
}

func (s *stubTokenDAO) FindByToken(_ context.Context, token string) (dao.AppAccessToken, error) {
	if token != s.token.Token {
		return dao.AppAccessToken{}, dao.ErrTokenNotFound
	}
	return s.token, nil
}

type recordingTokenCache struct {
	sess    domain.AppSession
	lastTTL time.Duration
}

func (c *recordingTokenCache) Get(_ context.Context, _ string) (domain.AppSession, error) {
	return c.sess, nil
}

func (c *recordingTokenCache) Set(_ context.Context, _ string, sess domain.AppSession, ttl time.Duration) error {
	c.sess = sess
	c.lastTTL = ttl
	return nil
}

func TestFindSession_CacheTTLBoundedByTokenLifetime(t *testing.T) {
	t.Parallel()
	remaining := 3 * time.Second
	d := &stubTokenDAO{token: dao.AppAccessToken{
		Token:       "tk-soon",
		AppId:       "flowrunner",
		Uid:         1001,
		Permissions: "read-balance",
		ExpireAt:    time.Now().Add(remaining).UnixMilli(),
	}}
	c := &recordingTokenCache{}
	repo := NewTokenRepository(d, c)

	sess, err := repo.FindSession(context.Background(), "tk-soon")
	require.NoError(t, err)
	assert.Equal(t, "flowrunner", sess.AppId)
	// 缓存寿命不能越过令牌过期点,否则过期令牌会在缓存里继续通过校验
	assert.Greater(t, c.lastTTL, time.Duration(0))
	assert.LessOrEqual(t, c.lastTTL, remaining)
}

func TestFindSession_ExpiredTokenNotCached(t *testing.T) {
	t.Parallel()
	d := &stubTokenDAO{token: dao.AppAccessToken{
		Token:    "tk-dead",
		AppId:    "flowrunner",
		Uid:      1001,
		ExpireAt: time.Now().Add(-time.Second).UnixMilli(),
	}}
	c := &recordingTokenCache{}
	repo := NewTokenRepository(d, c)

	_, err := repo.FindSession(context.Background(), "tk-dead")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Zero(t, c.lastTTL)
}
