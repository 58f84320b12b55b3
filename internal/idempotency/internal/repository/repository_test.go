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

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/opshive/opshive/internal/idempotency/internal/repository/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	keys map[string]struct{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{keys: make(map[string]struct{})}
}

func (m *memoryCache) SetNXKey(_ context.Context, key string, _ time.Duration) (bool, error) {
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryCache) DelKey(_ context.Context, key string) (int64, error) {
	if _, ok := m.keys[key]; !ok {
		return 0, nil
	}
	delete(m.keys, key)
	return 1, nil
}

type memoryDAO struct {
	records map[string]dao.IdempotencyRecord
	// insertErrs 依次在 Insert 时弹出,模拟数据库瞬时故障
	insertErrs []error
}

func newMemoryDAO() *memoryDAO {
	return &memoryDAO{records: make(map[string]dao.IdempotencyRecord)}
}

func (m *memoryDAO) Insert(_ context.Context, r dao.IdempotencyRecord) error {
	if len(m.insertErrs) > 0 {
		err := m.insertErrs[0]
		m.insertErrs = m.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := m.records[r.Key]; ok {
		return fmt.Errorf("%w: key=%s", dao.ErrDuplicatedKey, r.Key)
	}
	m.records[r.Key] = r
	return nil
}

func (m *memoryDAO) FindByKey(_ context.Context, key string) (dao.IdempotencyRecord, error) {
	r, ok := m.records[key]
	if !ok {
		return dao.IdempotencyRecord{}, dao.ErrRecordNotFound
	}
	return r, nil
}

func (m *memoryDAO) UpdateResponse(_ context.Context, key string, response string) error {
	r, ok := m.records[key]
	if !ok {
		return dao.ErrRecordNotFound
	}
	r.Response.String, r.Response.Valid = response, true
	m.records[key] = r
	return nil
}

func (m *memoryDAO) Delete(_ context.Context, key string) error {
	delete(m.records, key)
	return nil
}

func (m *memoryDAO) DeleteExpired(_ context.Context, now int64, _ int) (int64, error) {
	var cnt int64
	for k, r := range m.records {
		if r.ExpireAt <= now {
			delete(m.records, k)
			cnt++
		}
	}
	return cnt, nil
}

func TestReserve_InsertFailureReleasesCacheReservation(t *testing.T) {
	t.Parallel()
	c := newMemoryCache()
	d := newMemoryDAO()
	transientErr := errors.New("数据库连接中断")
	d.insertErrs = []error{transientErr}
	repo := NewIdempotencyRepository(d, c)
	ctx := context.Background()

	// 首次占位:缓存成功但落库失败,错误透出,缓存占位必须回收
	err := repo.Reserve(ctx, "key-1", "payment", time.Minute)
	assert.ErrorIs(t, err, transientErr)
	assert.Empty(t, c.keys)

	// 重试必须能走到数据库仲裁并成功占位,而不是被缓存快速路径挡住
	err = repo.Reserve(ctx, "key-1", "payment", time.Minute)
	require.NoError(t, err)
	_, err = repo.FindByKey(ctx, "key-1")
	require.NoError(t, err)
}

func TestReserve_Duplicate(t *testing.T) {
	t.Parallel()
	c := newMemoryCache()
	d := newMemoryDAO()
	repo := NewIdempotencyRepository(d, c)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, "key-2", "payment", time.Minute))
	err := repo.Reserve(ctx, "key-2", "payment", time.Minute)
	assert.ErrorIs(t, err, ErrDuplicatedKey)
	// 真实占用,缓存占位保留
	assert.Len(t, c.keys, 1)
}

func TestReserve_ExpiredResidueReclaimed(t *testing.T) {
	t.Parallel()
	c := newMemoryCache()
	d := newMemoryDAO()
	repo := NewIdempotencyRepository(d, c)
	ctx := context.Background()

	// 数据库里留有过期未清扫的残留,缓存早已过期
	d.records["key-3"] = dao.IdempotencyRecord{
		Key:      "key-3",
		Biz:      "payment",
		ExpireAt: time.Now().Add(-time.Minute).UnixMilli(),
	}
	require.NoError(t, repo.Reserve(ctx, "key-3", "payment", time.Minute))
	r, err := repo.FindByKey(ctx, "key-3")
	require.NoError(t, err)
	assert.True(t, r.ExpireAt > time.Now().UnixMilli())
}

func TestRelease_AllowsRetry(t *testing.T) {
	t.Parallel()
	c := newMemoryCache()
	d := newMemoryDAO()
	repo := NewIdempotencyRepository(d, c)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, "key-4", "payment", time.Minute))
	require.NoError(t, repo.Release(ctx, "key-4"))
	require.NoError(t, repo.Reserve(ctx, "key-4", "payment", time.Minute))
}
