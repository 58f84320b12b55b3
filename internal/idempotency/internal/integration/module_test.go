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

//go:build e2e

package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ego-component/egorm"
	"github.com/opshive/opshive/internal/idempotency/internal/repository"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/cache"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/dao"
	"github.com/opshive/opshive/internal/idempotency/internal/service"
	testioc "github.com/opshive/opshive/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModuleTestSuite struct {
	suite.Suite
	db  *egorm.Component
	dao dao.IdempotencyDAO
	svc service.Service
}

func TestIdempotencyModule(t *testing.T) {
	suite.Run(t, new(ModuleTestSuite))
}

func (s *ModuleTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	require.NoError(s.T(), dao.InitTables(s.db))
	s.dao = dao.NewIdempotencyGORMDAO(s.db)
	repo := repository.NewIdempotencyRepository(s.dao, cache.NewIdempotencyECache(testioc.InitCache()))
	s.svc = service.NewIdempotencyService(repo, time.Minute)
}

func (s *ModuleTestSuite) TearDownSuite() {
	err := s.db.Exec("DROP TABLE `idempotency_records`").Error
	s.NoError(err)
}

func (s *ModuleTestSuite) TearDownTest() {
	err := s.db.Exec("TRUNCATE TABLE `idempotency_records`").Error
	s.NoError(err)
}

func (s *ModuleTestSuite) TestKey_Deterministic() {
	t := s.T()
	type payload struct {
		Uid    int64  `json:"uid"`
		Amount int64  `json:"amount"`
		Desc   string `json:"desc"`
	}
	k1 := s.svc.Key("consume", payload{Uid: 1, Amount: 10, Desc: "a"})
	k2 := s.svc.Key("consume", payload{Uid: 1, Amount: 10, Desc: "a"})
	k3 := s.svc.Key("consume", payload{Uid: 1, Amount: 11, Desc: "a"})
	k4 := s.svc.Key("refund", payload{Uid: 1, Amount: 10, Desc: "a"})
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Len(t, k1, 64)
}

func (s *ModuleTestSuite) TestCheckAndReserve() {
	t := s.T()
	ctx := context.Background()
	key := s.svc.Key("test", "reserve-1")

	resp, duplicated, err := s.svc.CheckAndReserve(ctx, key, "test")
	require.NoError(t, err)
	assert.False(t, duplicated)
	assert.Nil(t, resp)

	// 二次占位:重复,但还没有响应
	resp, duplicated, err = s.svc.CheckAndReserve(ctx, key, "test")
	require.NoError(t, err)
	assert.True(t, duplicated)
	assert.Nil(t, resp)

	require.NoError(t, s.svc.StoreResponse(ctx, key, []byte(`{"ok":true}`)))
	resp, duplicated, err = s.svc.CheckAndReserve(ctx, key, "test")
	require.NoError(t, err)
	assert.True(t, duplicated)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
}

func (s *ModuleTestSuite) TestDo_DuplicateReturnsFirstResponse() {
	t := s.T()
	ctx := context.Background()
	key := s.svc.Key("test", "do-1")
	var calls int32
	fn := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`{"sn":"abc"}`), nil
	}
	first, err := s.svc.Do(ctx, key, "test", fn)
	require.NoError(t, err)
	second, err := s.svc.Do(ctx, key, "test", fn)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func (s *ModuleTestSuite) TestDo_FailureReleasesReservation() {
	t := s.T()
	ctx := context.Background()
	key := s.svc.Key("test", "do-2")
	mockErr := errors.New("下游失败")
	_, err := s.svc.Do(ctx, key, "test", func(ctx context.Context) ([]byte, error) {
		return nil, mockErr
	})
	assert.ErrorIs(t, err, mockErr)

	// 失败释放了占位,重试可以继续执行
	resp, err := s.svc.Do(ctx, key, "test", func(ctx context.Context) ([]byte, error) {
		return []byte(`{"ok":true}`), nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
}

func (s *ModuleTestSuite) TestDo_Concurrent() {
	t := s.T()
	ctx := context.Background()
	key := s.svc.Key("test", "do-3")
	var calls int32
	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp, err := s.svc.Do(ctx, key, "test", func(ctx context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(50 * time.Millisecond)
				return []byte(`{"winner":true}`), nil
			})
			if err == nil {
				results[idx] = string(resp)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, res := range results {
		if res != "" {
			assert.JSONEq(t, `{"winner":true}`, res)
		}
	}
}

func (s *ModuleTestSuite) TestSweepExpired() {
	t := s.T()
	ctx := context.Background()
	now := time.Now().UnixMilli()
	for i, expireAt := range []int64{now - 1000, now - 2000, now + int64(time.Hour/time.Millisecond)} {
		err := s.dao.Insert(ctx, dao.IdempotencyRecord{
			Key:      s.svc.Key("sweep", i),
			Biz:      "sweep",
			ExpireAt: expireAt,
		})
		require.NoError(t, err)
	}
	deleted, err := s.svc.SweepExpired(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
