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
	"time"

	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/cache"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/dao"
)

var (
	ErrDuplicatedKey  = dao.ErrDuplicatedKey
	ErrRecordNotFound = dao.ErrRecordNotFound
)

// Record 幂等记录,HasResponse 为 false 表示首个调用方仍在处理
type Record struct {
	Key         string
	Biz         string
	Response    []byte
	HasResponse bool
	ExpireAt    int64
}

type IdempotencyRepository interface {
	// Reserve 为 key 占位;键已被占用时返回 ErrDuplicatedKey
	Reserve(ctx context.Context, key, biz string, ttl time.Duration) error
	FindByKey(ctx context.Context, key string) (Record, error)
	StoreResponse(ctx context.Context, key string, response []byte) error
	// Release 操作失败后释放占位,允许上游重试再次执行
	Release(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, now int64, limit int) (int64, error)
}

type idempotencyRepository struct {
	dao    dao.IdempotencyDAO
	cache  cache.IdempotencyCache
	logger *elog.Component
}

func NewIdempotencyRepository(d dao.IdempotencyDAO, c cache.IdempotencyCache) IdempotencyRepository {
	return &idempotencyRepository{
		dao:    d,
		cache:  c,
		logger: elog.DefaultLogger,
	}
}

func (r *idempotencyRepository) Reserve(ctx context.Context, key, biz string, ttl time.Duration) error {
	// redis 占位只是快速路径,最终仲裁是 MySQL 的唯一索引
	ok, err := r.cache.SetNXKey(ctx, key, ttl)
	if err != nil {
		r.logger.Warn("幂等键缓存占位失败,退化为仅数据库仲裁",
			elog.FieldErr(err),
			elog.String("key", key))
	} else if !ok {
		return ErrDuplicatedKey
	}
	err = r.dao.Insert(ctx, dao.IdempotencyRecord{
		Key:      key,
		Biz:      biz,
		ExpireAt: time.Now().Add(ttl).UnixMilli(),
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, dao.ErrDuplicatedKey) {
		// 占位没有落库,必须清掉缓存占位,否则重试会一直被快速路径挡住
		r.dropCacheReservation(ctx, key)
		return err
	}
	// 数据库中已有记录:可能是过期未清扫的残留,清掉残留后重试一次
	old, ferr := r.dao.FindByKey(ctx, key)
	if ferr != nil {
		r.dropCacheReservation(ctx, key)
		return err
	}
	if old.ExpireAt > time.Now().UnixMilli() {
		// 真实占用,缓存占位与数据库记录一致,保留
		return err
	}
	if derr := r.dao.Delete(ctx, key); derr != nil {
		r.dropCacheReservation(ctx, key)
		return err
	}
	ierr := r.dao.Insert(ctx, dao.IdempotencyRecord{
		Key:      key,
		Biz:      biz,
		ExpireAt: time.Now().Add(ttl).UnixMilli(),
	})
	if ierr != nil && !errors.Is(ierr, dao.ErrDuplicatedKey) {
		r.dropCacheReservation(ctx, key)
	}
	return ierr
}

func (r *idempotencyRepository) dropCacheReservation(ctx context.Context, key string) {
	if _, err := r.cache.DelKey(ctx, key); err != nil {
		r.logger.Warn("释放幂等键缓存失败",
			elog.FieldErr(err),
			elog.String("key", key))
	}
}

func (r *idempotencyRepository) FindByKey(ctx context.Context, key string) (Record, error) {
	record, err := r.dao.FindByKey(ctx, key)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Key:         record.Key,
		Biz:         record.Biz,
		Response:    []byte(record.Response.String),
		HasResponse: record.Response.Valid,
		ExpireAt:    record.ExpireAt,
	}, nil
}

func (r *idempotencyRepository) StoreResponse(ctx context.Context, key string, response []byte) error {
	return r.dao.UpdateResponse(ctx, key, string(response))
}

func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	r.dropCacheReservation(ctx, key)
	return r.dao.Delete(ctx, key)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now int64, limit int) (int64, error) {
	return r.dao.DeleteExpired(ctx, now, limit)
}
