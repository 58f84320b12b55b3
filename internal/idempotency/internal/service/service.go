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

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/retry"
	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/idempotency/internal/repository"
)

var (
	// ErrOperationInFlight 相同幂等键的首个调用仍在执行,且等待其结果超时
	ErrOperationInFlight = errors.New("相同操作正在处理中")
)

// DefaultTTL 幂等记录的默认保留时长
const DefaultTTL = 24 * time.Hour

//go:generate mockgen -source=./service.go -destination=../../mocks/idempotency.mock.go -package=idempotencymocks -typed Service
type Service interface {
	// Key 在调用方未提供幂等键时,从操作类型与规范化请求体派生一个
	Key(biz string, payload any) string
	// CheckAndReserve 返回 (缓存的响应, 是否重复, error);
	// 非重复时已完成占位,调用方应继续执行操作并 StoreResponse 或 Release
	CheckAndReserve(ctx context.Context, key, biz string) ([]byte, bool, error)
	StoreResponse(ctx context.Context, key string, response []byte) error
	Release(ctx context.Context, key string) error
	// Do 以幂等键包裹 fn:重复调用返回首个调用的响应
	Do(ctx context.Context, key, biz string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error)
	SweepExpired(ctx context.Context, limit int) (int64, error)
}

type service struct {
	repo   repository.IdempotencyRepository
	ttl    time.Duration
	logger *elog.Component
}

func NewIdempotencyService(repo repository.IdempotencyRepository, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		repo:   repo,
		ttl:    ttl,
		logger: elog.DefaultLogger,
	}
}

func (s *service) Key(biz string, payload any) string {
	// json.Marshal 对结构体按字段声明序列化,足以作为规范化表示
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", payload))
	}
	sum := sha256.Sum256(append([]byte(biz+":"), data...))
	return hex.EncodeToString(sum[:])
}

func (s *service) CheckAndReserve(ctx context.Context, key, biz string) ([]byte, bool, error) {
	err := s.repo.Reserve(ctx, key, biz, s.ttl)
	if err == nil {
		return nil, false, nil
	}
	if !errors.Is(err, repository.ErrDuplicatedKey) {
		return nil, false, fmt.Errorf("幂等占位失败: %w", err)
	}
	record, ferr := s.repo.FindByKey(ctx, key)
	if ferr != nil {
		if errors.Is(ferr, repository.ErrRecordNotFound) {
			// 首个调用失败后释放了记录,让上游重试
			return nil, false, fmt.Errorf("%w: key=%s", ErrOperationInFlight, key)
		}
		return nil, false, ferr
	}
	if !record.HasResponse {
		return nil, true, nil
	}
	return record.Response, true, nil
}

func (s *service) StoreResponse(ctx context.Context, key string, response []byte) error {
	return s.repo.StoreResponse(ctx, key, response)
}

func (s *service) Release(ctx context.Context, key string) error {
	return s.repo.Release(ctx, key)
}

func (s *service) Do(ctx context.Context, key, biz string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	cached, duplicated, err := s.CheckAndReserve(ctx, key, biz)
	if err != nil {
		return nil, err
	}
	if duplicated {
		if cached != nil {
			return cached, nil
		}
		return s.waitForResponse(ctx, key)
	}
	response, err := fn(ctx)
	if err != nil {
		if rerr := s.Release(ctx, key); rerr != nil {
			s.logger.Error("释放幂等键失败",
				elog.FieldErr(rerr),
				elog.String("key", key))
		}
		return nil, err
	}
	if serr := s.StoreResponse(ctx, key, response); serr != nil {
		// 响应缓存失败不影响本次结果,后续重复调用会等待直至过期
		s.logger.Error("缓存幂等响应失败",
			elog.FieldErr(serr),
			elog.String("key", key))
	}
	return response, nil
}

// waitForResponse 有界等待首个调用回填响应
func (s *service) waitForResponse(ctx context.Context, key string) ([]byte, error) {
	const (
		initInterval = 100 * time.Millisecond
		maxInterval  = time.Second
		maxRetries   = 10
	)
	strategy, err := retry.NewExponentialBackoffRetryStrategy(initInterval, maxInterval, maxRetries)
	if err != nil {
		return nil, err
	}
	for {
		record, ferr := s.repo.FindByKey(ctx, key)
		if ferr == nil && record.HasResponse {
			return record.Response, nil
		}
		if ferr != nil && !errors.Is(ferr, repository.ErrRecordNotFound) {
			return nil, ferr
		}
		interval, ok := strategy.Next()
		if !ok {
			return nil, fmt.Errorf("%w: key=%s", ErrOperationInFlight, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (s *service) SweepExpired(ctx context.Context, limit int) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now().UnixMilli(), limit)
}
