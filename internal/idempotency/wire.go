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

//go:build wireinject

package idempotency

import (
	"sync"
	"time"

	"github.com/ecodeclub/ecache"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/opshive/opshive/internal/idempotency/internal/job"
	"github.com/opshive/opshive/internal/idempotency/internal/repository"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/cache"
	"github.com/opshive/opshive/internal/idempotency/internal/repository/dao"
	"github.com/opshive/opshive/internal/idempotency/internal/service"
)

func InitModule(db *egorm.Component, ec ecache.Cache) (*Module, error) {
	wire.Build(
		wire.Struct(new(Module), "*"),
		InitService,
		initSweepJob,
	)
	return new(Module), nil
}

var (
	once = &sync.Once{}
	svc  service.Service
)

func InitService(db *egorm.Component, ec ecache.Cache) Service {
	once.Do(func() {
		_ = dao.InitTables(db)
		d := dao.NewIdempotencyGORMDAO(db)
		c := cache.NewIdempotencyECache(ec)
		r := repository.NewIdempotencyRepository(d, c)
		svc = service.NewIdempotencyService(r, 24*time.Hour)
	})
	return svc
}

func initSweepJob(svc Service) *SweepExpiredRecordsJob {
	const sweepBatchSize = 500
	return job.NewSweepExpiredRecordsJob(svc, sweepBatchSize)
}
