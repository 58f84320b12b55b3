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

package crossapp

import (
	"sync"

	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp/internal/event"
	"github.com/opshive/opshive/internal/crossapp/internal/repository"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/cache"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/dao"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"github.com/opshive/opshive/internal/crossapp/internal/web"
	"github.com/opshive/opshive/internal/idempotency"
)

func InitModule(db *egorm.Component, ec ecache.Cache, q mq.MQ,
	creditSvc credit.Service, idemSvc idempotency.Service) (*Module, error) {
	wire.Build(
		wire.Struct(new(Module), "*"),
		InitService,
		web.NewHandler,
		web.NewAdminHandler,
		initPurchaseConsumer,
	)
	return new(Module), nil
}

var (
	once = &sync.Once{}
	svc  service.Service
)

func InitService(db *egorm.Component, ec ecache.Cache,
	creditSvc credit.Service, idemSvc idempotency.Service) Service {
	once.Do(func() {
		_ = dao.InitTables(db)
		tokenRepo := repository.NewTokenRepository(dao.NewGORMTokenDAO(db), cache.NewTokenECache(ec))
		usageRepo := repository.NewUsageRepository(dao.NewGORMUsageDAO(db))
		validator := service.NewSessionValidator(tokenRepo)
		svc = service.NewCrossAppService(validator, usageRepo, creditSvc, idemSvc)
	})
	return svc
}

func initPurchaseConsumer(svc Service, idemSvc idempotency.Service, q mq.MQ) *event.PurchaseConsumer {
	c, err := event.NewPurchaseConsumer(svc, idemSvc, q)
	if err != nil {
		panic(err)
	}
	return c
}
