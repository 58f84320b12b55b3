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

package credit

import (
	"sync"

	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/gotomicro/ego/core/econf"
	"github.com/opshive/opshive/internal/credit/internal/event"
	"github.com/opshive/opshive/internal/credit/internal/job"
	"github.com/opshive/opshive/internal/credit/internal/repository"
	"github.com/opshive/opshive/internal/credit/internal/repository/dao"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/credit/internal/web"
	"github.com/opshive/opshive/internal/idempotency"
	"github.com/opshive/opshive/internal/pkg/sequencenumber"
	"github.com/opshive/opshive/internal/user"
	"github.com/shopspring/decimal"
)

func InitModule(db *egorm.Component, q mq.MQ, idemSvc idempotency.Service, userSvc user.UserService) (*Module, error) {
	wire.Build(
		wire.Struct(new(Module), "*"),
		InitService,
		web.NewHandler,
		web.NewAdminHandler,
		initReconcileJob,
		initPaymentConsumer,
	)
	return new(Module), nil
}

var (
	once = &sync.Once{}
	svc  service.Service
)

func InitService(db *egorm.Component) Service {
	once.Do(func() {
		_ = dao.InitTables(db)
		d := dao.NewCreditGORMDAO(db)
		r := repository.NewCreditRepository(d)
		sng := sequencenumber.NewGenerator()
		svc = service.NewCreditService(r, sng, creditRate())
	})
	return svc
}

// creditRate 系统级积分单价,单位美元
func creditRate() decimal.Decimal {
	rate := econf.GetString("credit.rateUSD")
	if rate == "" {
		rate = "0.10"
	}
	res, err := decimal.NewFromString(rate)
	if err != nil {
		panic(err)
	}
	return res
}

func initReconcileJob(svc Service) *ReconcileBalancesJob {
	const reconcileBatchSize = 200
	return job.NewReconcileBalancesJob(svc, reconcileBatchSize)
}

func initPaymentConsumer(svc Service, idemSvc idempotency.Service, q mq.MQ) *event.PaymentConsumer {
	c, err := event.NewPaymentConsumer(svc, idemSvc, q)
	if err != nil {
		panic(err)
	}
	return c
}
