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

package ioc

import (
	"github.com/google/wire"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp"
	"github.com/opshive/opshive/internal/dispute"
	"github.com/opshive/opshive/internal/idempotency"
	"github.com/opshive/opshive/internal/user"
)

var BaseSet = wire.NewSet(InitDB, InitCache, InitRedis, InitMQ)

func InitApp() (*App, error) {
	wire.Build(wire.Struct(new(App), "*"),
		BaseSet,
		InitSession,
		user.InitModule,
		wire.FieldsOf(new(*user.Module), "Svc"),
		idempotency.InitModule,
		wire.FieldsOf(new(*idempotency.Module), "Svc", "SweepJob"),
		credit.InitModule,
		wire.FieldsOf(new(*credit.Module), "Svc", "Hdl", "AdminHdl", "ReconcileJob", "Consumer"),
		dispute.InitModule,
		wire.FieldsOf(new(*dispute.Module), "Hdl", "AdminHdl"),
		crossapp.InitModule,
		wire.FieldsOf(new(*crossapp.Module), "Hdl", "AdminHdl", "Consumer"),
		initGinxServer,
		InitAdminServer,
		initCronJobs,
		initConsumers,
	)
	return new(App), nil
}
