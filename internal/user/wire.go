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

package user

import (
	"sync"

	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/opshive/opshive/internal/user/internal/repository"
	"github.com/opshive/opshive/internal/user/internal/repository/dao"
	"github.com/opshive/opshive/internal/user/internal/service"
)

func InitModule(db *egorm.Component) (*Module, error) {
	wire.Build(
		wire.Struct(new(Module), "*"),
		InitService,
	)
	return new(Module), nil
}

var (
	once = &sync.Once{}
	svc  service.UserService
)

func InitService(db *egorm.Component) UserService {
	once.Do(func() {
		_ = dao.InitTables(db)
		d := dao.NewGORMUserDAO(db)
		r := repository.NewUserRepository(d)
		svc = service.NewUserService(r)
	})
	return svc
}
