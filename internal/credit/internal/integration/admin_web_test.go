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
	"net/http"
	"testing"

	"github.com/ecodeclub/ginx/session"
	"github.com/ego-component/egorm"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/repository"
	"github.com/opshive/opshive/internal/credit/internal/repository/dao"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/credit/internal/web"
	"github.com/opshive/opshive/internal/pkg/sequencenumber"
	"github.com/opshive/opshive/internal/test"
	testioc "github.com/opshive/opshive/internal/test/ioc"
	"github.com/opshive/opshive/internal/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	db     *egorm.Component
	server *egin.Component
	svc    service.Service
}

func TestCreditAdminHandler(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	require.NoError(s.T(), dao.InitTables(s.db))
	repo := repository.NewCreditRepository(dao.NewCreditGORMDAO(s.db))
	rate, err := decimal.NewFromString("0.10")
	require.NoError(s.T(), err)
	s.svc = service.NewCreditService(repo, sequencenumber.NewGenerator(), rate)
	hdl := web.NewAdminHandler(s.svc, user.InitService(s.db))

	econf.Set("server", map[string]any{"contextTimeout": "1s"})
	server := egin.Load("server").Build()
	server.Use(func(ctx *gin.Context) {
		ctx.Set("_session", session.NewMemorySession(session.Claims{
			Uid: 9001,
		}))
	})
	hdl.PrivateRoutes(server.Engine)
	s.server = server
}

func (s *AdminHandlerTestSuite) TearDownSuite() {
	for _, table := range []string{"account_credits", "credit_transactions", "users"} {
		err := s.db.Exec("DROP TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	for _, table := range []string{"account_credits", "credit_transactions", "users"} {
		err := s.db.Exec("TRUNCATE TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *AdminHandlerTestSuite) TestStats() {
	t := s.T()
	ctx := context.Background()
	err := s.db.Exec("INSERT INTO `users`(`email`, `nickname`, `ctime`, `utime`) VALUES"+
		"(?, ?, 0, 0), (?, ?, 0, 0)",
		"alice@opshive.io", "alice", "bob@opshive.io", "bob").Error
	require.NoError(t, err)
	_, err = s.svc.AddCredits(ctx, domain.Transaction{
		Uid: 7001, Amount: 100, Kind: domain.KindSubscription,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/credit/stats", nil)
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	recorder := test.NewJSONResponseRecorder[web.StatsResp]()
	s.server.ServeHTTP(recorder, req)
	require.Equal(t, 200, recorder.Code)
	res := recorder.MustScan()
	assert.Equal(t, int64(2), res.Data.TotalUsers)
	assert.Equal(t, int64(1), res.Data.AccountsWithBalance)
	assert.Equal(t, int64(100), res.Data.OutstandingCredits)
	assert.Equal(t, int64(1), res.Data.ActiveAccounts)
}
