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

	"github.com/ecodeclub/ekit/iox"
	"github.com/ecodeclub/ginx/session"
	"github.com/ego-component/egorm"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/opshive/opshive/internal/credit"
	creditdao "github.com/opshive/opshive/internal/credit/internal/repository/dao"
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/errs"
	"github.com/opshive/opshive/internal/dispute/internal/repository"
	"github.com/opshive/opshive/internal/dispute/internal/repository/dao"
	"github.com/opshive/opshive/internal/dispute/internal/service"
	"github.com/opshive/opshive/internal/dispute/internal/web"
	"github.com/opshive/opshive/internal/test"
	testioc "github.com/opshive/opshive/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testUID = int64(6001)

type HandlerTestSuite struct {
	suite.Suite
	db        *egorm.Component
	server    *egin.Component
	svc       service.Service
	creditSvc credit.Service
}

func TestDisputeHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	require.NoError(s.T(), creditdao.InitTables(s.db))
	require.NoError(s.T(), dao.InitTables(s.db))
	s.creditSvc = credit.InitService(s.db)
	repo := repository.NewDisputeRepository(dao.NewGORMDisputeDAO(s.db))
	s.svc = service.NewDisputeService(repo, s.creditSvc)
	hdl := web.NewHandler(s.svc)

	econf.Set("server", map[string]any{"contextTimeout": "1s"})
	server := egin.Load("server").Build()
	server.Use(func(ctx *gin.Context) {
		ctx.Set("_session", session.NewMemorySession(session.Claims{
			Uid: testUID,
		}))
	})
	hdl.PrivateRoutes(server.Engine)
	s.server = server
}

func (s *HandlerTestSuite) TearDownSuite() {
	for _, table := range []string{"disputes", "account_credits", "credit_transactions"} {
		err := s.db.Exec("DROP TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *HandlerTestSuite) TearDownTest() {
	for _, table := range []string{"disputes", "account_credits", "credit_transactions"} {
		err := s.db.Exec("TRUNCATE TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *HandlerTestSuite) spendTransaction(uid, amount int64) credit.Transaction {
	ctx := context.Background()
	_, err := s.creditSvc.AddCredits(ctx, credit.Transaction{
		Uid: uid, Amount: amount * 2, Kind: credit.KindSubscription,
	})
	require.NoError(s.T(), err)
	tr, err := s.creditSvc.SpendCredits(ctx, credit.Transaction{
		Uid: uid, Amount: amount, Kind: credit.KindConsumption,
	})
	require.NoError(s.T(), err)
	return tr
}

func (s *HandlerTestSuite) TestSubmit() {
	t := s.T()
	tr := s.spendTransaction(testUID, 40)

	testCases := []struct {
		name     string
		req      web.SubmitReq
		wantCode int
		wantBiz  int
	}{
		{
			name: "提交成功",
			req: web.SubmitReq{
				TransactionSN:   tr.SN,
				Reason:          "任务失败但被扣费",
				RequestedAmount: 40,
			},
			wantCode: 200,
		},
		{
			name: "流水不存在",
			req: web.SubmitReq{
				TransactionSN:   "no-such-sn",
				RequestedAmount: 10,
			},
			wantCode: 500,
			wantBiz:  errs.TransactionNotFound.Code,
		},
		{
			name: "申诉金额超出流水",
			req: web.SubmitReq{
				TransactionSN:   tr.SN,
				RequestedAmount: 41,
			},
			wantCode: 500,
			wantBiz:  errs.InvalidRefundAmount.Code,
		},
	}
	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost,
				"/dispute/submit", iox.NewJSONReader(tc.req))
			require.NoError(t, err)
			req.Header.Set("content-type", "application/json")
			recorder := test.NewJSONResponseRecorder[web.SubmitResp]()
			s.server.ServeHTTP(recorder, req)
			require.Equal(t, tc.wantCode, recorder.Code)
			res := recorder.MustScan()
			if tc.wantCode == 200 {
				assert.True(t, res.Data.ID > 0)
			} else {
				assert.Equal(t, tc.wantBiz, res.Code)
			}
		})
	}
}

func (s *HandlerTestSuite) TestListAndDetail() {
	t := s.T()
	ctx := context.Background()
	tr := s.spendTransaction(testUID, 40)
	id, err := s.svc.Submit(ctx, domain.Dispute{
		Uid: testUID, TransactionSN: tr.SN, Reason: "重复扣费", RequestedAmount: 20,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost,
		"/dispute/list", iox.NewJSONReader(web.ListReq{Limit: 10}))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	recorder := test.NewJSONResponseRecorder[web.ListResp]()
	s.server.ServeHTTP(recorder, req)
	require.Equal(t, 200, recorder.Code)
	res := recorder.MustScan()
	assert.Equal(t, int64(1), res.Data.Total)
	require.Len(t, res.Data.Disputes, 1)
	assert.Equal(t, tr.SN, res.Data.Disputes[0].TransactionSN)
	assert.NotEmpty(t, res.Data.Disputes[0].SubmittedAt)

	req, err = http.NewRequest(http.MethodPost,
		"/dispute/detail", iox.NewJSONReader(web.IDReq{ID: id}))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	detail := test.NewJSONResponseRecorder[web.Dispute]()
	s.server.ServeHTTP(detail, req)
	require.Equal(t, 200, detail.Code)
	assert.Equal(t, "重复扣费", detail.MustScan().Data.Reason)

	// 别人的申诉查不到
	other := s.spendTransaction(testUID+1, 10)
	otherId, err := s.svc.Submit(ctx, domain.Dispute{
		Uid: testUID + 1, TransactionSN: other.SN, RequestedAmount: 10,
	})
	require.NoError(t, err)
	req, err = http.NewRequest(http.MethodPost,
		"/dispute/detail", iox.NewJSONReader(web.IDReq{ID: otherId}))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	notFound := test.NewJSONResponseRecorder[web.Dispute]()
	s.server.ServeHTTP(notFound, req)
	require.Equal(t, 500, notFound.Code)
	assert.Equal(t, errs.DisputeNotFound.Code, notFound.MustScan().Code)
}
