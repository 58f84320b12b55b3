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
	"encoding/json"
	"testing"
	"time"

	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp/internal/event"
	"github.com/opshive/opshive/internal/crossapp/internal/repository"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/cache"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/dao"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"github.com/opshive/opshive/internal/idempotency"
	testioc "github.com/opshive/opshive/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModuleTestSuite struct {
	suite.Suite
	db        *egorm.Component
	mq        mq.MQ
	svc       service.Service
	creditSvc credit.Service
}

func TestCrossAppModule(t *testing.T) {
	suite.Run(t, new(ModuleTestSuite))
}

func (s *ModuleTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	s.mq = testioc.InitMQ()
	require.NoError(s.T(), dao.InitTables(s.db))
	ec := testioc.InitCache()
	s.creditSvc = credit.InitService(s.db)
	idemSvc := idempotency.InitService(s.db, ec)
	validator := service.NewSessionValidator(repository.NewTokenRepository(
		dao.NewGORMTokenDAO(s.db), cache.NewTokenECache(ec)))
	s.svc = service.NewCrossAppService(validator,
		repository.NewUsageRepository(dao.NewGORMUsageDAO(s.db)),
		s.creditSvc, idemSvc)
}

func (s *ModuleTestSuite) TearDownSuite() {
	for _, table := range []string{
		"app_access_tokens", "app_credit_usages",
		"account_credits", "credit_transactions", "idempotency_records",
	} {
		err := s.db.Exec("DROP TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *ModuleTestSuite) TearDownTest() {
	for _, table := range []string{
		"app_access_tokens", "app_credit_usages",
		"account_credits", "credit_transactions", "idempotency_records",
	} {
		err := s.db.Exec("TRUNCATE TABLE `" + table + "`").Error
		s.NoError(err)
	}
}

func (s *ModuleTestSuite) seedToken(token, appId string, uid int64, perms string) {
	now := time.Now()
	err := s.db.Create(&dao.AppAccessToken{
		Token:       token,
		AppId:       appId,
		Uid:         uid,
		Permissions: perms,
		ExpireAt:    now.Add(time.Hour).UnixMilli(),
		Ctime:       now.UnixMilli(),
		Utime:       now.UnixMilli(),
	}).Error
	require.NoError(s.T(), err)
}

func (s *ModuleTestSuite) addCredits(uid, amount int64) {
	_, err := s.creditSvc.AddCredits(context.Background(), credit.Transaction{
		Uid: uid, Amount: amount, Kind: credit.KindSubscription,
	})
	require.NoError(s.T(), err)
}

func (s *ModuleTestSuite) TestGetBalance() {
	t := s.T()
	ctx := context.Background()
	uid := int64(8001)
	s.seedToken("tk-balance", "flowrunner", uid, "read-balance,consume-credits")
	s.addCredits(uid, 100)

	c, err := s.svc.GetBalance(ctx, "tk-balance")
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Balance)

	// 非法令牌
	_, err = s.svc.GetBalance(ctx, "tk-unknown")
	assert.ErrorIs(t, err, service.ErrInvalidAppToken)

	// 权限不足
	s.seedToken("tk-noperm", "flowrunner", uid, "consume-credits")
	_, err = s.svc.GetBalance(ctx, "tk-noperm")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// 过期令牌等同不存在
	err = s.db.Create(&dao.AppAccessToken{
		Token: "tk-expired", AppId: "flowrunner", Uid: uid,
		Permissions: "read-balance",
		ExpireAt:    time.Now().Add(-time.Minute).UnixMilli(),
	}).Error
	require.NoError(t, err)
	_, err = s.svc.GetBalance(ctx, "tk-expired")
	assert.ErrorIs(t, err, service.ErrInvalidAppToken)
}

func (s *ModuleTestSuite) TestConsumeCredits() {
	t := s.T()
	ctx := context.Background()
	uid := int64(8002)
	s.seedToken("tk-consume", "flowrunner", uid, "read-balance,consume-credits")
	s.addCredits(uid, 100)

	res, err := s.svc.ConsumeCredits(ctx, "tk-consume", service.ConsumeRequest{
		RequestId: "req-001",
		Amount:    30,
		Desc:      "工作流执行",
		JobId:     42,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SN)
	assert.Equal(t, int64(70), res.BalanceAfter)

	// 同一 RequestId 重复提交返回首次结果,不再扣费
	res2, err := s.svc.ConsumeCredits(ctx, "tk-consume", service.ConsumeRequest{
		RequestId: "req-001",
		Amount:    30,
		JobId:     42,
	})
	require.NoError(t, err)
	assert.Equal(t, res.SN, res2.SN)
	c, err := s.creditSvc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(70), c.Balance)
	_, total, err := s.creditSvc.ListTransactions(ctx, uid, 0, 10, credit.TransactionFilter{
		Kind: credit.KindConsumption,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// 消耗计数同步累加
	us, err := s.svc.Usage(ctx, uid)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, "flowrunner", us[0].AppId)
	assert.Equal(t, int64(30), us[0].CreditsConsumed)

	// 余额不足
	_, err = s.svc.ConsumeCredits(ctx, "tk-consume", service.ConsumeRequest{
		RequestId: "req-002",
		Amount:    1000,
	})
	assert.ErrorIs(t, err, credit.ErrCreditNotEnough)

	// 缺少扣费权限
	s.seedToken("tk-readonly", "flowrunner", uid, "read-balance")
	_, err = s.svc.ConsumeCredits(ctx, "tk-readonly", service.ConsumeRequest{
		RequestId: "req-003",
		Amount:    10,
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func (s *ModuleTestSuite) TestRebuildUsage() {
	t := s.T()
	ctx := context.Background()
	uid := int64(8003)
	s.seedToken("tk-app-a", "flowrunner", uid, "consume-credits")
	s.seedToken("tk-app-b", "docsmith", uid, "consume-credits")
	s.addCredits(uid, 200)
	require.NoError(t, s.svc.RecordPurchase(ctx, uid, "docsmith", 40))

	for i, c := range []struct {
		token  string
		reqId  string
		amount int64
	}{
		{"tk-app-a", "rb-001", 30},
		{"tk-app-a", "rb-002", 20},
		{"tk-app-b", "rb-003", 10},
	} {
		_, err := s.svc.ConsumeCredits(ctx, c.token, service.ConsumeRequest{
			RequestId: c.reqId, Amount: c.amount, JobId: int64(i),
		})
		require.NoError(t, err)
	}

	// 人为篡改计数后重建,消耗与购买都应当从流水追平
	err := s.db.Exec("UPDATE `app_credit_usages` SET credits_consumed = 999, credits_purchased = 999 WHERE uid = ?", uid).Error
	require.NoError(t, err)
	require.NoError(t, s.svc.RebuildUsage(ctx, uid))

	us, err := s.svc.Usage(ctx, uid)
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, "docsmith", us[0].AppId)
	assert.Equal(t, int64(10), us[0].CreditsConsumed)
	assert.Equal(t, int64(40), us[0].CreditsPurchased)
	assert.NotZero(t, us[0].LastPurchasedAt)
	assert.Equal(t, "flowrunner", us[1].AppId)
	assert.Equal(t, int64(50), us[1].CreditsConsumed)
	assert.Equal(t, int64(0), us[1].CreditsPurchased)
}

func (s *ModuleTestSuite) TestPurchaseConsumer() {
	t := s.T()
	ctx := context.Background()
	uid := int64(8004)
	idemSvc := idempotency.InitService(s.db, testioc.InitCache())
	consumer, err := event.NewPurchaseConsumer(s.svc, idemSvc, s.mq)
	require.NoError(t, err)

	producer, err := s.mq.Producer(event.PurchaseEventName)
	require.NoError(t, err)
	evt := event.PurchaseEvent{
		Key:     "purchase-001",
		AppId:   "flowrunner",
		Uid:     uid,
		Credits: 60,
	}
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	// 同一事件投递两次,入账与购买计数都只生效一次
	_, err = producer.Produce(ctx, &mq.Message{Key: []byte(evt.Key), Value: body})
	require.NoError(t, err)
	_, err = producer.Produce(ctx, &mq.Message{Key: []byte(evt.Key), Value: body})
	require.NoError(t, err)

	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	require.NoError(t, consumer.Consume(cctx))
	require.NoError(t, consumer.Consume(cctx))

	c, err := s.creditSvc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.Balance)
	ts, total, err := s.creditSvc.ListTransactions(ctx, uid, 0, 10, credit.TransactionFilter{
		Kind: credit.KindPurchase,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, ts, 1)
	assert.Equal(t, "flowrunner", ts[0].Metadata["app_id"])

	us, err := s.svc.Usage(ctx, uid)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, int64(60), us[0].CreditsPurchased)
	assert.NotZero(t, us[0].LastPurchasedAt)

	// 重建后购买计数不丢失
	require.NoError(t, s.svc.RebuildUsage(ctx, uid))
	us, err = s.svc.Usage(ctx, uid)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, int64(60), us[0].CreditsPurchased)
}
