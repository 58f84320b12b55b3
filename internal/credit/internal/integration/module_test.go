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
	"sync"
	"testing"

	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/event"
	"github.com/opshive/opshive/internal/credit/internal/repository"
	"github.com/opshive/opshive/internal/credit/internal/repository/dao"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/idempotency"
	"github.com/opshive/opshive/internal/pkg/sequencenumber"
	testioc "github.com/opshive/opshive/internal/test/ioc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModuleTestSuite struct {
	suite.Suite
	db      *egorm.Component
	mq      mq.MQ
	dao     dao.CreditDAO
	svc     service.Service
	idemSvc idempotency.Service
}

func TestCreditModule(t *testing.T) {
	suite.Run(t, new(ModuleTestSuite))
}

func (s *ModuleTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	require.NoError(s.T(), dao.InitTables(s.db))
	s.mq = testioc.InitMQ()
	s.dao = dao.NewCreditGORMDAO(s.db)
	repo := repository.NewCreditRepository(s.dao)
	rate, err := decimal.NewFromString("0.10")
	require.NoError(s.T(), err)
	s.svc = service.NewCreditService(repo, sequencenumber.NewGenerator(), rate)
	s.idemSvc = idempotency.InitService(s.db, testioc.InitCache())
}

func (s *ModuleTestSuite) TearDownSuite() {
	err := s.db.Exec("DROP TABLE `account_credits`").Error
	s.NoError(err)
	err = s.db.Exec("DROP TABLE `credit_transactions`").Error
	s.NoError(err)
}

func (s *ModuleTestSuite) TearDownTest() {
	err := s.db.Exec("TRUNCATE TABLE `account_credits`").Error
	s.NoError(err)
	err = s.db.Exec("TRUNCATE TABLE `credit_transactions`").Error
	s.NoError(err)
}

func (s *ModuleTestSuite) TestAddCredits() {
	t := s.T()
	uid := int64(6001)
	tr, err := s.svc.AddCredits(context.Background(), domain.Transaction{
		Uid:    uid,
		Amount: 100,
		Kind:   domain.KindSubscription,
		Biz:    "subscription",
		BizId:  1,
		Desc:   "订阅赠送",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tr.SN)
	assert.Equal(t, int64(100), tr.BalanceAfter)
	assert.Equal(t, "10.0000", tr.AmountUSD.StringFixed(4))

	c, err := s.svc.GetBalance(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Balance)
	assert.Equal(t, domain.ServiceStatusActive, c.ServiceStatus)
}

func (s *ModuleTestSuite) TestAddCredits_InvalidAmount() {
	t := s.T()
	_, err := s.svc.AddCredits(context.Background(), domain.Transaction{
		Uid:    6002,
		Amount: 0,
		Kind:   domain.KindSubscription,
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
	_, err = s.svc.AddCredits(context.Background(), domain.Transaction{
		Uid:    6002,
		Amount: -10,
		Kind:   domain.KindSubscription,
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func (s *ModuleTestSuite) TestSpendCredits() {
	t := s.T()
	uid := int64(6003)
	ctx := context.Background()
	_, err := s.svc.AddCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 100, Kind: domain.KindSubscription,
	})
	require.NoError(t, err)

	tr, err := s.svc.SpendCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 40, Kind: domain.KindConsumption, Desc: "自动化任务",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-40), tr.Amount)
	assert.Equal(t, int64(60), tr.BalanceAfter)

	// 余额不足,流水不落库
	_, err = s.svc.SpendCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 100, Kind: domain.KindConsumption,
	})
	assert.ErrorIs(t, err, service.ErrCreditNotEnough)
	c, err := s.svc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.Balance)
	_, total, err := s.svc.ListTransactions(ctx, uid, 0, 10, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func (s *ModuleTestSuite) TestSpendCredits_ServicePaused() {
	t := s.T()
	uid := int64(6004)
	ctx := context.Background()
	admin := service.AdminContext{Uid: 9001, Email: "ops@opshive.io"}
	_, err := s.svc.AddCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 100, Kind: domain.KindSubscription,
	})
	require.NoError(t, err)
	require.NoError(t, s.svc.PauseService(ctx, uid, "欠费", admin))

	_, err = s.svc.SpendCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 10, Kind: domain.KindConsumption,
	})
	assert.ErrorIs(t, err, service.ErrServicePaused)

	// 暂停同样挡住入账,守卫在条件更新里,与并发暂停提交的先后无关
	_, err = s.svc.AddCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 10, Kind: domain.KindSubscription,
	})
	assert.ErrorIs(t, err, service.ErrServicePaused)
	c, err := s.svc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Balance)

	// 暂停期间管理员强制扣减不受限制
	tr, err := s.svc.RemoveCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 30, Desc: "误发回收",
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(70), tr.BalanceAfter)
	assert.Equal(t, "9001", tr.Metadata["admin_uid"])

	require.NoError(t, s.svc.ResumeService(ctx, uid, admin))
	_, err = s.svc.SpendCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 10, Kind: domain.KindConsumption,
	})
	require.NoError(t, err)

	// 暂停和恢复各写入一条零金额审计流水
	ts, _, err := s.svc.ListTransactions(ctx, uid, 0, 10, domain.TransactionFilter{
		Kind: domain.KindServiceStatus,
	})
	require.NoError(t, err)
	require.Len(t, ts, 2)
	for _, tr := range ts {
		assert.Equal(t, int64(0), tr.Amount)
	}
}

func (s *ModuleTestSuite) TestSpendCredits_Concurrent() {
	t := s.T()
	uid := int64(6005)
	ctx := context.Background()
	_, err := s.svc.AddCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 100, Kind: domain.KindSubscription,
	})
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.SpendCredits(ctx, domain.Transaction{
				Uid: uid, Amount: 30, Kind: domain.KindConsumption,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, service.ErrCreditNotEnough)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, succeeded)
	c, err := s.svc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(10), c.Balance)

	// 余额与流水合计一致
	mismatched, _, err := s.svc.ReconcileBalances(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, mismatched)
}

func (s *ModuleTestSuite) TestReconcileBalances_DetectsMismatch() {
	t := s.T()
	uid := int64(6006)
	ctx := context.Background()
	_, err := s.svc.AddCredits(ctx, domain.Transaction{
		Uid: uid, Amount: 100, Kind: domain.KindSubscription,
	})
	require.NoError(t, err)

	// 人为改掉余额制造分歧
	err = s.db.Exec("UPDATE `account_credits` SET balance = 999 WHERE uid = ?", uid).Error
	require.NoError(t, err)

	mismatched, _, err := s.svc.ReconcileBalances(ctx, 0, 100)
	require.NoError(t, err)
	assert.Contains(t, mismatched, uid)
}

func (s *ModuleTestSuite) TestDAO_DuplicatedSN() {
	t := s.T()
	ctx := context.Background()
	tr := dao.CreditTransaction{
		SN:     "dup-sn-001",
		Uid:    6007,
		Amount: 10,
		Kind:   domain.KindSubscription.ToUint8(),
	}
	_, err := s.dao.AddCredits(ctx, tr)
	require.NoError(t, err)
	_, err = s.dao.AddCredits(ctx, tr)
	assert.ErrorIs(t, err, dao.ErrDuplicatedTransaction)
}

func (s *ModuleTestSuite) TestConsumer_DuplicatePaymentEvent() {
	t := s.T()
	uid := int64(6008)
	producer, err := s.mq.Producer(event.PaymentEventName)
	require.NoError(t, err)
	consumer, err := event.NewPaymentConsumer(s.svc, s.idemSvc, s.mq)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = consumer.Stop(context.Background())
	})

	evt := event.PaymentEvent{
		Key:        "payment-evt-001",
		Uid:        uid,
		Credits:    50,
		PaymentRef: "stripe_ch_001",
		Biz:        "payment",
		BizId:      1,
	}
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	ctx := context.Background()
	// webhook 重复投递同一事件
	for i := 0; i < 2; i++ {
		_, err = producer.Produce(ctx, &mq.Message{Value: data})
		require.NoError(t, err)
		err = consumer.Consume(ctx)
		require.NoError(t, err)
	}

	c, err := s.svc.GetBalance(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.Balance)
	_, total, err := s.svc.ListTransactions(ctx, uid, 0, 10, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
