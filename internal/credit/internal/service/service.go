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
	"errors"
	"fmt"
	"strconv"

	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/repository"
	"github.com/opshive/opshive/internal/pkg/sequencenumber"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount         = errors.New("积分数量非法")
	ErrAccountNotFound       = repository.ErrAccountNotFound
	ErrCreditNotEnough       = repository.ErrCreditNotEnough
	ErrServicePaused         = repository.ErrServicePaused
	ErrDuplicatedTransaction = repository.ErrDuplicatedTransaction
)

// AdminContext 管理员操作的审计上下文,写入流水元数据
type AdminContext struct {
	Uid   int64
	Email string
}

//go:generate mockgen -source=./service.go -destination=../../mocks/credit.mock.go -package=creditmocks -typed Service
type Service interface {
	// AddCredits 增加积分,t.Amount 必须为正数,服务暂停时拒绝
	AddCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	// AddCreditsTx 在外部事务内增加积分,供争议补偿使用,不校验服务状态
	AddCreditsTx(tx *gorm.DB, t domain.Transaction) (domain.Transaction, error)
	// SpendCredits 消耗积分,t.Amount 为正数的消耗数量
	SpendCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	// RemoveCredits 管理员强制扣减,不校验服务状态
	RemoveCredits(ctx context.Context, t domain.Transaction, admin AdminContext) (domain.Transaction, error)
	GetBalance(ctx context.Context, uid int64) (domain.Credit, error)
	ListTransactions(ctx context.Context, uid int64, offset, limit int, f domain.TransactionFilter) ([]domain.Transaction, int64, error)
	FindTransactionBySN(ctx context.Context, sn string) (domain.Transaction, error)
	PauseService(ctx context.Context, uid int64, reason string, admin AdminContext) error
	ResumeService(ctx context.Context, uid int64, admin AdminContext) error
	Stats(ctx context.Context) (domain.Stats, error)
	// ReconcileBalances 校验一页账户的余额与流水合计是否一致,返回不一致的 uid
	ReconcileBalances(ctx context.Context, offset, limit int) (mismatched []int64, checked int, err error)
}

type service struct {
	repo repository.CreditRepository
	sng  *sequencenumber.Generator
	// creditRate 单个积分折算的美元金额
	creditRate decimal.Decimal
}

func NewCreditService(repo repository.CreditRepository, sng *sequencenumber.Generator, creditRate decimal.Decimal) Service {
	return &service{
		repo:       repo,
		sng:        sng,
		creditRate: creditRate,
	}
}

func (s *service) AddCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	t, err := s.completed(t, t.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	if t.Kind == 0 {
		t.Kind = domain.KindPurchase
	}
	return s.repo.AddCredits(ctx, t)
}

func (s *service) AddCreditsTx(tx *gorm.DB, t domain.Transaction) (domain.Transaction, error) {
	t, err := s.completed(t, t.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	return s.repo.AddCreditsTx(tx, t)
}

func (s *service) SpendCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	t, err := s.completed(t, -t.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	if t.Kind == 0 {
		t.Kind = domain.KindConsumption
	}
	return s.repo.SpendCredits(ctx, t)
}

func (s *service) RemoveCredits(ctx context.Context, t domain.Transaction, admin AdminContext) (domain.Transaction, error) {
	t, err := s.completed(t, -t.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.Kind = domain.KindAdminAdjustment
	t.Metadata = withAdminMetadata(t.Metadata, admin)
	return s.repo.RemoveCredits(ctx, t)
}

// completed 校验数量并补全流水的 SN、签名后的变动数量与折算金额
func (s *service) completed(t domain.Transaction, signedAmount int64) (domain.Transaction, error) {
	if t.Amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("%w: %d", ErrInvalidAmount, t.Amount)
	}
	t.Amount = signedAmount
	if t.SN == "" {
		sn, err := s.sng.Generate(t.Uid)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("生成流水序列号失败: %w", err)
		}
		t.SN = sn
	}
	if t.AmountUSD.IsZero() && s.creditRate.IsPositive() {
		t.AmountUSD = s.creditRate.Mul(decimal.NewFromInt(signedAmount))
	}
	return t, nil
}

func (s *service) GetBalance(ctx context.Context, uid int64) (domain.Credit, error) {
	return s.repo.GetCreditByUID(ctx, uid)
}

func (s *service) ListTransactions(ctx context.Context, uid int64, offset, limit int, f domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	var (
		eg    errgroup.Group
		ts    []domain.Transaction
		total int64
	)
	eg.Go(func() error {
		var err error
		ts, err = s.repo.ListTransactionsByUID(ctx, uid, offset, limit, f)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.TotalTransactionsByUID(ctx, uid, f)
		return err
	})
	return ts, total, eg.Wait()
}

func (s *service) FindTransactionBySN(ctx context.Context, sn string) (domain.Transaction, error) {
	return s.repo.FindTransactionBySN(ctx, sn)
}

func (s *service) PauseService(ctx context.Context, uid int64, reason string, admin AdminContext) error {
	t, err := s.auditTransaction(uid, "暂停服务", admin)
	if err != nil {
		return err
	}
	t.Metadata["reason"] = reason
	return s.repo.UpdateServiceStatus(ctx, uid, domain.ServiceStatusPaused, t)
}

func (s *service) ResumeService(ctx context.Context, uid int64, admin AdminContext) error {
	t, err := s.auditTransaction(uid, "恢复服务", admin)
	if err != nil {
		return err
	}
	return s.repo.UpdateServiceStatus(ctx, uid, domain.ServiceStatusActive, t)
}

// auditTransaction 构造零额审计流水,不改变余额
func (s *service) auditTransaction(uid int64, desc string, admin AdminContext) (domain.Transaction, error) {
	sn, err := s.sng.Generate(uid)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("生成流水序列号失败: %w", err)
	}
	return domain.Transaction{
		SN:       sn,
		Uid:      uid,
		Amount:   0,
		Kind:     domain.KindServiceStatus,
		Desc:     desc,
		Metadata: withAdminMetadata(nil, admin),
	}, nil
}

func (s *service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *service) ReconcileBalances(ctx context.Context, offset, limit int) ([]int64, int, error) {
	uids, err := s.repo.ListAccountUIDs(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("获取账户列表失败: %w", err)
	}
	var mismatched []int64
	for _, uid := range uids {
		c, err := s.repo.GetCreditByUID(ctx, uid)
		if err != nil {
			return nil, 0, fmt.Errorf("获取账户余额失败: uid=%d %w", uid, err)
		}
		sum, err := s.repo.SumTransactionAmountByUID(ctx, uid)
		if err != nil {
			return nil, 0, fmt.Errorf("计算流水合计失败: uid=%d %w", uid, err)
		}
		if c.Balance != sum {
			mismatched = append(mismatched, uid)
		}
	}
	return mismatched, len(uids), nil
}

func withAdminMetadata(metadata map[string]string, admin AdminContext) map[string]string {
	if metadata == nil {
		metadata = make(map[string]string, 2)
	}
	metadata["admin_uid"] = strconv.FormatInt(admin.Uid, 10)
	if admin.Email != "" {
		metadata["admin_email"] = admin.Email
	}
	return metadata
}
