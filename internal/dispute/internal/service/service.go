// Copyright 2024 opshive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
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
	"time"

	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/repository"
	"github.com/opshive/opshive/internal/dispute/internal/repository/dao"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrDisputeNotFound = dao.ErrDisputeNotFound
	// ErrInvalidDisputeStatus 状态机不允许的流转
	ErrInvalidDisputeStatus = dao.ErrInvalidStatus
	ErrTransactionNotFound  = errors.New("流水不存在")
	ErrInvalidRefundAmount  = errors.New("非法的退还金额")
)

//go:generate mockgen -source=./service.go -destination=../../mocks/dispute.mock.go -package=disputemocks -typed Service
type Service interface {
	// Submit 用户对某笔流水提交申诉,校验流水归属
	Submit(ctx context.Context, d domain.Dispute) (int64, error)
	// BeginReview 管理员领取申诉,pending -> under_review
	BeginReview(ctx context.Context, id int64, admin credit.AdminContext) error
	// Resolve 处理申诉。全额/部分退还时补偿入账与状态变更在同一事务内完成
	Resolve(ctx context.Context, id int64, resolution domain.Resolution, amount int64, notes string, admin credit.AdminContext) error
	// Reject 驳回申诉,under_review -> rejected
	Reject(ctx context.Context, id int64, notes string, admin credit.AdminContext) error
	// Appeal 用户对被驳回的申诉重新申诉,rejected -> pending
	Appeal(ctx context.Context, id, uid int64, reason string) error
	Info(ctx context.Context, id int64) (domain.Dispute, error)
	List(ctx context.Context, uid int64, offset, limit int) ([]domain.Dispute, int64, error)
	ListPending(ctx context.Context, offset, limit int) ([]domain.Dispute, int64, error)
	PendingCount(ctx context.Context) (int64, error)
}

type service struct {
	repo      repository.DisputeRepository
	creditSvc credit.Service
}

func NewDisputeService(repo repository.DisputeRepository, creditSvc credit.Service) Service {
	return &service{
		repo:      repo,
		creditSvc: creditSvc,
	}
}

func (s *service) Submit(ctx context.Context, d domain.Dispute) (int64, error) {
	t, err := s.creditSvc.FindTransactionBySN(ctx, d.TransactionSN)
	if err != nil {
		if errors.Is(err, credit.ErrAccountNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrTransactionNotFound, d.TransactionSN)
		}
		return 0, err
	}
	if t.Uid != d.Uid {
		return 0, fmt.Errorf("%w: %s", ErrTransactionNotFound, d.TransactionSN)
	}
	disputed := t.Amount
	if disputed < 0 {
		disputed = -disputed
	}
	if d.RequestedAmount <= 0 || d.RequestedAmount > disputed {
		return 0, fmt.Errorf("%w: 请求 %d, 流水 %d", ErrInvalidRefundAmount, d.RequestedAmount, disputed)
	}
	d.Status = domain.DisputeStatusPending
	d.SubmittedAt = time.Now().UnixMilli()
	return s.repo.Create(ctx, d)
}

func (s *service) BeginReview(ctx context.Context, id int64, admin credit.AdminContext) error {
	return s.repo.UpdateStatus(ctx, id,
		domain.DisputeStatusPending, domain.DisputeStatusUnderReview,
		map[string]any{
			"admin_uid":   admin.Uid,
			"reviewed_at": time.Now().UnixMilli(),
		})
}

func (s *service) Resolve(ctx context.Context, id int64, resolution domain.Resolution, amount int64, notes string, admin credit.AdminContext) error {
	d, err := s.repo.FindById(ctx, id)
	if err != nil {
		return err
	}
	if !d.Status.CanTransitionTo(domain.DisputeStatusResolved) {
		return fmt.Errorf("%w: 当前状态 %d", ErrInvalidDisputeStatus, d.Status)
	}
	refund, err := s.refundAmount(d, resolution, amount)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"resolution":      resolution.ToUint8(),
		"resolved_amount": refund,
		"admin_uid":       admin.Uid,
		"admin_notes":     notes,
		"resolved_at":     time.Now().UnixMilli(),
	}
	return s.repo.ResolveInTx(ctx, id,
		domain.DisputeStatusUnderReview, domain.DisputeStatusResolved,
		updates, func(tx *gorm.DB) error {
			if refund == 0 {
				return nil
			}
			_, err := s.creditSvc.AddCreditsTx(tx, credit.Transaction{
				Uid:    d.Uid,
				Amount: refund,
				Kind:   credit.KindDisputeResolution,
				Biz:    "dispute",
				BizId:  id,
				Desc:   "申诉补偿",
				Metadata: map[string]string{
					"dispute_id":  strconv.FormatInt(id, 10),
					"original_sn": d.TransactionSN,
					"admin_uid":   strconv.FormatInt(admin.Uid, 10),
					"admin_email": admin.Email,
				},
			})
			return err
		})
}

// refundAmount 按结论推导补偿金额:全额退还取申诉金额,部分退还取管理员给定金额,
// 解释说明不产生补偿
func (s *service) refundAmount(d domain.Dispute, resolution domain.Resolution, amount int64) (int64, error) {
	switch resolution {
	case domain.ResolutionFullRefund:
		return d.RequestedAmount, nil
	case domain.ResolutionPartialRefund:
		if amount <= 0 || amount > d.RequestedAmount {
			return 0, fmt.Errorf("%w: 给定 %d, 申诉 %d", ErrInvalidRefundAmount, amount, d.RequestedAmount)
		}
		return amount, nil
	case domain.ResolutionExplanation:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: 非法结论 %d", ErrInvalidDisputeStatus, resolution)
	}
}

func (s *service) Reject(ctx context.Context, id int64, notes string, admin credit.AdminContext) error {
	return s.repo.UpdateStatus(ctx, id,
		domain.DisputeStatusUnderReview, domain.DisputeStatusRejected,
		map[string]any{
			"resolution":  domain.ResolutionRejected.ToUint8(),
			"admin_uid":   admin.Uid,
			"admin_notes": notes,
			"resolved_at": time.Now().UnixMilli(),
		})
}

func (s *service) Appeal(ctx context.Context, id, uid int64, reason string) error {
	d, err := s.repo.FindById(ctx, id)
	if err != nil {
		return err
	}
	if d.Uid != uid {
		return ErrDisputeNotFound
	}
	if !d.Status.CanTransitionTo(domain.DisputeStatusPending) {
		return fmt.Errorf("%w: 当前状态 %d", ErrInvalidDisputeStatus, d.Status)
	}
	updates := map[string]any{
		"resolution":   uint8(0),
		"submitted_at": time.Now().UnixMilli(),
	}
	if reason != "" {
		updates["reason"] = reason
	}
	return s.repo.UpdateStatus(ctx, id,
		domain.DisputeStatusRejected, domain.DisputeStatusPending, updates)
}

func (s *service) Info(ctx context.Context, id int64) (domain.Dispute, error) {
	return s.repo.FindById(ctx, id)
}

func (s *service) List(ctx context.Context, uid int64, offset, limit int) ([]domain.Dispute, int64, error) {
	var (
		eg    errgroup.Group
		ds    []domain.Dispute
		total int64
	)
	eg.Go(func() error {
		var err error
		ds, err = s.repo.FindByUID(ctx, uid, offset, limit)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.TotalByUID(ctx, uid)
		return err
	})
	return ds, total, eg.Wait()
}

func (s *service) ListPending(ctx context.Context, offset, limit int) ([]domain.Dispute, int64, error) {
	var (
		eg    errgroup.Group
		ds    []domain.Dispute
		total int64
	)
	eg.Go(func() error {
		var err error
		ds, err = s.repo.FindByStatus(ctx, domain.DisputeStatusPending, offset, limit)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.TotalByStatus(ctx, domain.DisputeStatusPending)
		return err
	})
	return ds, total, eg.Wait()
}

func (s *service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.TotalByStatus(ctx, domain.DisputeStatusPending)
}
