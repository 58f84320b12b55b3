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

package repository

import (
	"context"

	"github.com/ecodeclub/ekit/slice"
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/repository/dao"
	"gorm.io/gorm"
)

type DisputeRepository interface {
	Create(ctx context.Context, d domain.Dispute) (int64, error)
	FindById(ctx context.Context, id int64) (domain.Dispute, error)
	FindByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Dispute, error)
	TotalByUID(ctx context.Context, uid int64) (int64, error)
	FindByStatus(ctx context.Context, status domain.DisputeStatus, offset, limit int) ([]domain.Dispute, error)
	TotalByStatus(ctx context.Context, status domain.DisputeStatus) (int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.DisputeStatus, updates map[string]any) error
	// ResolveInTx 状态变更与 fn 在同一事务内执行
	ResolveInTx(ctx context.Context, id int64, from, to domain.DisputeStatus, updates map[string]any, fn func(tx *gorm.DB) error) error
}

type disputeRepository struct {
	dao dao.DisputeDAO
}

func NewDisputeRepository(d dao.DisputeDAO) DisputeRepository {
	return &disputeRepository{dao: d}
}

func (r *disputeRepository) Create(ctx context.Context, d domain.Dispute) (int64, error) {
	return r.dao.Insert(ctx, r.toEntity(d))
}

func (r *disputeRepository) FindById(ctx context.Context, id int64) (domain.Dispute, error) {
	d, err := r.dao.FindById(ctx, id)
	if err != nil {
		return domain.Dispute{}, err
	}
	return r.toDomain(d), nil
}

func (r *disputeRepository) FindByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Dispute, error) {
	ds, err := r.dao.FindByUID(ctx, uid, offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(ds, func(idx int, src dao.Dispute) domain.Dispute {
		return r.toDomain(src)
	}), nil
}

func (r *disputeRepository) TotalByUID(ctx context.Context, uid int64) (int64, error) {
	return r.dao.TotalByUID(ctx, uid)
}

func (r *disputeRepository) FindByStatus(ctx context.Context, status domain.DisputeStatus, offset, limit int) ([]domain.Dispute, error) {
	ds, err := r.dao.FindByStatus(ctx, status.ToUint8(), offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(ds, func(idx int, src dao.Dispute) domain.Dispute {
		return r.toDomain(src)
	}), nil
}

func (r *disputeRepository) TotalByStatus(ctx context.Context, status domain.DisputeStatus) (int64, error) {
	return r.dao.TotalByStatus(ctx, status.ToUint8())
}

func (r *disputeRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.DisputeStatus, updates map[string]any) error {
	return r.dao.UpdateStatus(ctx, id, from.ToUint8(), to.ToUint8(), updates)
}

func (r *disputeRepository) ResolveInTx(ctx context.Context, id int64, from, to domain.DisputeStatus, updates map[string]any, fn func(tx *gorm.DB) error) error {
	return r.dao.ResolveTx(ctx, id, from.ToUint8(), to.ToUint8(), updates, fn)
}

func (r *disputeRepository) toEntity(d domain.Dispute) dao.Dispute {
	return dao.Dispute{
		Id:              d.ID,
		Uid:             d.Uid,
		TransactionSN:   d.TransactionSN,
		Reason:          d.Reason,
		RequestedAmount: d.RequestedAmount,
		ResolvedAmount:  d.ResolvedAmount,
		Resolution:      d.Resolution.ToUint8(),
		Status:          d.Status.ToUint8(),
		AdminUid:        d.AdminUid,
		AdminNotes:      d.AdminNotes,
		SubmittedAt:     d.SubmittedAt,
		ReviewedAt:      d.ReviewedAt,
		ResolvedAt:      d.ResolvedAt,
	}
}

func (r *disputeRepository) toDomain(d dao.Dispute) domain.Dispute {
	return domain.Dispute{
		ID:              d.Id,
		Uid:             d.Uid,
		TransactionSN:   d.TransactionSN,
		Reason:          d.Reason,
		RequestedAmount: d.RequestedAmount,
		ResolvedAmount:  d.ResolvedAmount,
		Resolution:      domain.Resolution(d.Resolution),
		Status:          domain.DisputeStatus(d.Status),
		AdminUid:        d.AdminUid,
		AdminNotes:      d.AdminNotes,
		SubmittedAt:     d.SubmittedAt,
		ReviewedAt:      d.ReviewedAt,
		ResolvedAt:      d.ResolvedAt,
		Utime:           d.Utime,
	}
}
