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

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/repository/dao"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound       = dao.ErrAccountNotFound
	ErrCreditNotEnough       = dao.ErrCreditNotEnough
	ErrServicePaused         = dao.ErrServicePaused
	ErrDuplicatedTransaction = dao.ErrDuplicatedTransaction
)

type CreditRepository interface {
	GetCreditByUID(ctx context.Context, uid int64) (domain.Credit, error)
	AddCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	// AddCreditsTx 供争议模块在其事务内写入补偿流水,不校验服务状态
	AddCreditsTx(tx *gorm.DB, t domain.Transaction) (domain.Transaction, error)
	SpendCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	RemoveCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	UpdateServiceStatus(ctx context.Context, uid int64, status domain.ServiceStatus, t domain.Transaction) error
	ListTransactionsByUID(ctx context.Context, uid int64, offset, limit int, f domain.TransactionFilter) ([]domain.Transaction, error)
	TotalTransactionsByUID(ctx context.Context, uid int64, f domain.TransactionFilter) (int64, error)
	FindTransactionBySN(ctx context.Context, sn string) (domain.Transaction, error)
	SumTransactionAmountByUID(ctx context.Context, uid int64) (int64, error)
	ListAccountUIDs(ctx context.Context, offset, limit int) ([]int64, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type creditRepository struct {
	dao dao.CreditDAO
}

func NewCreditRepository(d dao.CreditDAO) CreditRepository {
	return &creditRepository{dao: d}
}

func (r *creditRepository) GetCreditByUID(ctx context.Context, uid int64) (domain.Credit, error) {
	a, err := r.dao.FindAccountByUID(ctx, uid)
	if err != nil {
		return domain.Credit{}, err
	}
	return domain.Credit{
		Uid:           a.Uid,
		Balance:       a.Balance,
		ServiceStatus: domain.ServiceStatus(a.ServiceStatus),
	}, nil
}

func (r *creditRepository) AddCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	created, err := r.dao.AddCredits(ctx, r.toEntity(t))
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.toDomain(created), nil
}

func (r *creditRepository) AddCreditsTx(tx *gorm.DB, t domain.Transaction) (domain.Transaction, error) {
	created, err := r.dao.AddCreditsTx(tx, r.toEntity(t))
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.toDomain(created), nil
}

func (r *creditRepository) SpendCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	created, err := r.dao.SpendCredits(ctx, r.toEntity(t))
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.toDomain(created), nil
}

func (r *creditRepository) RemoveCredits(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	created, err := r.dao.RemoveCredits(ctx, r.toEntity(t))
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.toDomain(created), nil
}

func (r *creditRepository) UpdateServiceStatus(ctx context.Context, uid int64, status domain.ServiceStatus, t domain.Transaction) error {
	return r.dao.UpdateServiceStatus(ctx, uid, status.ToUint8(), r.toEntity(t))
}

func (r *creditRepository) ListTransactionsByUID(ctx context.Context, uid int64, offset, limit int, f domain.TransactionFilter) ([]domain.Transaction, error) {
	ts, err := r.dao.FindTransactionsByUID(ctx, uid, offset, limit, r.toFilterEntity(f))
	if err != nil {
		return nil, err
	}
	return slice.Map(ts, func(idx int, src dao.CreditTransaction) domain.Transaction {
		return r.toDomain(src)
	}), nil
}

func (r *creditRepository) TotalTransactionsByUID(ctx context.Context, uid int64, f domain.TransactionFilter) (int64, error) {
	return r.dao.TotalTransactionsByUID(ctx, uid, r.toFilterEntity(f))
}

func (r *creditRepository) FindTransactionBySN(ctx context.Context, sn string) (domain.Transaction, error) {
	t, err := r.dao.FindTransactionBySN(ctx, sn)
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.toDomain(t), nil
}

func (r *creditRepository) SumTransactionAmountByUID(ctx context.Context, uid int64) (int64, error) {
	return r.dao.SumTransactionAmountByUID(ctx, uid)
}

func (r *creditRepository) ListAccountUIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	return r.dao.FindAccountUIDs(ctx, offset, limit)
}

func (r *creditRepository) Stats(ctx context.Context) (domain.Stats, error) {
	recentStartTime := time.Now().Add(-24 * time.Hour).UnixMilli()
	s, err := r.dao.Stats(ctx, recentStartTime)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{
		AccountsWithBalance: s.AccountsWithBalance,
		OutstandingCredits:  s.OutstandingCredits,
		ActiveAccounts:      s.ActiveAccounts,
		PausedAccounts:      s.PausedAccounts,
		RecentTransactions:  s.RecentTransactions,
	}, nil
}

func (r *creditRepository) toEntity(t domain.Transaction) dao.CreditTransaction {
	metadata := "{}"
	if len(t.Metadata) > 0 {
		data, err := json.Marshal(t.Metadata)
		if err == nil {
			metadata = string(data)
		}
	}
	res := dao.CreditTransaction{
		SN:       t.SN,
		Uid:      t.Uid,
		Amount:   t.Amount,
		Kind:     t.Kind.ToUint8(),
		Biz:      t.Biz,
		BizId:    t.BizId,
		Desc:     t.Desc,
		Metadata: metadata,
	}
	if !t.AmountUSD.IsZero() {
		res.AmountUSD = sql.NullString{String: t.AmountUSD.StringFixed(4), Valid: true}
	}
	if t.PaymentRef != "" {
		res.PaymentRef = sql.NullString{String: t.PaymentRef, Valid: true}
	}
	return res
}

func (r *creditRepository) toDomain(t dao.CreditTransaction) domain.Transaction {
	res := domain.Transaction{
		ID:           t.Id,
		SN:           t.SN,
		Uid:          t.Uid,
		Amount:       t.Amount,
		Kind:         domain.TransactionKind(t.Kind),
		Biz:          t.Biz,
		BizId:        t.BizId,
		Desc:         t.Desc,
		PaymentRef:   t.PaymentRef.String,
		BalanceAfter: t.BalanceAfter,
		Ctime:        t.Ctime,
	}
	if t.AmountUSD.Valid {
		if d, err := decimal.NewFromString(t.AmountUSD.String); err == nil {
			res.AmountUSD = d
		}
	}
	if t.Metadata != "" && t.Metadata != "{}" {
		var metadata map[string]string
		if err := json.Unmarshal([]byte(t.Metadata), &metadata); err == nil {
			res.Metadata = metadata
		}
	}
	return res
}

func (r *creditRepository) toFilterEntity(f domain.TransactionFilter) dao.TransactionFilter {
	return dao.TransactionFilter{
		Kind:      f.Kind.ToUint8(),
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
	}
}
