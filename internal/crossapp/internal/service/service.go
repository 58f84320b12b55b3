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
	"encoding/json"
	"fmt"

	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp/internal/domain"
	"github.com/opshive/opshive/internal/crossapp/internal/repository"
	"github.com/opshive/opshive/internal/idempotency"
)

// ConsumeRequest 合作方扣减请求,RequestId 是幂等键
type ConsumeRequest struct {
	RequestId string
	Amount    int64
	Desc      string
	JobId     int64
}

type ConsumeResult struct {
	SN           string `json:"sn"`
	BalanceAfter int64  `json:"balanceAfter"`
}

//go:generate mockgen -source=./service.go -destination=../../mocks/crossapp.mock.go -package=crossappmocks -typed Service
type Service interface {
	// GetBalance 合作方查询授权用户的余额,要求 read-balance 权限
	GetBalance(ctx context.Context, token string) (credit.Credit, error)
	// ConsumeCredits 合作方扣减积分,要求 consume-credits 权限,
	// 同一 RequestId 重复提交返回首次结果
	ConsumeCredits(ctx context.Context, token string, req ConsumeRequest) (ConsumeResult, error)
	Usage(ctx context.Context, uid int64) ([]domain.AppUsage, error)
	// RebuildUsage 从流水重算某个用户的全部应用计数并整体替换
	RebuildUsage(ctx context.Context, uid int64) error
	// RecordPurchase 购买事件入账:写积分流水并累加购买计数
	RecordPurchase(ctx context.Context, uid int64, appId string, amount int64) error
}

type service struct {
	validator SessionValidator
	usageRepo repository.UsageRepository
	creditSvc credit.Service
	idemSvc   idempotency.Service
	logger    *elog.Component
}

func NewCrossAppService(validator SessionValidator,
	usageRepo repository.UsageRepository,
	creditSvc credit.Service,
	idemSvc idempotency.Service) Service {
	return &service{
		validator: validator,
		usageRepo: usageRepo,
		creditSvc: creditSvc,
		idemSvc:   idemSvc,
		logger:    elog.DefaultLogger,
	}
}

func (s *service) GetBalance(ctx context.Context, token string) (credit.Credit, error) {
	sess, err := s.validator.Validate(ctx, token, domain.PermissionReadBalance)
	if err != nil {
		return credit.Credit{}, err
	}
	c, err := s.creditSvc.GetBalance(ctx, sess.Uid)
	if err != nil {
		return credit.Credit{}, err
	}
	return c, nil
}

func (s *service) ConsumeCredits(ctx context.Context, token string, req ConsumeRequest) (ConsumeResult, error) {
	sess, err := s.validator.Validate(ctx, token, domain.PermissionConsumeCredits)
	if err != nil {
		return ConsumeResult{}, err
	}
	biz := "crossapp:" + sess.AppId
	// 未提供 RequestId 时退化为对整个请求体做摘要
	var key string
	if req.RequestId != "" {
		key = s.idemSvc.Key(biz, req.RequestId)
	} else {
		key = s.idemSvc.Key(biz, req)
	}
	data, err := s.idemSvc.Do(ctx, key, biz, func(ctx context.Context) ([]byte, error) {
		t, err := s.creditSvc.SpendCredits(ctx, credit.Transaction{
			Uid:    sess.Uid,
			Amount: req.Amount,
			Kind:   credit.KindConsumption,
			Biz:    "crossapp",
			BizId:  req.JobId,
			Desc:   req.Desc,
			Metadata: map[string]string{
				"app_id":     sess.AppId,
				"request_id": req.RequestId,
			},
		})
		if err != nil {
			return nil, err
		}
		// 计数失败不回滚流水,重建机制负责追平
		err = s.usageRepo.IncrConsumed(ctx, sess.Uid, sess.AppId, req.Amount)
		if err != nil {
			s.logger.Error("累加应用消耗计数失败",
				elog.FieldErr(err),
				elog.Int64("uid", sess.Uid),
				elog.String("appId", sess.AppId))
		}
		return json.Marshal(ConsumeResult{
			SN:           t.SN,
			BalanceAfter: t.BalanceAfter,
		})
	})
	if err != nil {
		return ConsumeResult{}, err
	}
	var res ConsumeResult
	err = json.Unmarshal(data, &res)
	if err != nil {
		return ConsumeResult{}, fmt.Errorf("解析扣减结果失败: %w", err)
	}
	return res, nil
}

func (s *service) Usage(ctx context.Context, uid int64) ([]domain.AppUsage, error) {
	return s.usageRepo.FindByUID(ctx, uid)
}

func (s *service) RebuildUsage(ctx context.Context, uid int64) error {
	const pageSize = 200
	usages := make(map[string]*domain.AppUsage)
	offset := 0
	for {
		ts, _, err := s.creditSvc.ListTransactions(ctx, uid, offset, pageSize, credit.TransactionFilter{})
		if err != nil {
			return fmt.Errorf("读取流水失败: %w", err)
		}
		for _, t := range ts {
			appId := t.Metadata["app_id"]
			if appId == "" {
				continue
			}
			u, ok := usages[appId]
			if !ok {
				u = &domain.AppUsage{AppId: appId, Uid: uid}
				usages[appId] = u
			}
			switch t.Kind {
			case credit.KindConsumption:
				u.CreditsConsumed += -t.Amount
				if t.Ctime > u.LastConsumedAt {
					u.LastConsumedAt = t.Ctime
				}
			case credit.KindPurchase:
				u.CreditsPurchased += t.Amount
				if t.Ctime > u.LastPurchasedAt {
					u.LastPurchasedAt = t.Ctime
				}
			}
		}
		if len(ts) < pageSize {
			break
		}
		offset += pageSize
	}
	res := make([]domain.AppUsage, 0, len(usages))
	for _, u := range usages {
		res = append(res, *u)
	}
	return s.usageRepo.Replace(ctx, uid, res)
}

func (s *service) RecordPurchase(ctx context.Context, uid int64, appId string, amount int64) error {
	// 购买入账写进积分流水,app_id 落在 metadata 里,重建计数时据此归属
	_, err := s.creditSvc.AddCredits(ctx, credit.Transaction{
		Uid:    uid,
		Amount: amount,
		Kind:   credit.KindPurchase,
		Biz:    "crossapp",
		Desc:   "应用内购买",
		Metadata: map[string]string{
			"app_id": appId,
		},
	})
	if err != nil {
		return err
	}
	// 计数失败不回滚流水,重建机制负责追平
	err = s.usageRepo.IncrPurchased(ctx, uid, appId, amount)
	if err != nil {
		s.logger.Error("累加应用购买计数失败",
			elog.FieldErr(err),
			elog.Int64("uid", uid),
			elog.String("appId", appId))
	}
	return nil
}
