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
	"strings"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/crossapp/internal/domain"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/cache"
	"github.com/opshive/opshive/internal/crossapp/internal/repository/dao"
)

var ErrTokenNotFound = dao.ErrTokenNotFound

type TokenRepository interface {
	// FindSession 按令牌换取会话,已过期的令牌视同不存在
	FindSession(ctx context.Context, token string) (domain.AppSession, error)
}

type tokenRepository struct {
	dao    dao.TokenDAO
	cache  cache.TokenCache
	logger *elog.Component
}

func NewTokenRepository(d dao.TokenDAO, c cache.TokenCache) TokenRepository {
	return &tokenRepository{
		dao:    d,
		cache:  c,
		logger: elog.DefaultLogger,
	}
}

func (r *tokenRepository) FindSession(ctx context.Context, token string) (domain.AppSession, error) {
	sess, err := r.cache.Get(ctx, token)
	if err == nil && sess.AppId != "" {
		return sess, nil
	}
	t, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.AppSession{}, err
	}
	if t.ExpireAt <= time.Now().UnixMilli() {
		return domain.AppSession{}, ErrTokenNotFound
	}
	sess = domain.AppSession{
		AppId:       t.AppId,
		Uid:         t.Uid,
		Permissions: parsePermissions(t.Permissions),
	}
	// 缓存寿命不超过令牌剩余有效期,令牌一过期缓存也跟着失效。
	// 缓存失败只影响下一次查询的速度
	err = r.cache.Set(ctx, token, sess, time.Until(time.UnixMilli(t.ExpireAt)))
	if err != nil {
		r.logger.Warn("缓存应用会话失败", elog.FieldErr(err))
	}
	return sess, nil
}

func parsePermissions(s string) []domain.Permission {
	parts := strings.Split(s, ",")
	res := make([]domain.Permission, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, domain.Permission(p))
		}
	}
	return res
}

type UsageRepository interface {
	IncrConsumed(ctx context.Context, uid int64, appId string, amount int64) error
	IncrPurchased(ctx context.Context, uid int64, appId string, amount int64) error
	FindByUID(ctx context.Context, uid int64) ([]domain.AppUsage, error)
	Replace(ctx context.Context, uid int64, usages []domain.AppUsage) error
}

type usageRepository struct {
	dao dao.UsageDAO
}

func NewUsageRepository(d dao.UsageDAO) UsageRepository {
	return &usageRepository{dao: d}
}

func (r *usageRepository) IncrConsumed(ctx context.Context, uid int64, appId string, amount int64) error {
	return r.dao.IncrConsumed(ctx, uid, appId, amount)
}

func (r *usageRepository) IncrPurchased(ctx context.Context, uid int64, appId string, amount int64) error {
	return r.dao.IncrPurchased(ctx, uid, appId, amount)
}

func (r *usageRepository) FindByUID(ctx context.Context, uid int64) ([]domain.AppUsage, error) {
	us, err := r.dao.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return slice.Map(us, func(idx int, src dao.AppCreditUsage) domain.AppUsage {
		return domain.AppUsage{
			AppId:            src.AppId,
			Uid:              src.Uid,
			CreditsConsumed:  src.CreditsConsumed,
			CreditsPurchased: src.CreditsPurchased,
			LastConsumedAt:   src.LastConsumedAt,
			LastPurchasedAt:  src.LastPurchasedAt,
		}
	}), nil
}

func (r *usageRepository) Replace(ctx context.Context, uid int64, usages []domain.AppUsage) error {
	return r.dao.Replace(ctx, uid, slice.Map(usages, func(idx int, src domain.AppUsage) dao.AppCreditUsage {
		return dao.AppCreditUsage{
			Uid:              src.Uid,
			AppId:            src.AppId,
			CreditsConsumed:  src.CreditsConsumed,
			CreditsPurchased: src.CreditsPurchased,
			LastConsumedAt:   src.LastConsumedAt,
			LastPurchasedAt:  src.LastPurchasedAt,
		}
	}))
}
