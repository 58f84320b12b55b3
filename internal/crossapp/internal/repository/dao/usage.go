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

package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageDAO interface {
	// IncrConsumed 累加消耗计数,行不存在时惰性创建
	IncrConsumed(ctx context.Context, uid int64, appId string, amount int64) error
	// IncrPurchased 累加购买计数,行不存在时惰性创建
	IncrPurchased(ctx context.Context, uid int64, appId string, amount int64) error
	FindByUID(ctx context.Context, uid int64) ([]AppCreditUsage, error)
	// Replace 用重算结果整体替换某个用户的计数行,用于从流水重建
	Replace(ctx context.Context, uid int64, usages []AppCreditUsage) error
}

type GORMUsageDAO struct {
	db *gorm.DB
}

func NewGORMUsageDAO(db *gorm.DB) UsageDAO {
	return &GORMUsageDAO{db: db}
}

func (g *GORMUsageDAO) IncrConsumed(ctx context.Context, uid int64, appId string, amount int64) error {
	return g.incr(ctx, uid, appId, map[string]any{
		"credits_consumed": gorm.Expr("credits_consumed + ?", amount),
		"last_consumed_at": time.Now().UnixMilli(),
	}, AppCreditUsage{CreditsConsumed: amount, LastConsumedAt: time.Now().UnixMilli()})
}

func (g *GORMUsageDAO) IncrPurchased(ctx context.Context, uid int64, appId string, amount int64) error {
	return g.incr(ctx, uid, appId, map[string]any{
		"credits_purchased": gorm.Expr("credits_purchased + ?", amount),
		"last_purchased_at": time.Now().UnixMilli(),
	}, AppCreditUsage{CreditsPurchased: amount, LastPurchasedAt: time.Now().UnixMilli()})
}

// incr 先尝试条件更新,未命中说明计数行还不存在,转为插入;
// 并发插入撞上唯一索引时回退为更新
func (g *GORMUsageDAO) incr(ctx context.Context, uid int64, appId string, updates map[string]any, initial AppCreditUsage) error {
	now := time.Now().UnixMilli()
	updates["utime"] = now
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&AppCreditUsage{}).
			Where("uid = ? AND app_id = ?", uid, appId).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		initial.Uid = uid
		initial.AppId = appId
		initial.Ctime, initial.Utime = now, now
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}, {Name: "app_id"}},
			DoUpdates: clause.Assignments(updates),
		}).Create(&initial).Error
		return err
	})
}

func (g *GORMUsageDAO) FindByUID(ctx context.Context, uid int64) ([]AppCreditUsage, error) {
	var us []AppCreditUsage
	err := g.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("app_id ASC").
		Find(&us).Error
	return us, err
}

func (g *GORMUsageDAO) Replace(ctx context.Context, uid int64, usages []AppCreditUsage) error {
	now := time.Now().UnixMilli()
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("uid = ?", uid).Delete(&AppCreditUsage{}).Error
		if err != nil {
			return err
		}
		if len(usages) == 0 {
			return nil
		}
		for i := range usages {
			usages[i].Id = 0
			usages[i].Uid = uid
			usages[i].Ctime, usages[i].Utime = now, now
		}
		return tx.Create(&usages).Error
	})
}

// AppCreditUsage 用户在单个应用下的积分用量计数
type AppCreditUsage struct {
	Id               int64  `gorm:"primaryKey,autoIncrement"`
	Uid              int64  `gorm:"not null;uniqueIndex:uniq_uid_app_id;comment:用户 ID"`
	AppId            string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_uid_app_id;comment:应用标识"`
	CreditsConsumed  int64  `gorm:"not null;default:0;comment:累计消耗积分"`
	CreditsPurchased int64  `gorm:"not null;default:0;comment:累计购买积分"`
	LastConsumedAt   int64  `gorm:"not null;default:0;comment:最近消耗时间"`
	LastPurchasedAt  int64  `gorm:"not null;default:0;comment:最近购买时间"`
	Ctime            int64
	Utime            int64
}

func (AppCreditUsage) TableName() string {
	return "app_credit_usages"
}

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&AppAccessToken{}, &AppCreditUsage{})
}
