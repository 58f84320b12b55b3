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
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrDisputeNotFound = gorm.ErrRecordNotFound
	// ErrInvalidStatus 当前状态不允许目标操作
	ErrInvalidStatus = errors.New("申诉状态不允许该操作")
)

type DisputeDAO interface {
	Insert(ctx context.Context, d Dispute) (int64, error)
	FindById(ctx context.Context, id int64) (Dispute, error)
	FindByUID(ctx context.Context, uid int64, offset, limit int) ([]Dispute, error)
	TotalByUID(ctx context.Context, uid int64) (int64, error)
	FindByStatus(ctx context.Context, status uint8, offset, limit int) ([]Dispute, error)
	TotalByStatus(ctx context.Context, status uint8) (int64, error)
	// UpdateStatus 带状态守卫的更新,当前状态不等于 from 时返回 ErrInvalidStatus
	UpdateStatus(ctx context.Context, id int64, from, to uint8, updates map[string]any) error
	// ResolveTx 在同一事务内完成状态变更和补偿入账,fn 执行失败则整体回滚
	ResolveTx(ctx context.Context, id int64, from, to uint8, updates map[string]any, fn func(tx *gorm.DB) error) error
}

type GORMDisputeDAO struct {
	db *gorm.DB
}

func NewGORMDisputeDAO(db *gorm.DB) DisputeDAO {
	return &GORMDisputeDAO{db: db}
}

func (g *GORMDisputeDAO) Insert(ctx context.Context, d Dispute) (int64, error) {
	now := time.Now().UnixMilli()
	d.Ctime, d.Utime = now, now
	err := g.db.WithContext(ctx).Create(&d).Error
	return d.Id, err
}

func (g *GORMDisputeDAO) FindById(ctx context.Context, id int64) (Dispute, error) {
	var d Dispute
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	return d, err
}

func (g *GORMDisputeDAO) FindByUID(ctx context.Context, uid int64, offset, limit int) ([]Dispute, error) {
	var ds []Dispute
	err := g.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&ds).Error
	return ds, err
}

func (g *GORMDisputeDAO) TotalByUID(ctx context.Context, uid int64) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&Dispute{}).
		Where("uid = ?", uid).
		Count(&count).Error
	return count, err
}

func (g *GORMDisputeDAO) FindByStatus(ctx context.Context, status uint8, offset, limit int) ([]Dispute, error) {
	var ds []Dispute
	err := g.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&ds).Error
	return ds, err
}

func (g *GORMDisputeDAO) TotalByStatus(ctx context.Context, status uint8) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&Dispute{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (g *GORMDisputeDAO) UpdateStatus(ctx context.Context, id int64, from, to uint8, updates map[string]any) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return g.updateStatus(tx, id, from, to, updates)
	})
}

func (g *GORMDisputeDAO) ResolveTx(ctx context.Context, id int64, from, to uint8, updates map[string]any, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := g.updateStatus(tx, id, from, to, updates)
		if err != nil {
			return err
		}
		return fn(tx)
	})
}

// updateStatus 状态守卫由条件更新完成,RowsAffected == 0 即状态已被并发修改
func (g *GORMDisputeDAO) updateStatus(tx *gorm.DB, id int64, from, to uint8, updates map[string]any) error {
	if updates == nil {
		updates = make(map[string]any, 2)
	}
	updates["status"] = to
	updates["utime"] = time.Now().UnixMilli()
	res := tx.Model(&Dispute{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var d Dispute
		err := tx.Where("id = ?", id).First(&d).Error
		if err != nil {
			return fmt.Errorf("查找申诉失败 id: %d, %w", id, err)
		}
		return fmt.Errorf("%w: 当前状态 %d", ErrInvalidStatus, d.Status)
	}
	return nil
}

// Dispute 扣费申诉
type Dispute struct {
	Id              int64  `gorm:"primaryKey,autoIncrement"`
	Uid             int64  `gorm:"not null;index:idx_uid;comment:申诉用户 ID"`
	TransactionSN   string `gorm:"type:varchar(256);not null;index:idx_transaction_sn;comment:被申诉的流水序列号"`
	Reason          string `gorm:"type:varchar(1024);not null;comment:申诉理由"`
	RequestedAmount int64  `gorm:"not null;comment:请求退还的积分数"`
	ResolvedAmount  int64  `gorm:"not null;default:0;comment:实际退还的积分数"`
	Resolution      uint8  `gorm:"type:tinyint unsigned;not null;default:0;comment:处理结论 1=全额退还 2=部分退还 3=解释说明 4=驳回"`
	Status          uint8  `gorm:"type:tinyint unsigned;not null;default:1;index:idx_status;comment:申诉状态 1=待处理 2=审核中 3=已解决 4=已驳回"`
	AdminUid        int64  `gorm:"not null;default:0;comment:处理人 ID"`
	AdminNotes      string `gorm:"type:varchar(1024);not null;default:'';comment:处理备注"`
	SubmittedAt     int64  `gorm:"not null;comment:提交时间"`
	ReviewedAt      int64  `gorm:"not null;default:0;comment:开始审核时间"`
	ResolvedAt      int64  `gorm:"not null;default:0;comment:处理完成时间"`
	Ctime           int64
	Utime           int64
}

func (Dispute) TableName() string {
	return "disputes"
}

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&Dispute{})
}
