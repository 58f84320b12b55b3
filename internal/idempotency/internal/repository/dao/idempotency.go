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

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrDuplicatedKey  = errors.New("幂等键已存在")
	ErrRecordNotFound = gorm.ErrRecordNotFound
)

type IdempotencyDAO interface {
	// Insert 以唯一索引仲裁并发,键已存在时返回 ErrDuplicatedKey
	Insert(ctx context.Context, r IdempotencyRecord) error
	FindByKey(ctx context.Context, key string) (IdempotencyRecord, error)
	UpdateResponse(ctx context.Context, key string, response string) error
	Delete(ctx context.Context, key string) error
	// DeleteExpired 删除一批已过期记录,返回删除条数
	DeleteExpired(ctx context.Context, now int64, limit int) (int64, error)
}

type idempotencyDAO struct {
	db *egorm.Component
}

func NewIdempotencyGORMDAO(db *egorm.Component) IdempotencyDAO {
	return &idempotencyDAO{db: db}
}

func (g *idempotencyDAO) Insert(ctx context.Context, r IdempotencyRecord) error {
	now := time.Now().UnixMilli()
	r.Ctime, r.Utime = now, now
	err := g.db.WithContext(ctx).Create(&r).Error
	if err != nil {
		if isMySQLUniqueIndexError(err) {
			return fmt.Errorf("%w: key=%s", ErrDuplicatedKey, r.Key)
		}
		return fmt.Errorf("创建幂等记录失败: %w", err)
	}
	return nil
}

func (g *idempotencyDAO) FindByKey(ctx context.Context, key string) (IdempotencyRecord, error) {
	var res IdempotencyRecord
	err := g.db.WithContext(ctx).First(&res, "`key` = ?", key).Error
	return res, err
}

func (g *idempotencyDAO) UpdateResponse(ctx context.Context, key string, response string) error {
	return g.db.WithContext(ctx).Model(&IdempotencyRecord{}).
		Where("`key` = ?", key).
		Updates(map[string]any{
			"response": response,
			"utime":    time.Now().UnixMilli(),
		}).Error
}

func (g *idempotencyDAO) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&IdempotencyRecord{}, "`key` = ?", key).Error
}

func (g *idempotencyDAO) DeleteExpired(ctx context.Context, now int64, limit int) (int64, error) {
	result := g.db.WithContext(ctx).
		Where("expire_at <= ?", now).
		Limit(limit).
		Delete(&IdempotencyRecord{})
	return result.RowsAffected, result.Error
}

func isMySQLUniqueIndexError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		const uniqueIndexErrNo uint16 = 1062
		if me.Number == uniqueIndexErrNo {
			return true
		}
	}
	return false
}

type IdempotencyRecord struct {
	Id  int64  `gorm:"primaryKey;autoIncrement;comment:幂等记录自增ID"`
	Key string `gorm:"column:key;type:varchar(128);not null;uniqueIndex:unq_key;comment:幂等键"`
	Biz string `gorm:"type:varchar(64);not null;comment:操作所属业务"`
	// Response 操作完成后回填的响应,NULL 表示仍在处理中
	Response sql.NullString `gorm:"type:text;comment:缓存的响应"`
	ExpireAt int64          `gorm:"not null;index:idx_expire_at,comment:过期时间戳"`
	Ctime    int64
	Utime    int64
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&IdempotencyRecord{})
}
