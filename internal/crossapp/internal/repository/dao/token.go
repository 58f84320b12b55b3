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

	"gorm.io/gorm"
)

var ErrTokenNotFound = gorm.ErrRecordNotFound

type TokenDAO interface {
	FindByToken(ctx context.Context, token string) (AppAccessToken, error)
}

type GORMTokenDAO struct {
	db *gorm.DB
}

func NewGORMTokenDAO(db *gorm.DB) TokenDAO {
	return &GORMTokenDAO{db: db}
}

func (g *GORMTokenDAO) FindByToken(ctx context.Context, token string) (AppAccessToken, error) {
	var t AppAccessToken
	err := g.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	return t, err
}

// AppAccessToken 合作方访问令牌,绑定应用与用户并携带权限集
type AppAccessToken struct {
	Id    int64  `gorm:"primaryKey,autoIncrement"`
	Token string `gorm:"type:varchar(128);not null;uniqueIndex:uniq_token;comment:访问令牌"`
	AppId string `gorm:"type:varchar(64);not null;index:idx_app_id;comment:应用标识"`
	Uid   int64  `gorm:"not null;index:idx_uid;comment:授权用户 ID"`
	// Permissions 逗号分隔的权限集,如 read-balance,consume-credits
	Permissions string `gorm:"type:varchar(256);not null;comment:权限集"`
	ExpireAt    int64  `gorm:"not null;comment:过期时间"`
	Ctime       int64
	Utime       int64
}

func (AppAccessToken) TableName() string {
	return "app_access_tokens"
}
