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

	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

var ErrUserNotFound = gorm.ErrRecordNotFound

type UserDAO interface {
	FindById(ctx context.Context, id int64) (User, error)
	Total(ctx context.Context) (int64, error)
}

type gormUserDAO struct {
	db *egorm.Component
}

func NewGORMUserDAO(db *egorm.Component) UserDAO {
	return &gormUserDAO{db: db}
}

func (g *gormUserDAO) FindById(ctx context.Context, id int64) (User, error) {
	var res User
	err := g.db.WithContext(ctx).First(&res, "id = ?", id).Error
	return res, err
}

func (g *gormUserDAO) Total(ctx context.Context) (int64, error) {
	var res int64
	err := g.db.WithContext(ctx).Model(&User{}).Count(&res).Error
	return res, err
}

type User struct {
	Id       int64  `gorm:"primaryKey;autoIncrement;comment:用户自增ID"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex:unq_email;comment:邮箱"`
	Nickname string `gorm:"type:varchar(128);not null;default:'';comment:昵称"`
	Ctime    int64
	Utime    int64
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&User{})
}
