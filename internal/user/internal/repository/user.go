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

	"github.com/opshive/opshive/internal/user/internal/domain"
	"github.com/opshive/opshive/internal/user/internal/repository/dao"
)

var ErrUserNotFound = dao.ErrUserNotFound

type UserRepository interface {
	FindById(ctx context.Context, id int64) (domain.User, error)
	Total(ctx context.Context) (int64, error)
}

type userRepository struct {
	dao dao.UserDAO
}

func NewUserRepository(d dao.UserDAO) UserRepository {
	return &userRepository{dao: d}
}

func (r *userRepository) FindById(ctx context.Context, id int64) (domain.User, error) {
	u, err := r.dao.FindById(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return r.toDomain(u), nil
}

func (r *userRepository) Total(ctx context.Context) (int64, error) {
	return r.dao.Total(ctx)
}

func (r *userRepository) toDomain(u dao.User) domain.User {
	return domain.User{
		Id:       u.Id,
		Email:    u.Email,
		Nickname: u.Nickname,
	}
}
