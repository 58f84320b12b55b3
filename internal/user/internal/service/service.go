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

package service

import (
	"context"

	"github.com/opshive/opshive/internal/user/internal/domain"
	"github.com/opshive/opshive/internal/user/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

//go:generate mockgen -source=./service.go -destination=../../mocks/user.mock.go -package=usermocks -typed UserService
type UserService interface {
	Profile(ctx context.Context, uid int64) (domain.User, error)
	Total(ctx context.Context) (int64, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Profile(ctx context.Context, uid int64) (domain.User, error) {
	return s.repo.FindById(ctx, uid)
}

func (s *userService) Total(ctx context.Context) (int64, error) {
	return s.repo.Total(ctx)
}
