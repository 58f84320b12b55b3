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
	"errors"
	"fmt"

	"github.com/opshive/opshive/internal/crossapp/internal/domain"
	"github.com/opshive/opshive/internal/crossapp/internal/repository"
)

var (
	ErrInvalidAppToken  = errors.New("无效的应用令牌")
	ErrPermissionDenied = errors.New("应用无权执行该操作")
)

// SessionValidator 校验合作方令牌并检查权限。默认实现基于 dao + 缓存,
// 接口抽出来是为了给网关接入别的令牌体系留口子
//
//go:generate mockgen -source=./validator.go -destination=../../mocks/validator.mock.go -package=crossappmocks -typed SessionValidator
type SessionValidator interface {
	Validate(ctx context.Context, token string, perm domain.Permission) (domain.AppSession, error)
}

type sessionValidator struct {
	repo repository.TokenRepository
}

func NewSessionValidator(repo repository.TokenRepository) SessionValidator {
	return &sessionValidator{repo: repo}
}

func (v *sessionValidator) Validate(ctx context.Context, token string, perm domain.Permission) (domain.AppSession, error) {
	if token == "" {
		return domain.AppSession{}, ErrInvalidAppToken
	}
	sess, err := v.repo.FindSession(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return domain.AppSession{}, ErrInvalidAppToken
		}
		return domain.AppSession{}, err
	}
	if !sess.Has(perm) {
		return domain.AppSession{}, fmt.Errorf("%w: %s 缺少 %s", ErrPermissionDenied, sess.AppId, perm)
	}
	return sess, nil
}
