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

package crossapp

import (
	"github.com/opshive/opshive/internal/crossapp/internal/domain"
	"github.com/opshive/opshive/internal/crossapp/internal/event"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"github.com/opshive/opshive/internal/crossapp/internal/web"
)

type Permission = domain.Permission
type AppSession = domain.AppSession
type AppUsage = domain.AppUsage

const (
	PermissionReadBalance        = domain.PermissionReadBalance
	PermissionConsumeCredits     = domain.PermissionConsumeCredits
	PermissionPurchaseCredits    = domain.PermissionPurchaseCredits
	PermissionManageSubscription = domain.PermissionManageSubscription
)

type Service = service.Service
type SessionValidator = service.SessionValidator
type ConsumeRequest = service.ConsumeRequest
type ConsumeResult = service.ConsumeResult

type Handler = web.Handler
type AdminHandler = web.AdminHandler
type PurchaseConsumer = event.PurchaseConsumer
type PurchaseEvent = event.PurchaseEvent

var (
	ErrInvalidAppToken  = service.ErrInvalidAppToken
	ErrPermissionDenied = service.ErrPermissionDenied
)

type Module struct {
	Svc      Service
	Hdl      *Handler
	AdminHdl *AdminHandler
	Consumer *PurchaseConsumer
}
