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

package credit

import (
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/event"
	"github.com/opshive/opshive/internal/credit/internal/job"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/credit/internal/web"
)

type Credit = domain.Credit
type Transaction = domain.Transaction
type TransactionFilter = domain.TransactionFilter
type TransactionKind = domain.TransactionKind
type ServiceStatus = domain.ServiceStatus

const (
	KindConsumption       = domain.KindConsumption
	KindSubscription      = domain.KindSubscription
	KindAdminAdjustment   = domain.KindAdminAdjustment
	KindDisputeResolution = domain.KindDisputeResolution
	KindPurchase          = domain.KindPurchase
	KindServiceStatus     = domain.KindServiceStatus

	ServiceStatusActive = domain.ServiceStatusActive
	ServiceStatusPaused = domain.ServiceStatusPaused
)

type Service = service.Service
type AdminContext = service.AdminContext

// Handler 暴露出去给 ioc 使用
type Handler = web.Handler
type AdminHandler = web.AdminHandler
type ReconcileBalancesJob = job.ReconcileBalancesJob
type PaymentConsumer = event.PaymentConsumer
type PaymentEvent = event.PaymentEvent

var (
	ErrInvalidAmount         = service.ErrInvalidAmount
	ErrCreditNotEnough       = service.ErrCreditNotEnough
	ErrServicePaused         = service.ErrServicePaused
	ErrAccountNotFound       = service.ErrAccountNotFound
	ErrDuplicatedTransaction = service.ErrDuplicatedTransaction
)

type Module struct {
	Svc          Service
	Hdl          *Handler
	AdminHdl     *AdminHandler
	ReconcileJob *ReconcileBalancesJob
	Consumer     *PaymentConsumer
}
