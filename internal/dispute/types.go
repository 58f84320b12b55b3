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

package dispute

import (
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/service"
	"github.com/opshive/opshive/internal/dispute/internal/web"
)

type Dispute = domain.Dispute
type DisputeStatus = domain.DisputeStatus
type Resolution = domain.Resolution

const (
	StatusPending     = domain.DisputeStatusPending
	StatusUnderReview = domain.DisputeStatusUnderReview
	StatusResolved    = domain.DisputeStatusResolved
	StatusRejected    = domain.DisputeStatusRejected

	ResolutionFullRefund    = domain.ResolutionFullRefund
	ResolutionPartialRefund = domain.ResolutionPartialRefund
	ResolutionExplanation   = domain.ResolutionExplanation
	ResolutionRejected      = domain.ResolutionRejected
)

type Service = service.Service

type Handler = web.Handler
type AdminHandler = web.AdminHandler

var (
	ErrDisputeNotFound      = service.ErrDisputeNotFound
	ErrInvalidDisputeStatus = service.ErrInvalidDisputeStatus
	ErrTransactionNotFound  = service.ErrTransactionNotFound
	ErrInvalidRefundAmount  = service.ErrInvalidRefundAmount
)

type Module struct {
	Svc      Service
	Hdl      *Handler
	AdminHdl *AdminHandler
}
