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

package web

import (
	"errors"

	"github.com/ecodeclub/ginx"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp/internal/errs"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"github.com/opshive/opshive/internal/idempotency"
)

var (
	systemErrorResult = ginx.Result{
		Code: errs.SystemError.Code,
		Msg:  errs.SystemError.Msg,
	}
	invalidAppTokenResult = ginx.Result{
		Code: errs.InvalidAppToken.Code,
		Msg:  errs.InvalidAppToken.Msg,
	}
	permissionDeniedResult = ginx.Result{
		Code: errs.PermissionDenied.Code,
		Msg:  errs.PermissionDenied.Msg,
	}
	creditNotEnoughResult = ginx.Result{
		Code: errs.CreditNotEnough.Code,
		Msg:  errs.CreditNotEnough.Msg,
	}
	servicePausedResult = ginx.Result{
		Code: errs.ServicePaused.Code,
		Msg:  errs.ServicePaused.Msg,
	}
	invalidAmountResult = ginx.Result{
		Code: errs.InvalidAmount.Code,
		Msg:  errs.InvalidAmount.Msg,
	}
	operationInFlightResult = ginx.Result{
		Code: errs.OperationInFlight.Code,
		Msg:  errs.OperationInFlight.Msg,
	}
)

func errorResult(err error) ginx.Result {
	switch {
	case errors.Is(err, service.ErrInvalidAppToken):
		return invalidAppTokenResult
	case errors.Is(err, service.ErrPermissionDenied):
		return permissionDeniedResult
	case errors.Is(err, credit.ErrCreditNotEnough):
		return creditNotEnoughResult
	case errors.Is(err, credit.ErrServicePaused):
		return servicePausedResult
	case errors.Is(err, credit.ErrInvalidAmount):
		return invalidAmountResult
	case errors.Is(err, idempotency.ErrOperationInFlight):
		return operationInFlightResult
	default:
		return systemErrorResult
	}
}
