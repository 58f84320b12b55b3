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
	"github.com/opshive/opshive/internal/credit/internal/errs"
	"github.com/opshive/opshive/internal/credit/internal/service"
)

var (
	systemErrorResult = ginx.Result{
		Code: errs.SystemError.Code,
		Msg:  errs.SystemError.Msg,
	}
	invalidAmountResult = ginx.Result{
		Code: errs.InvalidAmount.Code,
		Msg:  errs.InvalidAmount.Msg,
	}
	creditNotEnoughResult = ginx.Result{
		Code: errs.CreditNotEnough.Code,
		Msg:  errs.CreditNotEnough.Msg,
	}
	servicePausedResult = ginx.Result{
		Code: errs.ServicePaused.Code,
		Msg:  errs.ServicePaused.Msg,
	}
	accountNotFoundResult = ginx.Result{
		Code: errs.AccountNotFound.Code,
		Msg:  errs.AccountNotFound.Msg,
	}
)

// errorResult 把领域错误映射为对外错误码,调用方能区分是哪条规则拒绝了操作
func errorResult(err error) ginx.Result {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return invalidAmountResult
	case errors.Is(err, service.ErrCreditNotEnough):
		return creditNotEnoughResult
	case errors.Is(err, service.ErrServicePaused):
		return servicePausedResult
	case errors.Is(err, service.ErrAccountNotFound):
		return accountNotFoundResult
	default:
		return systemErrorResult
	}
}
