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
	"github.com/opshive/opshive/internal/dispute/internal/errs"
	"github.com/opshive/opshive/internal/dispute/internal/service"
)

var (
	systemErrorResult = ginx.Result{
		Code: errs.SystemError.Code,
		Msg:  errs.SystemError.Msg,
	}
	disputeNotFoundResult = ginx.Result{
		Code: errs.DisputeNotFound.Code,
		Msg:  errs.DisputeNotFound.Msg,
	}
	invalidStatusResult = ginx.Result{
		Code: errs.InvalidDisputeStatus.Code,
		Msg:  errs.InvalidDisputeStatus.Msg,
	}
	transactionNotFoundResult = ginx.Result{
		Code: errs.TransactionNotFound.Code,
		Msg:  errs.TransactionNotFound.Msg,
	}
	invalidRefundAmountResult = ginx.Result{
		Code: errs.InvalidRefundAmount.Code,
		Msg:  errs.InvalidRefundAmount.Msg,
	}
)

func errorResult(err error) ginx.Result {
	switch {
	case errors.Is(err, service.ErrDisputeNotFound):
		return disputeNotFoundResult
	case errors.Is(err, service.ErrInvalidDisputeStatus):
		return invalidStatusResult
	case errors.Is(err, service.ErrTransactionNotFound):
		return transactionNotFoundResult
	case errors.Is(err, service.ErrInvalidRefundAmount):
		return invalidRefundAmountResult
	default:
		return systemErrorResult
	}
}
