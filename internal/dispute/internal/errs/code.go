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

package errs

type ErrorCode struct {
	Code int
	Msg  string
}

var (
	SystemError          = ErrorCode{Code: 518001, Msg: "系统错误"}
	DisputeNotFound      = ErrorCode{Code: 518002, Msg: "申诉不存在"}
	InvalidDisputeStatus = ErrorCode{Code: 518003, Msg: "申诉状态不允许该操作"}
	TransactionNotFound  = ErrorCode{Code: 518004, Msg: "流水不存在"}
	InvalidRefundAmount  = ErrorCode{Code: 518005, Msg: "非法的退还金额"}
)
