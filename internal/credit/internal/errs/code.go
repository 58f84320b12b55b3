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

package errs

var (
	SystemError     = ErrorCode{Code: 517001, Msg: "系统错误"}
	InvalidAmount   = ErrorCode{Code: 517002, Msg: "积分数量非法"}
	CreditNotEnough = ErrorCode{Code: 517003, Msg: "积分余额不足"}
	ServicePaused   = ErrorCode{Code: 517004, Msg: "账户服务已暂停"}
	AccountNotFound = ErrorCode{Code: 517005, Msg: "账户不存在"}
)

type ErrorCode struct {
	Code int
	Msg  string
}
