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
	SystemError       = ErrorCode{Code: 519001, Msg: "系统错误"}
	InvalidAppToken   = ErrorCode{Code: 519002, Msg: "无效的应用令牌"}
	PermissionDenied  = ErrorCode{Code: 519003, Msg: "应用无权执行该操作"}
	CreditNotEnough   = ErrorCode{Code: 519004, Msg: "积分余额不足"}
	ServicePaused     = ErrorCode{Code: 519005, Msg: "服务已暂停"}
	InvalidAmount     = ErrorCode{Code: 519006, Msg: "非法的积分数量"}
	OperationInFlight = ErrorCode{Code: 519007, Msg: "相同请求正在处理中"}
)
