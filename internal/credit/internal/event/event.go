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

package event

const PaymentEventName = "payment_events"

// PaymentEvent 支付网关确认到账后投递的事件,Key 为支付事件唯一ID,同时作为幂等键
type PaymentEvent struct {
	Key string `json:"key"`
	Uid int64  `json:"uid"`
	// Credits 到账积分数量
	Credits int64 `json:"credits"`
	// AmountCents 实付金额,单位为分
	AmountCents int64  `json:"amountCents"`
	PaymentRef  string `json:"paymentRef"`
	Biz         string `json:"biz"`
	BizId       int64  `json:"bizId"`
}

// PaymentCreditedResult 记入幂等缓存的消费结果
type PaymentCreditedResult struct {
	SN           string `json:"sn"`
	BalanceAfter int64  `json:"balanceAfter"`
}
