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

const PurchaseEventName = "crossapp_purchase_events"

// PurchaseEvent 合作方应用内购买完成事件,只驱动用量计数,
// 实际入账走支付事件
type PurchaseEvent struct {
	Key     string `json:"key"`
	AppId   string `json:"appId"`
	Uid     int64  `json:"uid"`
	Credits int64  `json:"credits"`
}
