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
	"github.com/ecodeclub/ekit/slice"
	"github.com/opshive/opshive/internal/crossapp/internal/domain"
)

type BalanceResp struct {
	Balance       int64 `json:"balance"`
	ServiceStatus uint8 `json:"serviceStatus"`
}

type ConsumeReq struct {
	RequestId string `json:"requestId"`
	Amount    int64  `json:"amount"`
	Desc      string `json:"desc"`
	JobId     int64  `json:"jobId"`
}

type ConsumeResp struct {
	SN           string `json:"sn"`
	BalanceAfter int64  `json:"balanceAfter"`
}

type Usage struct {
	AppId            string `json:"appId"`
	CreditsConsumed  int64  `json:"creditsConsumed"`
	CreditsPurchased int64  `json:"creditsPurchased"`
	LastConsumedAt   int64  `json:"lastConsumedAt,omitempty"`
	LastPurchasedAt  int64  `json:"lastPurchasedAt,omitempty"`
}

type UsageResp struct {
	Usages []Usage `json:"usages"`
}

func newUsages(us []domain.AppUsage) []Usage {
	return slice.Map(us, func(idx int, src domain.AppUsage) Usage {
		return Usage{
			AppId:            src.AppId,
			CreditsConsumed:  src.CreditsConsumed,
			CreditsPurchased: src.CreditsPurchased,
			LastConsumedAt:   src.LastConsumedAt,
			LastPurchasedAt:  src.LastPurchasedAt,
		}
	})
}

type AdminUsageReq struct {
	Uid int64 `json:"uid"`
}
