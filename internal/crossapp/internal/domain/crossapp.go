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

package domain

type Permission string

const (
	PermissionReadBalance        Permission = "read-balance"
	PermissionConsumeCredits     Permission = "consume-credits"
	PermissionPurchaseCredits    Permission = "purchase-credits"
	PermissionManageSubscription Permission = "manage-subscription"
)

// AppSession 一次合法的合作方调用上下文,由 X-App-Token 换取
type AppSession struct {
	AppId       string
	Uid         int64
	Permissions []Permission
}

func (s AppSession) Has(p Permission) bool {
	for _, perm := range s.Permissions {
		if perm == p {
			return true
		}
	}
	return false
}

// AppUsage 单个用户在单个应用下的积分用量计数,只增不减,可从流水重建
type AppUsage struct {
	AppId            string
	Uid              int64
	CreditsConsumed  int64
	CreditsPurchased int64
	LastConsumedAt   int64
	LastPurchasedAt  int64
}
