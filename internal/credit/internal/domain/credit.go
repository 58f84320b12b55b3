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

package domain

import "github.com/shopspring/decimal"

type ServiceStatus uint8

func (s ServiceStatus) ToUint8() uint8 {
	return uint8(s)
}

const (
	ServiceStatusActive ServiceStatus = 1
	ServiceStatusPaused ServiceStatus = 2
)

type TransactionKind uint8

func (k TransactionKind) ToUint8() uint8 {
	return uint8(k)
}

const (
	// KindConsumption 服务消耗
	KindConsumption TransactionKind = 1
	// KindSubscription 订阅发放
	KindSubscription TransactionKind = 2
	// KindAdminAdjustment 管理员调整
	KindAdminAdjustment TransactionKind = 3
	// KindDisputeResolution 争议补偿
	KindDisputeResolution TransactionKind = 4
	// KindPurchase 充值购买
	KindPurchase TransactionKind = 5
	// KindServiceStatus 暂停/恢复服务的零额审计流水
	KindServiceStatus TransactionKind = 6
)

// Credit 用户积分账户,Balance 与流水表的 SUM(amount) 恒等
type Credit struct {
	Uid           int64
	Balance       int64
	ServiceStatus ServiceStatus
}

// Transaction 积分流水,只追加,创建后不再修改
type Transaction struct {
	ID  int64
	SN  string
	Uid int64
	// Amount 正数为增加,负数为扣减
	Amount int64
	Kind   TransactionKind
	Biz    string
	BizId  int64
	Desc   string
	// AmountUSD 按系统积分单价折算的美元金额,小数点后四位
	AmountUSD    decimal.Decimal
	PaymentRef   string
	Metadata     map[string]string
	BalanceAfter int64
	Ctime        int64
}

// TransactionFilter 流水查询条件,零值字段不参与过滤
type TransactionFilter struct {
	Kind      TransactionKind
	StartTime int64
	EndTime   int64
}

// Stats 管理端的全局统计,基于账户表与流水表实时计算
type Stats struct {
	AccountsWithBalance int64
	OutstandingCredits  int64
	ActiveAccounts      int64
	PausedAccounts      int64
	// RecentTransactions 最近24小时的流水条数
	RecentTransactions int64
}
