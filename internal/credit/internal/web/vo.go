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
	"time"

	"github.com/opshive/opshive/internal/credit/internal/domain"
)

type Credit struct {
	Uid           int64 `json:"uid,omitempty"`
	Balance       int64 `json:"balance"`
	ServiceStatus uint8 `json:"serviceStatus"`
}

type Transaction struct {
	SN           string `json:"sn"`
	Amount       int64  `json:"amount"`
	Kind         uint8  `json:"kind"`
	Biz          string `json:"biz,omitempty"`
	BizId        int64  `json:"bizId,omitempty"`
	Desc         string `json:"desc"`
	AmountUSD    string `json:"amountUSD,omitempty"`
	PaymentRef   string `json:"paymentRef,omitempty"`
	BalanceAfter int64  `json:"balanceAfter"`
	Ctime        string `json:"ctime"`
}

type ListTransactionsReq struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
	// Kind 为 0 时不过滤
	Kind      uint8 `json:"kind,omitempty"`
	StartTime int64 `json:"startTime,omitempty"`
	EndTime   int64 `json:"endTime,omitempty"`
}

type ListTransactionsResp struct {
	Total        int64         `json:"total"`
	Transactions []Transaction `json:"transactions"`
}

type AdminUIDReq struct {
	Uid int64 `json:"uid"`
}

type AdminListTransactionsReq struct {
	Uid int64 `json:"uid"`
	ListTransactionsReq
}

type AdminAddCreditsReq struct {
	Uid    int64  `json:"uid"`
	Amount int64  `json:"amount"`
	Desc   string `json:"desc"`
	Biz    string `json:"biz,omitempty"`
	BizId  int64  `json:"bizId,omitempty"`
}

type AdminRemoveCreditsReq struct {
	Uid    int64  `json:"uid"`
	Amount int64  `json:"amount"`
	Desc   string `json:"desc"`
}

type AdminPauseServiceReq struct {
	Uid    int64  `json:"uid"`
	Reason string `json:"reason"`
}

type StatsResp struct {
	TotalUsers          int64 `json:"totalUsers"`
	AccountsWithBalance int64 `json:"accountsWithBalance"`
	OutstandingCredits  int64 `json:"outstandingCredits"`
	ActiveAccounts      int64 `json:"activeAccounts"`
	PausedAccounts      int64 `json:"pausedAccounts"`
	RecentTransactions  int64 `json:"recentTransactions"`
}

func newCredit(c domain.Credit) Credit {
	return Credit{
		Uid:           c.Uid,
		Balance:       c.Balance,
		ServiceStatus: c.ServiceStatus.ToUint8(),
	}
}

func newTransaction(t domain.Transaction) Transaction {
	res := Transaction{
		SN:           t.SN,
		Amount:       t.Amount,
		Kind:         t.Kind.ToUint8(),
		Biz:          t.Biz,
		BizId:        t.BizId,
		Desc:         t.Desc,
		PaymentRef:   t.PaymentRef,
		BalanceAfter: t.BalanceAfter,
		Ctime:        time.UnixMilli(t.Ctime).Format(time.DateTime),
	}
	if !t.AmountUSD.IsZero() {
		res.AmountUSD = t.AmountUSD.StringFixed(4)
	}
	return res
}
