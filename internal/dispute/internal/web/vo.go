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

	"github.com/opshive/opshive/internal/dispute/internal/domain"
)

type Dispute struct {
	ID              int64  `json:"id"`
	Uid             int64  `json:"uid,omitempty"`
	TransactionSN   string `json:"transactionSn"`
	Reason          string `json:"reason"`
	RequestedAmount int64  `json:"requestedAmount"`
	ResolvedAmount  int64  `json:"resolvedAmount,omitempty"`
	Resolution      uint8  `json:"resolution,omitempty"`
	Status          uint8  `json:"status"`
	AdminNotes      string `json:"adminNotes,omitempty"`
	SubmittedAt     string `json:"submittedAt"`
	ResolvedAt      string `json:"resolvedAt,omitempty"`
}

func newDispute(d domain.Dispute) Dispute {
	return Dispute{
		ID:              d.ID,
		Uid:             d.Uid,
		TransactionSN:   d.TransactionSN,
		Reason:          d.Reason,
		RequestedAmount: d.RequestedAmount,
		ResolvedAmount:  d.ResolvedAmount,
		Resolution:      d.Resolution.ToUint8(),
		Status:          d.Status.ToUint8(),
		AdminNotes:      d.AdminNotes,
		SubmittedAt:     formatMilli(d.SubmittedAt),
		ResolvedAt:      formatMilli(d.ResolvedAt),
	}
}

func formatMilli(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format(time.DateTime)
}

type SubmitReq struct {
	TransactionSN   string `json:"transactionSn"`
	Reason          string `json:"reason"`
	RequestedAmount int64  `json:"requestedAmount"`
}

type SubmitResp struct {
	ID int64 `json:"id"`
}

type ListReq struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type ListResp struct {
	Total    int64     `json:"total"`
	Disputes []Dispute `json:"disputes"`
}

type AppealReq struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type IDReq struct {
	ID int64 `json:"id"`
}

type ResolveReq struct {
	ID         int64  `json:"id"`
	Resolution uint8  `json:"resolution"`
	Amount     int64  `json:"amount"`
	Notes      string `json:"notes"`
}

type RejectReq struct {
	ID    int64  `json:"id"`
	Notes string `json:"notes"`
}

type PendingCountResp struct {
	Count int64 `json:"count"`
}
