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

type DisputeStatus uint8

func (s DisputeStatus) ToUint8() uint8 {
	return uint8(s)
}

// CanTransitionTo 申诉状态机:pending -> under_review -> resolved/rejected,
// rejected 允许重新申诉回到 pending
func (s DisputeStatus) CanTransitionTo(target DisputeStatus) bool {
	switch s {
	case DisputeStatusPending:
		return target == DisputeStatusUnderReview
	case DisputeStatusUnderReview:
		return target == DisputeStatusResolved || target == DisputeStatusRejected
	case DisputeStatusRejected:
		return target == DisputeStatusPending
	default:
		return false
	}
}

const (
	DisputeStatusPending     DisputeStatus = 1
	DisputeStatusUnderReview DisputeStatus = 2
	DisputeStatusResolved    DisputeStatus = 3
	DisputeStatusRejected    DisputeStatus = 4
)

type Resolution uint8

func (r Resolution) ToUint8() uint8 {
	return uint8(r)
}

const (
	ResolutionFullRefund    Resolution = 1
	ResolutionPartialRefund Resolution = 2
	ResolutionExplanation   Resolution = 3
	ResolutionRejected      Resolution = 4
)

type Dispute struct {
	ID              int64
	Uid             int64
	TransactionSN   string
	Reason          string
	RequestedAmount int64
	ResolvedAmount  int64
	Resolution      Resolution
	Status          DisputeStatus
	AdminUid        int64
	AdminNotes      string
	SubmittedAt     int64
	ReviewedAt      int64
	ResolvedAt      int64
	Utime           int64
}
