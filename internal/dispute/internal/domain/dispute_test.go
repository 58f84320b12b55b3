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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		from   DisputeStatus
		to     DisputeStatus
		wanted bool
	}{
		{
			name:   "待处理可进入审核",
			from:   DisputeStatusPending,
			to:     DisputeStatusUnderReview,
			wanted: true,
		},
		{
			name:   "待处理不能直接解决",
			from:   DisputeStatusPending,
			to:     DisputeStatusResolved,
			wanted: false,
		},
		{
			name:   "审核中可解决",
			from:   DisputeStatusUnderReview,
			to:     DisputeStatusResolved,
			wanted: true,
		},
		{
			name:   "审核中可驳回",
			from:   DisputeStatusUnderReview,
			to:     DisputeStatusRejected,
			wanted: true,
		},
		{
			name:   "审核中不能回到待处理",
			from:   DisputeStatusUnderReview,
			to:     DisputeStatusPending,
			wanted: false,
		},
		{
			name:   "已驳回可重新申诉",
			from:   DisputeStatusRejected,
			to:     DisputeStatusPending,
			wanted: true,
		},
		{
			name:   "已驳回不能直接解决",
			from:   DisputeStatusRejected,
			to:     DisputeStatusResolved,
			wanted: false,
		},
		{
			name:   "已解决是终态",
			from:   DisputeStatusResolved,
			to:     DisputeStatusPending,
			wanted: false,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.wanted, tc.from.CanTransitionTo(tc.to))
		})
	}
}
