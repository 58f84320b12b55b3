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

package job

import (
	"context"
	"fmt"

	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/task/ecron"
	"github.com/opshive/opshive/internal/credit/internal/service"
)

var _ ecron.NamedJob = (*ReconcileBalancesJob)(nil)

// ReconcileBalancesJob 核对账户余额与流水合计。
// 余额和流水在同一事务内写入,理论上不会不一致;一旦出现说明有绕过事务的写入,
// 这里只告警不自动修复,留给人工定位
type ReconcileBalancesJob struct {
	svc    service.Service
	limit  int
	logger *elog.Component
}

func NewReconcileBalancesJob(svc service.Service, limit int) *ReconcileBalancesJob {
	return &ReconcileBalancesJob{
		svc:    svc,
		limit:  limit,
		logger: elog.DefaultLogger,
	}
}

func (j *ReconcileBalancesJob) Name() string {
	return "ReconcileBalancesJob"
}

func (j *ReconcileBalancesJob) Run(ctx context.Context) error {
	offset := 0
	for {
		mismatched, checked, err := j.svc.ReconcileBalances(ctx, offset, j.limit)
		if err != nil {
			return fmt.Errorf("余额核对失败: %w", err)
		}
		if len(mismatched) > 0 {
			j.logger.Error("发现余额与流水不一致的账户",
				elog.Any("uids", mismatched))
		}
		if checked < j.limit {
			return nil
		}
		offset += checked
	}
}
