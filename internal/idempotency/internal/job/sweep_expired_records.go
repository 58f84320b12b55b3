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
	"github.com/opshive/opshive/internal/idempotency/internal/service"
)

var _ ecron.NamedJob = (*SweepExpiredRecordsJob)(nil)

// SweepExpiredRecordsJob 周期清扫过期幂等记录,失败只记日志,不影响请求链路
type SweepExpiredRecordsJob struct {
	svc    service.Service
	limit  int
	logger *elog.Component
}

func NewSweepExpiredRecordsJob(svc service.Service, limit int) *SweepExpiredRecordsJob {
	return &SweepExpiredRecordsJob{
		svc:    svc,
		limit:  limit,
		logger: elog.DefaultLogger,
	}
}

func (j *SweepExpiredRecordsJob) Name() string {
	return "SweepExpiredRecordsJob"
}

func (j *SweepExpiredRecordsJob) Run(ctx context.Context) error {
	var total int64
	for {
		deleted, err := j.svc.SweepExpired(ctx, j.limit)
		if err != nil {
			return fmt.Errorf("清扫过期幂等记录失败: %w", err)
		}
		total += deleted
		if deleted < int64(j.limit) {
			break
		}
	}
	if total > 0 {
		j.logger.Info("清扫过期幂等记录完成",
			elog.Int64("deleted", total))
	}
	return nil
}
