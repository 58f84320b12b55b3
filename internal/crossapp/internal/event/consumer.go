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

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"github.com/opshive/opshive/internal/idempotency"
)

// PurchaseConsumer 消费购买事件,写积分流水并累加应用购买计数
type PurchaseConsumer struct {
	svc      service.Service
	idemSvc  idempotency.Service
	consumer mq.Consumer
	logger   *elog.Component
}

func NewPurchaseConsumer(svc service.Service, idemSvc idempotency.Service, q mq.MQ) (*PurchaseConsumer, error) {
	groupID := "crossapp"
	consumer, err := q.Consumer(PurchaseEventName, groupID)
	if err != nil {
		return nil, err
	}
	return &PurchaseConsumer{
		svc:      svc,
		idemSvc:  idemSvc,
		consumer: consumer,
		logger:   elog.DefaultLogger,
	}, nil
}

func (c *PurchaseConsumer) Start(ctx context.Context) {
	go func() {
		for {
			err := c.Consume(ctx)
			if err != nil {
				c.logger.Error("消费购买事件失败", elog.FieldErr(err))
			}
		}
	}()
}

func (c *PurchaseConsumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("获取消息失败: %w", err)
	}

	var evt PurchaseEvent
	err = json.Unmarshal(msg.Value, &evt)
	if err != nil {
		return fmt.Errorf("解析消息失败: %w", err)
	}

	key := evt.Key
	if key == "" {
		key = c.idemSvc.Key("crossapp_purchase", evt)
	}
	// 入账与计数通过幂等模块挡掉重复投递
	_, err = c.idemSvc.Do(ctx, key, "crossapp_purchase", func(ctx context.Context) ([]byte, error) {
		err := c.svc.RecordPurchase(ctx, evt.Uid, evt.AppId, evt.Credits)
		if err != nil {
			return nil, err
		}
		return []byte("{}"), nil
	})
	if err != nil {
		c.logger.Error("处理购买事件失败",
			elog.FieldErr(err),
			elog.Any("event", evt),
		)
	}
	return nil
}

func (c *PurchaseConsumer) Stop(_ context.Context) error {
	return c.consumer.Close()
}
