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
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/idempotency"
)

// PaymentConsumer 消费支付确认事件为账户充值。
// webhook 可能重复投递,通过幂等模块保证同一事件只入账一次
type PaymentConsumer struct {
	svc      service.Service
	idemSvc  idempotency.Service
	consumer mq.Consumer
	logger   *elog.Component
}

func NewPaymentConsumer(svc service.Service, idemSvc idempotency.Service, q mq.MQ) (*PaymentConsumer, error) {
	groupID := "credit"
	consumer, err := q.Consumer(PaymentEventName, groupID)
	if err != nil {
		return nil, err
	}
	return &PaymentConsumer{
		svc:      svc,
		idemSvc:  idemSvc,
		consumer: consumer,
		logger:   elog.DefaultLogger,
	}, nil
}

func (c *PaymentConsumer) Start(ctx context.Context) {
	go func() {
		for {
			err := c.Consume(ctx)
			if err != nil {
				c.logger.Error("消费支付事件失败", elog.FieldErr(err))
			}
		}
	}()
}

func (c *PaymentConsumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("获取消息失败: %w", err)
	}

	var evt PaymentEvent
	err = json.Unmarshal(msg.Value, &evt)
	if err != nil {
		return fmt.Errorf("解析消息失败: %w", err)
	}

	key := evt.Key
	if key == "" {
		key = c.idemSvc.Key("payment", evt)
	}
	_, err = c.idemSvc.Do(ctx, key, "payment", func(ctx context.Context) ([]byte, error) {
		t, err := c.svc.AddCredits(ctx, domain.Transaction{
			Uid:        evt.Uid,
			Amount:     evt.Credits,
			Kind:       domain.KindPurchase,
			Biz:        evt.Biz,
			BizId:      evt.BizId,
			Desc:       "积分充值到账",
			PaymentRef: evt.PaymentRef,
			Metadata: map[string]string{
				"payment_event": evt.Key,
			},
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(PaymentCreditedResult{
			SN:           t.SN,
			BalanceAfter: t.BalanceAfter,
		})
	})
	if err != nil {
		c.logger.Error("支付事件入账失败",
			elog.FieldErr(err),
			elog.Any("event", evt),
		)
	}
	return nil
}

func (c *PaymentConsumer) Stop(_ context.Context) error {
	return c.consumer.Close()
}
