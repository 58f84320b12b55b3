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
	"errors"

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"gorm.io/gorm"
)

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/credit")
	g.POST("/detail", ginx.S(h.QueryCredits))
	g.POST("/transactions", ginx.BS[ListTransactionsReq](h.ListTransactions))
}

func (h *Handler) QueryCredits(ctx *ginx.Context, sess session.Session) (ginx.Result, error) {
	c, err := h.svc.GetBalance(ctx.Request.Context(), sess.Claims().Uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return systemErrorResult, err
	}
	// 账户记录尚未创建时返回零余额
	return ginx.Result{
		Data: Credit{
			Balance:       c.Balance,
			ServiceStatus: serviceStatusOrDefault(c.ServiceStatus),
		},
	}, nil
}

func (h *Handler) ListTransactions(ctx *ginx.Context, req ListTransactionsReq, sess session.Session) (ginx.Result, error) {
	ts, total, err := h.svc.ListTransactions(ctx.Request.Context(), sess.Claims().Uid,
		req.Offset, req.Limit, domain.TransactionFilter{
			Kind:      domain.TransactionKind(req.Kind),
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: ListTransactionsResp{
			Total: total,
			Transactions: slice.Map(ts, func(idx int, src domain.Transaction) Transaction {
				return newTransaction(src)
			}),
		},
	}, nil
}

func serviceStatusOrDefault(s domain.ServiceStatus) uint8 {
	if s == 0 {
		return domain.ServiceStatusActive.ToUint8()
	}
	return s.ToUint8()
}
