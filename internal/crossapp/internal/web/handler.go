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

	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
	"gorm.io/gorm"
)

// tokenHeader 合作方调用不走用户会话,改用应用令牌
const tokenHeader = "X-App-Token"

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	g := server.Group("/app/v1")
	g.POST("/balance", ginx.W(h.Balance))
	g.POST("/consume", ginx.B[ConsumeReq](h.Consume))
}

func (h *Handler) Balance(ctx *ginx.Context) (ginx.Result, error) {
	c, err := h.svc.GetBalance(ctx.Request.Context(), ctx.GetHeader(tokenHeader))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 账户记录尚未创建时返回零余额
			return ginx.Result{Data: BalanceResp{
				ServiceStatus: credit.ServiceStatusActive.ToUint8(),
			}}, nil
		}
		return errorResult(err), err
	}
	return ginx.Result{
		Data: BalanceResp{
			Balance:       c.Balance,
			ServiceStatus: c.ServiceStatus.ToUint8(),
		},
	}, nil
}

func (h *Handler) Consume(ctx *ginx.Context, req ConsumeReq) (ginx.Result, error) {
	res, err := h.svc.ConsumeCredits(ctx.Request.Context(), ctx.GetHeader(tokenHeader),
		service.ConsumeRequest{
			RequestId: req.RequestId,
			Amount:    req.Amount,
			Desc:      req.Desc,
			JobId:     req.JobId,
		})
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{
		Data: ConsumeResp{
			SN:           res.SN,
			BalanceAfter: res.BalanceAfter,
		},
	}, nil
}
