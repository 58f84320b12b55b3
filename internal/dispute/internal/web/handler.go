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
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/service"
)

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/dispute")
	g.POST("/submit", ginx.BS[SubmitReq](h.Submit))
	g.POST("/list", ginx.BS[ListReq](h.List))
	g.POST("/detail", ginx.BS[IDReq](h.Detail))
	g.POST("/appeal", ginx.BS[AppealReq](h.Appeal))
}

func (h *Handler) Submit(ctx *ginx.Context, req SubmitReq, sess session.Session) (ginx.Result, error) {
	id, err := h.svc.Submit(ctx.Request.Context(), domain.Dispute{
		Uid:             sess.Claims().Uid,
		TransactionSN:   req.TransactionSN,
		Reason:          req.Reason,
		RequestedAmount: req.RequestedAmount,
	})
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{
		Data: SubmitResp{ID: id},
	}, nil
}

func (h *Handler) List(ctx *ginx.Context, req ListReq, sess session.Session) (ginx.Result, error) {
	ds, total, err := h.svc.List(ctx.Request.Context(), sess.Claims().Uid, req.Offset, req.Limit)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: ListResp{
			Total: total,
			Disputes: slice.Map(ds, func(idx int, src domain.Dispute) Dispute {
				return newDispute(src)
			}),
		},
	}, nil
}

func (h *Handler) Detail(ctx *ginx.Context, req IDReq, sess session.Session) (ginx.Result, error) {
	d, err := h.svc.Info(ctx.Request.Context(), req.ID)
	if err != nil {
		return errorResult(err), err
	}
	// 只允许查看自己的申诉
	if d.Uid != sess.Claims().Uid {
		return disputeNotFoundResult, service.ErrDisputeNotFound
	}
	return ginx.Result{
		Data: newDispute(d),
	}, nil
}

func (h *Handler) Appeal(ctx *ginx.Context, req AppealReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.Appeal(ctx.Request.Context(), req.ID, sess.Claims().Uid, req.Reason)
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}
