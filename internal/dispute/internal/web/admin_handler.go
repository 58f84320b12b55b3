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
	"github.com/opshive/opshive/internal/credit"
	"github.com/opshive/opshive/internal/dispute/internal/domain"
	"github.com/opshive/opshive/internal/dispute/internal/service"
)

type AdminHandler struct {
	svc service.Service
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/dispute")
	g.POST("/pending", ginx.B[ListReq](h.ListPending))
	g.POST("/count", ginx.W(h.PendingCount))
	g.POST("/info", ginx.B[IDReq](h.Info))
	g.POST("/begin-review", ginx.BS[IDReq](h.BeginReview))
	g.POST("/resolve", ginx.BS[ResolveReq](h.Resolve))
	g.POST("/reject", ginx.BS[RejectReq](h.Reject))
}

func (h *AdminHandler) ListPending(ctx *ginx.Context, req ListReq) (ginx.Result, error) {
	ds, total, err := h.svc.ListPending(ctx.Request.Context(), req.Offset, req.Limit)
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

func (h *AdminHandler) PendingCount(ctx *ginx.Context) (ginx.Result, error) {
	count, err := h.svc.PendingCount(ctx.Request.Context())
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: PendingCountResp{Count: count},
	}, nil
}

func (h *AdminHandler) Info(ctx *ginx.Context, req IDReq) (ginx.Result, error) {
	d, err := h.svc.Info(ctx.Request.Context(), req.ID)
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{
		Data: newDispute(d),
	}, nil
}

func (h *AdminHandler) BeginReview(ctx *ginx.Context, req IDReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.BeginReview(ctx.Request.Context(), req.ID, adminContext(sess))
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}

func (h *AdminHandler) Resolve(ctx *ginx.Context, req ResolveReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.Resolve(ctx.Request.Context(), req.ID,
		domain.Resolution(req.Resolution), req.Amount, req.Notes, adminContext(sess))
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}

func (h *AdminHandler) Reject(ctx *ginx.Context, req RejectReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.Reject(ctx.Request.Context(), req.ID, req.Notes, adminContext(sess))
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}

func adminContext(sess session.Session) credit.AdminContext {
	claims := sess.Claims()
	return credit.AdminContext{
		Uid:   claims.Uid,
		Email: claims.Get("email").StringOrDefault(""),
	}
}
