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
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
	"github.com/opshive/opshive/internal/crossapp/internal/service"
)

type AdminHandler struct {
	svc service.Service
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/crossapp")
	g.POST("/usage", ginx.B[AdminUsageReq](h.Usage))
	g.POST("/rebuild", ginx.B[AdminUsageReq](h.RebuildUsage))
}

func (h *AdminHandler) Usage(ctx *ginx.Context, req AdminUsageReq) (ginx.Result, error) {
	us, err := h.svc.Usage(ctx.Request.Context(), req.Uid)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: UsageResp{Usages: newUsages(us)},
	}, nil
}

// RebuildUsage 计数与流水存在分歧时,管理员手工触发重建
func (h *AdminHandler) RebuildUsage(ctx *ginx.Context, req AdminUsageReq) (ginx.Result, error) {
	err := h.svc.RebuildUsage(ctx.Request.Context(), req.Uid)
	if err != nil {
		return systemErrorResult, err
	}
	us, err := h.svc.Usage(ctx.Request.Context(), req.Uid)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: UsageResp{Usages: newUsages(us)},
	}, nil
}
