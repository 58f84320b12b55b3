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
	"github.com/gotomicro/ego/core/elog"
	"github.com/opshive/opshive/internal/credit/internal/domain"
	"github.com/opshive/opshive/internal/credit/internal/service"
	"github.com/opshive/opshive/internal/user"
	"gorm.io/gorm"
)

type AdminHandler struct {
	svc     service.Service
	userSvc user.UserService
	logger  *elog.Component
}

func NewAdminHandler(svc service.Service, userSvc user.UserService) *AdminHandler {
	return &AdminHandler{
		svc:     svc,
		userSvc: userSvc,
		logger:  elog.DefaultLogger,
	}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/credit")
	g.POST("/detail", ginx.B[AdminUIDReq](h.Detail))
	g.POST("/transactions", ginx.B[AdminListTransactionsReq](h.ListTransactions))
	g.POST("/add", ginx.BS[AdminAddCreditsReq](h.AddCredits))
	g.POST("/remove", ginx.BS[AdminRemoveCreditsReq](h.RemoveCredits))
	g.POST("/pause", ginx.BS[AdminPauseServiceReq](h.PauseService))
	g.POST("/resume", ginx.BS[AdminUIDReq](h.ResumeService))
	g.POST("/stats", ginx.W(h.Stats))
}

func (h *AdminHandler) Detail(ctx *ginx.Context, req AdminUIDReq) (ginx.Result, error) {
	c, err := h.svc.GetBalance(ctx.Request.Context(), req.Uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accountNotFoundResult, nil
		}
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: newCredit(c),
	}, nil
}

func (h *AdminHandler) ListTransactions(ctx *ginx.Context, req AdminListTransactionsReq) (ginx.Result, error) {
	ts, total, err := h.svc.ListTransactions(ctx.Request.Context(), req.Uid,
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

func (h *AdminHandler) AddCredits(ctx *ginx.Context, req AdminAddCreditsReq, sess session.Session) (ginx.Result, error) {
	admin := h.adminContext(sess)
	t, err := h.svc.AddCredits(ctx.Request.Context(), domain.Transaction{
		Uid:      req.Uid,
		Amount:   req.Amount,
		Kind:     domain.KindAdminAdjustment,
		Biz:      req.Biz,
		BizId:    req.BizId,
		Desc:     req.Desc,
		Metadata: h.auditMetadata(ctx, req.Uid, admin),
	})
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{
		Data: newTransaction(t),
	}, nil
}

func (h *AdminHandler) RemoveCredits(ctx *ginx.Context, req AdminRemoveCreditsReq, sess session.Session) (ginx.Result, error) {
	admin := h.adminContext(sess)
	t, err := h.svc.RemoveCredits(ctx.Request.Context(), domain.Transaction{
		Uid:      req.Uid,
		Amount:   req.Amount,
		Desc:     req.Desc,
		Metadata: h.auditMetadata(ctx, req.Uid, admin),
	}, admin)
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{
		Data: newTransaction(t),
	}, nil
}

func (h *AdminHandler) PauseService(ctx *ginx.Context, req AdminPauseServiceReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.PauseService(ctx.Request.Context(), req.Uid, req.Reason, h.adminContext(sess))
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}

func (h *AdminHandler) ResumeService(ctx *ginx.Context, req AdminUIDReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.ResumeService(ctx.Request.Context(), req.Uid, h.adminContext(sess))
	if err != nil {
		return errorResult(err), err
	}
	return ginx.Result{}, nil
}

func (h *AdminHandler) Stats(ctx *ginx.Context) (ginx.Result, error) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		return systemErrorResult, err
	}
	// 用户总数拿不到就置零,不因此拖垮整个统计接口
	totalUsers, err := h.userSvc.Total(ctx.Request.Context())
	if err != nil {
		h.logger.Warn("统计用户总数失败", elog.FieldErr(err))
	}
	return ginx.Result{
		Data: StatsResp{
			TotalUsers:          totalUsers,
			AccountsWithBalance: stats.AccountsWithBalance,
			OutstandingCredits:  stats.OutstandingCredits,
			ActiveAccounts:      stats.ActiveAccounts,
			PausedAccounts:      stats.PausedAccounts,
			RecentTransactions:  stats.RecentTransactions,
		},
	}, nil
}

func (h *AdminHandler) adminContext(sess session.Session) service.AdminContext {
	claims := sess.Claims()
	return service.AdminContext{
		Uid:   claims.Uid,
		Email: claims.Get("email").StringOrDefault(""),
	}
}

// auditMetadata 在流水元数据里额外记录目标账户邮箱,便于审计时直接定位
func (h *AdminHandler) auditMetadata(ctx *ginx.Context, uid int64, admin service.AdminContext) map[string]string {
	metadata := make(map[string]string, 2)
	profile, err := h.userSvc.Profile(ctx.Request.Context(), uid)
	if err != nil {
		h.logger.Warn("获取目标账户信息失败",
			elog.FieldErr(err),
			elog.Int64("uid", uid))
		return metadata
	}
	if profile.Email != "" {
		metadata["account_email"] = profile.Email
	}
	return metadata
}
