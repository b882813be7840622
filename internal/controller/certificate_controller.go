package controller

import (
	"net/http"
	"strings"

	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	Service *service.CertificateService
}

func NewCertificateController(svc *service.CertificateService) *CertificateController {
	return &CertificateController{Service: svc}
}

// Generate godoc
// @Summary 颁发证书
// @Description 同一用户同一领域只能有一张有效证书
// @Tags 证书
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GenerateCertificateRequest true "课程信息"
// @Success 201 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "已存在有效证书"
// @Router /api/certificates/generate [post]
func (c *CertificateController) Generate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.GenerateCertificateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		util.BadRequest(ctx, util.ErrDomainRequired.Error())
		return
	}
	if req.CompletionRate != nil && (*req.CompletionRate < 0 || *req.CompletionRate > 100) {
		util.BadRequest(ctx, "completionRate must be between 0 and 100")
		return
	}

	cert, err := c.Service.Generate(ctx.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"certificate": cert})
}

// List godoc
// @Summary 我的证书列表
// @Tags 证书
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	certs, err := c.Service.List(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"certificates": certs})
}

// Get godoc
// @Summary 证书详情，同时增加下载次数
// @Tags 证书
// @Security ApiKeyAuth
// @Param   id path string true "证书ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/certificates/{id} [get]
func (c *CertificateController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cert, err := c.Service.Get(userID, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"certificate": cert})
}

// Verify godoc
// @Summary 公开验证证书
// @Tags 证书
// @Param   id path string true "证书ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/certificates/verify/{id} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	result, err := c.Service.Verify(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Image godoc
// @Summary 下载证书图片
// @Tags 证书
// @Produce png
// @Security ApiKeyAuth
// @Param   id path string true "证书ID"
// @Success 200 {file} binary
// @Router /api/certificates/{id}/image [get]
func (c *CertificateController) Image(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	img, err := c.Service.Image(ctx.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `inline; filename="`+id+`.png"`)
	ctx.Data(http.StatusOK, util.MimePNG, img)
}

// Revoke godoc
// @Summary 吊销证书
// @Tags 证书
// @Security ApiKeyAuth
// @Param   id path string true "证书ID"
// @Success 200 {object} util.Response
// @Router /api/certificates/{id}/revoke [post]
func (c *CertificateController) Revoke(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.Service.Revoke(userID, ctx.Param("id")); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Certificate revoked", nil)
}
