package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsinghjay/gpt-character-gen/services"
	"github.com/gsinghjay/gpt-character-gen/storage"
	"github.com/gsinghjay/gpt-character-gen/utils"
)

// fail is the single place where component errors become HTTP responses.
// Components return typed errors; nothing upstream of this function decides
// status codes, and no upstream error detail reaches the caller.
func (cc *CharacterController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "character not found")
	case errors.Is(err, services.ErrGeneration):
		utils.Error(ctx, http.StatusInternalServerError, 50001, "image generation failed, check server logs for details")
	default:
		cc.log.Errorw("request failed", "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
