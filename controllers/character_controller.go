package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsinghjay/gpt-character-gen/models"
	"github.com/gsinghjay/gpt-character-gen/services"
	"github.com/gsinghjay/gpt-character-gen/storage"
	"github.com/gsinghjay/gpt-character-gen/utils"
)

// CharacterController orchestrates character creation, variation generation
// and deletion over the store and the image generator.
type CharacterController struct {
	store  storage.Store
	gen    *services.Generator
	images *services.ImageStore
	log    *zap.SugaredLogger
}

// NewCharacterController creates a new CharacterController instance.
func NewCharacterController(store storage.Store, gen *services.Generator, images *services.ImageStore, log *zap.SugaredLogger) *CharacterController {
	return &CharacterController{store: store, gen: gen, images: images, log: log}
}

// Create builds a new character, generates its base portrait, and persists
// the record. If generation fails nothing is persisted.
func (cc *CharacterController) Create(ctx *gin.Context) {
	var req struct {
		Description string `json:"description" binding:"required"`
		Name        string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "description is required")
		return
	}

	description := strings.TrimSpace(utils.Sanitize(req.Description))
	if description == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "description cannot be empty")
		return
	}
	name := strings.TrimSpace(utils.Sanitize(req.Name))

	character := &models.Character{
		ID:          uuid.NewString(),
		Description: description,
		Name:        name,
		Variations:  []models.Variation{},
	}

	basePath, err := cc.gen.GenerateCharacterImage(ctx.Request.Context(), character, nil)
	if err != nil {
		cc.fail(ctx, err)
		return
	}
	character.BaseImagePath = basePath

	if err := cc.store.Save(ctx.Request.Context(), character); err != nil {
		cc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, character)
}

// List returns all characters, newest-created first.
func (cc *CharacterController) List(ctx *gin.Context) {
	characters, err := cc.store.List(ctx.Request.Context())
	if err != nil {
		cc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, characters)
}

// Get returns a single character by id.
func (cc *CharacterController) Get(ctx *gin.Context) {
	character, err := cc.store.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		cc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, character)
}

// AddVariation generates one more portrait for an existing character and
// appends it to the record. At least one of pose, expression or setting must
// be supplied; a failed generation leaves the stored record unchanged.
func (cc *CharacterController) AddVariation(ctx *gin.Context) {
	params := services.VariationParams{
		Pose:       strings.TrimSpace(utils.Sanitize(queryOrForm(ctx, "pose"))),
		Expression: strings.TrimSpace(utils.Sanitize(queryOrForm(ctx, "expression"))),
		Setting:    strings.TrimSpace(utils.Sanitize(queryOrForm(ctx, "setting"))),
	}
	if params.Empty() {
		utils.Error(ctx, http.StatusBadRequest, 40003, "at least one of pose, expression or setting must be provided")
		return
	}

	character, err := cc.store.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		cc.fail(ctx, err)
		return
	}

	imagePath, err := cc.gen.GenerateCharacterImage(ctx.Request.Context(), character, &params)
	if err != nil {
		cc.fail(ctx, err)
		return
	}

	character.Variations = append(character.Variations, models.Variation{
		CharacterID: character.ID,
		ImagePath:   imagePath,
		Pose:        params.Pose,
		Expression:  params.Expression,
		Setting:     params.Setting,
		GeneratedAt: time.Now(),
	})

	if err := cc.store.Save(ctx.Request.Context(), character); err != nil {
		cc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, character)
}

// Delete removes a character record and its image directory tree. Directory
// removal is best-effort; a filesystem error is logged but never blocks the
// record delete.
func (cc *CharacterController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := cc.store.Get(ctx.Request.Context(), id); err != nil {
		cc.fail(ctx, err)
		return
	}

	if err := cc.images.RemoveCharacterImages(id); err != nil {
		cc.log.Errorw("failed to remove character image directory", "character", id, "error", err)
	}

	deleted, err := cc.store.Delete(ctx.Request.Context(), id)
	if err != nil {
		cc.fail(ctx, err)
		return
	}
	if !deleted {
		utils.Error(ctx, http.StatusNotFound, 40401, "character not found")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// queryOrForm reads a request parameter from the query string first, then
// from form data.
func queryOrForm(ctx *gin.Context, key string) string {
	if v := ctx.Query(key); v != "" {
		return v
	}
	return ctx.PostForm(key)
}
