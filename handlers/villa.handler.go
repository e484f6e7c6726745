package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/cache"
	"villa-booking-server/domain"
	hdfs_store "villa-booking-server/hdfs-store"
	"villa-booking-server/services"
)

const maxImageSize = 10 << 20 // 10 MB

type VillaHandler struct {
	villaService services.VillaService
	fileStorage  *hdfs_store.FileStorage
	imageCache   *cache.ImageCache
	Tracer       trace.Tracer
	logger       *logrus.Logger
}

func NewVillaHandler(villaService services.VillaService, fileStorage *hdfs_store.FileStorage,
	imageCache *cache.ImageCache, tracer trace.Tracer, logger *logrus.Logger) VillaHandler {
	return VillaHandler{
		villaService: villaService,
		fileStorage:  fileStorage,
		imageCache:   imageCache,
		Tracer:       tracer,
		logger:       logger,
	}
}

func (vh *VillaHandler) GetVilla(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.GetVilla")
	defer span.End()

	villa, err := vh.villaService.GetVilla(spanCtx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"villa": villa}})
}

func (vh *VillaHandler) UpdateVilla(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.UpdateVilla")
	defer span.End()

	var villa domain.Villa
	if err := ctx.ShouldBindJSON(&villa); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := vh.villaService.UpdateVilla(spanCtx, &villa)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"villa": updated}})
}

// UploadImage stores a villa image and attaches it as a slide image, or as
// the background image when the "kind" form field says so.
func (vh *VillaHandler) UploadImage(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.UploadImage")
	defer span.End()

	data, ext, ok := vh.readUpload(ctx, "image")
	if !ok {
		return
	}

	ref, err := vh.fileStorage.StoreVillaImage(data, ext)
	if err != nil {
		vh.logger.Error("Could not store villa image: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not store image"})
		return
	}
	if err := vh.imageCache.PostImage(spanCtx, ref, data); err != nil {
		vh.logger.Warn("Could not cache villa image: ", err)
	}

	var villa *domain.Villa
	if ctx.PostForm("kind") == "background" {
		villa, err = vh.villaService.SetBackgroundImage(spanCtx, ref)
	} else {
		villa, err = vh.villaService.AddSlideImage(spanCtx, ref)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"ref": ref, "villa": villa}})
}

func (vh *VillaHandler) DeleteImage(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.DeleteImage")
	defer span.End()

	ref := ctx.Query("ref")
	if ref == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Image ref is required"})
		return
	}

	villa, err := vh.villaService.RemoveSlideImage(spanCtx, ref)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if err := vh.fileStorage.DeleteFile(ref); err != nil {
		// The reference is already detached, so an orphaned blob is tolerable.
		vh.logger.Warn("Could not delete villa image blob: ", err)
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"villa": villa}})
}

// UploadQR replaces the PromptPay QR code image.
func (vh *VillaHandler) UploadQR(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.UploadQR")
	defer span.End()

	data, ext, ok := vh.readUpload(ctx, "qr")
	if !ok {
		return
	}

	ref, err := vh.fileStorage.StoreQRImage(data, ext)
	if err != nil {
		vh.logger.Error("Could not store QR image: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not store image"})
		return
	}
	if err := vh.imageCache.PostImage(spanCtx, ref, data); err != nil {
		vh.logger.Warn("Could not cache QR image: ", err)
	}

	villa, err := vh.villaService.SetPromptPayQR(spanCtx, ref)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"ref": ref, "villa": villa}})
}

// GetImage serves any stored villa image by ref, cache first.
func (vh *VillaHandler) GetImage(ctx *gin.Context) {
	spanCtx, span := vh.Tracer.Start(ctx.Request.Context(), "VillaHandler.GetImage")
	defer span.End()

	ref := ctx.Query("ref")
	if ref == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Image ref is required"})
		return
	}

	if data, err := vh.imageCache.GetImage(spanCtx, ref); err == nil {
		ctx.Data(http.StatusOK, "application/octet-stream", data)
		return
	}

	data, err := vh.fileStorage.ReadFile(ref)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Image not found"})
		return
	}
	if err := vh.imageCache.PostImage(spanCtx, ref, data); err != nil {
		vh.logger.Warn("Could not cache image: ", err)
	}
	ctx.Data(http.StatusOK, "application/octet-stream", data)
}

func (vh *VillaHandler) readUpload(ctx *gin.Context, field string) ([]byte, string, bool) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No file uploaded"})
		return nil, "", false
	}
	if fileHeader.Size > maxImageSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "File too large"})
		return nil, "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read uploaded file"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read uploaded file"})
		return nil, "", false
	}
	return data, filepath.Ext(fileHeader.Filename), true
}
