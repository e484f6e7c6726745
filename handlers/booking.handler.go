package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/cache"
	"villa-booking-server/domain"
	hdfs_store "villa-booking-server/hdfs-store"
	"villa-booking-server/services"
	"villa-booking-server/utils"
)

const maxSlipSize = 10 << 20 // 10 MB

// EventLog is the read side of the booking audit trail.
type EventLog interface {
	GetEventsByBooking(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error)
}

type BookingHandler struct {
	bookingService      services.BookingService
	notificationService services.NotificationService
	events              EventLog
	fileStorage         *hdfs_store.FileStorage
	imageCache          *cache.ImageCache
	Tracer              trace.Tracer
	logger              *logrus.Logger
}

func NewBookingHandler(bookingService services.BookingService, notificationService services.NotificationService,
	events EventLog, fileStorage *hdfs_store.FileStorage, imageCache *cache.ImageCache,
	tracer trace.Tracer, logger *logrus.Logger) BookingHandler {
	return BookingHandler{
		bookingService:      bookingService,
		notificationService: notificationService,
		events:              events,
		fileStorage:         fileStorage,
		imageCache:          imageCache,
		Tracer:              tracer,
		logger:              logger,
	}
}

type createBookingInput struct {
	BookingDetails struct {
		CheckIn    time.Time `json:"checkIn" binding:"required"`
		CheckOut   time.Time `json:"checkOut" binding:"required"`
		Rooms      int       `json:"rooms" binding:"required,min=1"`
		TotalPrice float64   `json:"totalPrice" binding:"min=0"`
	} `json:"bookingDetails" binding:"required"`
	PaymentMethod   string `json:"paymentMethod" binding:"omitempty,oneof=bank_transfer promptpay"`
	SpecialRequests string `json:"specialRequests"`
}

func (bh *BookingHandler) CreateBooking(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.CreateBooking")
	defer span.End()

	var input createBookingInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	details := domain.BookingDetails{
		CheckIn:    input.BookingDetails.CheckIn,
		CheckOut:   input.BookingDetails.CheckOut,
		Rooms:      input.BookingDetails.Rooms,
		TotalPrice: input.BookingDetails.TotalPrice,
	}

	booking, err := bh.bookingService.CreateBooking(spanCtx, details, domain.PaymentMethod(input.PaymentMethod), input.SpecialRequests)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

func (bh *BookingHandler) GetBooking(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.GetBooking")
	defer span.End()

	booking, err := bh.bookingService.GetBooking(spanCtx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

func (bh *BookingHandler) GetAllBookings(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.GetAllBookings")
	defer span.End()

	bookings, err := bh.bookingService.GetAllBookings(spanCtx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "results": len(bookings), "data": gin.H{"bookings": bookings}})
}

type customerInfoInput struct {
	CustomerInfo struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Phone     string `json:"phone" binding:"required"`
	} `json:"customerInfo" binding:"required"`
}

func (bh *BookingHandler) UpdateCustomerInfo(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.UpdateCustomerInfo")
	defer span.End()

	var input customerInfoInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "All customer information fields are required"})
		return
	}

	info := domain.CustomerInfo{
		FirstName: strings.TrimSpace(input.CustomerInfo.FirstName),
		LastName:  strings.TrimSpace(input.CustomerInfo.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.CustomerInfo.Email)),
		Phone:     strings.TrimSpace(input.CustomerInfo.Phone),
	}
	if !utils.ValidateEmail(info.Email) {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid email format"})
		return
	}
	if !utils.ValidatePhone(info.Phone) {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid phone format"})
		return
	}

	booking, err := bh.bookingService.SetCustomerInfo(spanCtx, ctx.Param("id"), info)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

type paymentInput struct {
	PaymentMethod  string `json:"paymentMethod" binding:"omitempty,oneof=bank_transfer promptpay"`
	PaymentSlipRef string `json:"paymentSlipRef"`
}

// UpdatePayment covers both customer payment steps: selecting the payment
// method and, when a slip reference is supplied, attaching the evidence.
func (bh *BookingHandler) UpdatePayment(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.UpdatePayment")
	defer span.End()

	var input paymentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if input.PaymentMethod == "" && input.PaymentSlipRef == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Nothing to update"})
		return
	}

	booking, err := bh.bookingService.UpdatePayment(spanCtx, ctx.Param("id"), domain.PaymentMethod(input.PaymentMethod), input.PaymentSlipRef)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

// UploadPaymentSlip receives the multipart slip, persists it to the blob
// store and attaches the returned reference to the booking.
func (bh *BookingHandler) UploadPaymentSlip(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.UploadPaymentSlip")
	defer span.End()

	fileHeader, err := ctx.FormFile("slip")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No file uploaded"})
		return
	}
	if fileHeader.Size > maxSlipSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read uploaded file"})
		return
	}

	ref, err := bh.fileStorage.StorePaymentSlip(data, filepath.Ext(fileHeader.Filename))
	if err != nil {
		bh.logger.Error("Could not store payment slip: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not store payment slip"})
		return
	}

	if err := bh.imageCache.PostImage(spanCtx, ref, data); err != nil {
		// Cache miss on review is just a slower read.
		bh.logger.Warn("Could not cache payment slip: ", err)
	}

	booking, err := bh.bookingService.UpdatePayment(spanCtx, ctx.Param("id"), "", ref)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

// GetPaymentSlip serves the slip image for admin review, preferring the
// cache over the blob store.
func (bh *BookingHandler) GetPaymentSlip(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.GetPaymentSlip")
	defer span.End()

	booking, err := bh.bookingService.GetBooking(spanCtx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if booking.PaymentSlipRef == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Booking has no payment slip"})
		return
	}

	if data, err := bh.imageCache.GetImage(spanCtx, booking.PaymentSlipRef); err == nil {
		ctx.Data(http.StatusOK, "application/octet-stream", data)
		return
	}

	data, err := bh.fileStorage.ReadFile(booking.PaymentSlipRef)
	if err != nil {
		bh.logger.Error("Could not read payment slip: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not read payment slip"})
		return
	}
	if err := bh.imageCache.PostImage(spanCtx, booking.PaymentSlipRef, data); err != nil {
		bh.logger.Warn("Could not cache payment slip: ", err)
	}
	ctx.Data(http.StatusOK, "application/octet-stream", data)
}

type updateBookingInput struct {
	BookingDetails *struct {
		CheckIn    time.Time `json:"checkIn" binding:"required"`
		CheckOut   time.Time `json:"checkOut" binding:"required"`
		Rooms      int       `json:"rooms" binding:"required,min=1"`
		TotalPrice float64   `json:"totalPrice" binding:"min=0"`
	} `json:"bookingDetails"`
	CustomerInfo *struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Phone     string `json:"phone" binding:"required"`
	} `json:"customerInfo"`
}

// UpdateBooking is the admin edit of stay details and customer info. Omitted
// sections are left untouched.
func (bh *BookingHandler) UpdateBooking(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.UpdateBooking")
	defer span.End()

	var input updateBookingInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if input.BookingDetails == nil && input.CustomerInfo == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Nothing to update"})
		return
	}

	var details *domain.BookingDetails
	if input.BookingDetails != nil {
		details = &domain.BookingDetails{
			CheckIn:    input.BookingDetails.CheckIn,
			CheckOut:   input.BookingDetails.CheckOut,
			Rooms:      input.BookingDetails.Rooms,
			TotalPrice: input.BookingDetails.TotalPrice,
		}
	}

	var info *domain.CustomerInfo
	if input.CustomerInfo != nil {
		info = &domain.CustomerInfo{
			FirstName: strings.TrimSpace(input.CustomerInfo.FirstName),
			LastName:  strings.TrimSpace(input.CustomerInfo.LastName),
			Email:     strings.ToLower(strings.TrimSpace(input.CustomerInfo.Email)),
			Phone:     strings.TrimSpace(input.CustomerInfo.Phone),
		}
		if !utils.ValidateEmail(info.Email) {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid email format"})
			return
		}
		if !utils.ValidatePhone(info.Phone) {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid phone format"})
			return
		}
	}

	booking, err := bh.bookingService.UpdateBooking(spanCtx, ctx.Param("id"), details, info)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

func (bh *BookingHandler) CancelBooking(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.CancelBooking")
	defer span.End()

	booking, err := bh.bookingService.CancelBooking(spanCtx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

type statusInput struct {
	Status string `json:"status" binding:"required,bookingstatus"`
}

func (bh *BookingHandler) UpdateStatus(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.UpdateStatus")
	defer span.End()

	var input statusInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid status"})
		return
	}

	booking, err := bh.bookingService.UpdateStatus(spanCtx, ctx.Param("id"), domain.BookingStatus(input.Status))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"booking": booking}})
}

func (bh *BookingHandler) DeleteBooking(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.DeleteBooking")
	defer span.End()

	if err := bh.bookingService.DeleteBooking(spanCtx, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Booking deleted successfully"})
}

// GetBookingEvents returns the lifecycle audit trail of a booking.
func (bh *BookingHandler) GetBookingEvents(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.GetBookingEvents")
	defer span.End()

	events, err := bh.events.GetEventsByBooking(spanCtx, ctx.Param("id"))
	if err != nil {
		bh.logger.Error("Could not read booking events: ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not read booking events"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "results": len(events), "data": gin.H{"events": events}})
}

// SendConfirmation emails the customer. The booking already succeeded, so a
// notifier failure is reported but never rolls anything back.
func (bh *BookingHandler) SendConfirmation(ctx *gin.Context) {
	spanCtx, span := bh.Tracer.Start(ctx.Request.Context(), "BookingHandler.SendConfirmation")
	defer span.End()

	booking, err := bh.bookingService.GetBooking(spanCtx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := bh.notificationService.SendBookingConfirmation(spanCtx, booking); err != nil {
		bh.logger.Error("Could not send confirmation email: ", err)
		ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Booking is confirmed but the confirmation email could not be sent"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Confirmation email sent successfully"})
}
