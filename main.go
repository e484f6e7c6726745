package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"gopkg.in/natefinch/lumberjack.v2"

	"villa-booking-server/cache"
	"villa-booking-server/config"
	"villa-booking-server/handlers"
	hdfs_store "villa-booking-server/hdfs-store"
	"villa-booking-server/repository"
	"villa-booking-server/routes"
	"villa-booking-server/services"
	"villa-booking-server/sweeper"
)

var (
	server      *gin.Engine
	ctx         context.Context
	mongoclient *mongo.Client

	cfg    *config.Config
	logger *logrus.Logger

	eventRepo   *repository.EventRepo
	fileStorage *hdfs_store.FileStorage
	imageCache  *cache.ImageCache

	bookingSweeper *sweeper.Sweeper

	BookingRouteHandler routes.BookingRouteHandler
	VillaRouteHandler   routes.VillaRouteHandler
	AuthRouteHandler    routes.AuthRouteHandler
)

func init() {
	ctx = context.TODO()

	//logging
	logger = logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	lumberjackLog := &lumberjack.Logger{
		Filename:  "/villa-booking-server/logs/logfile.log",
		MaxSize:   1,
		LocalTime: true,
	}
	logger.SetOutput(lumberjackLog)
	logger.WithFields(logrus.Fields{"path": "booking/main"}).Info("Villa booking server starting")
	//logging

	cfg = config.LoadConfig()

	mongoconn := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(ctx, mongoconn)
	if err != nil {
		panic(err)
	}
	mongoclient = client

	if err := mongoclient.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}
	logger.Info("MongoDB successfully connected...")

	tracerProvider, err := NewTracerProvider(cfg.ServiceName, cfg.JaegerAddr)
	if err != nil {
		logger.Fatalf("JaegerTraceProvider failed to Initialize. Error :%s", err)
	}
	tracer := tracerProvider.Tracer(cfg.ServiceName)

	stdLogger := log.New(os.Stdout, "[booking-server] ", log.LstdFlags)

	// Collections
	db := mongoclient.Database("VillaBooking")
	bookingRepo := repository.NewBookingRepo(db.Collection("bookings"), stdLogger, tracer)
	villaRepo := repository.NewVillaRepo(db.Collection("villas"), stdLogger, tracer)
	adminRepo := repository.NewAdminRepo(db.Collection("admins"), stdLogger, tracer)

	if err := bookingRepo.CreateIndexes(ctx); err != nil {
		logger.Error("Could not create booking indexes: ", err)
	}
	if err := villaRepo.EnsureDefaultVilla(ctx); err != nil {
		logger.Fatalf("Could not ensure default villa. Error :%s", err)
	}

	eventRepo, err = repository.NewEventRepo(stdLogger, tracer)
	if err != nil {
		logger.Fatalf("Event store failed to Initialize. Error :%s", err)
	}
	eventRepo.CreateTable()

	fileStorage, err = hdfs_store.New(stdLogger)
	if err != nil {
		logger.Fatalf("File storage failed to Initialize. Error :%s", err)
	}
	if err := fileStorage.CreateDirectories(); err != nil {
		logger.Error("Could not create storage directories: ", err)
	}

	imageCache = cache.New(stdLogger, tracer)
	imageCache.Ping()

	availabilityService := services.NewAvailabilityServiceImpl(bookingRepo, villaRepo, tracer, time.Now)
	bookingService := services.NewBookingServiceImpl(bookingRepo, villaRepo, eventRepo, availabilityService,
		logger, tracer, time.Now, cfg.GraceWindow, cfg.PaymentWindow)
	villaService := services.NewVillaServiceImpl(villaRepo, tracer)
	notificationService := services.NewNotificationServiceImpl(cfg, logger, tracer)

	bookingSweeper = sweeper.New(bookingRepo, eventRepo, logger, tracer, cfg.SweepInterval, time.Now)

	authHandler := handlers.NewAuthHandler(adminRepo, cfg.JWTSecret, tracer, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, notificationService, eventRepo, fileStorage, imageCache, tracer, logger)
	villaHandler := handlers.NewVillaHandler(villaService, fileStorage, imageCache, tracer, logger)

	BookingRouteHandler = routes.NewBookingRouteHandler(bookingHandler, authHandler)
	VillaRouteHandler = routes.NewVillaRouteHandler(villaHandler, authHandler)
	AuthRouteHandler = routes.NewAuthRouteHandler(authHandler)

	server = gin.Default()
}

func main() {
	defer mongoclient.Disconnect(ctx)
	defer eventRepo.CloseSession()
	defer fileStorage.Close()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "https://localhost:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	server.Use(cors.New(corsConfig))

	router := server.Group("/api")
	router.GET("/healthchecker", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Villa booking server is running"})
	})

	publicRouter := server.Group("/api/public")
	adminRouter := server.Group("/api/admin")

	BookingRouteHandler.BookingRoute(router)
	BookingRouteHandler.BookingRoute(publicRouter)
	BookingRouteHandler.AdminBookingRoute(adminRouter)
	VillaRouteHandler.VillaRoute(router)
	VillaRouteHandler.AdminVillaRoute(adminRouter)
	AuthRouteHandler.AuthRoute(adminRouter)

	bookingSweeper.Start(ctx)
	defer bookingSweeper.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start. Error :%s", err)
		}
	}()
	logger.Info("Server listening on port ", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: ", err)
	}
}

func NewTracerProvider(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize exporter due: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String("development"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
