package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/dharamshala/internal/config"
	"github.com/joshua-takyi/dharamshala/internal/events"
	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/notify"
	"github.com/joshua-takyi/dharamshala/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	redisLockTTL     = 10 * time.Second
	redisLockMaxWait = 5 * time.Second
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Repo      *models.MongodbRepo
	Accounts  models.AccountsRepo
	Validator *helpers.TokenValidator
	Publisher events.Publisher

	AccountService   *services.AccountService
	VenueService     *services.VenuesService
	BookingService   *services.BookingService
	InventoryService *services.InventoryService
}

// NewContainer wires repositories, side-effect transports and services.
// redisClient and cld may be nil; the in-process locker and no image upload
// are used then.
func NewContainer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	cld *cloudinary.Cloudinary,
) (*Container, error) {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	var locker locks.Locker = locks.NewMemoryLocker()
	if redisClient != nil {
		locker = locks.NewRedisLocker(redisClient, redisLockTTL, redisLockMaxWait)
		logger.Info("using redis venue locks")
	}

	var uploader helpers.ImageUploader
	if cld != nil {
		uploader = helpers.NewCloudinaryUploader(cld)
	}

	var mailer notify.Mailer
	if cfg.EmailMockMode {
		mailer = notify.NewLogMailer(logger)
	} else {
		smtp, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SMTP mailer: %w", err)
		}
		mailer = smtp
	}
	dispatcher := notify.NewDispatcher(mailer, logger)

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		publisher = p
	}

	var (
		issuer    *helpers.TokenIssuer
		validator *helpers.TokenValidator
	)
	if cfg.JWKSURL != "" {
		v, err := helpers.NewJWKSValidator(ctx, cfg.JWKSURL)
		if err != nil {
			publisher.Close()
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		validator = v
	} else {
		issuer = helpers.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
		validator = helpers.NewHMACValidator(cfg.JWTSecret)
	}

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Repo:             repo,
		Accounts:         repo,
		Validator:        validator,
		Publisher:        publisher,
		AccountService:   services.NewAccountService(repo, repo, issuer, logger),
		VenueService:     services.NewVenuesService(repo, repo, locker, uploader, logger),
		BookingService:   services.NewBookingService(repo, locker, dispatcher, publisher, logger),
		InventoryService: services.NewInventoryService(repo, locker, logger),
	}, nil
}

// Close releases the broker connection and the JWKS refresher.
func (c *Container) Close() {
	c.Publisher.Close()
	c.Validator.Close()
}
