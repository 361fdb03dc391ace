package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	VenueFolder = "venues"
	tokenIssuer = "dharamshala-api"
)

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue signs an HS256 token whose subject is the account id.
func (ti *TokenIssuer) Issue(account *models.Account) (string, time.Time, error) {
	if len(ti.secret) == 0 {
		return "", time.Time{}, errors.New("token signing secret not configured")
	}
	now := time.Now()
	expires := now.Add(ti.ttl)
	claims := &Claims{
		Role:  string(account.Role),
		Email: account.Email,
		Name:  account.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.Hex(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// TokenValidator verifies access tokens either with the shared HMAC secret
// or against a remote JWKS.
type TokenValidator struct {
	keyfunc jwt.Keyfunc
	methods []string
	jwks    *keyfunc.JWKS
}

func NewHMACValidator(secret string) *TokenValidator {
	key := []byte(secret)
	return &TokenValidator{
		keyfunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}
}

func NewJWKSValidator(ctx context.Context, jwksURL string) (*TokenValidator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return &TokenValidator{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256"},
		jwks:    jwks,
	}, nil
}

func (tv *TokenValidator) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, tv.keyfunc, jwt.WithValidMethods(tv.methods))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Close stops the JWKS background refresh, if any.
func (tv *TokenValidator) Close() {
	if tv.jwks != nil {
		tv.jwks.EndBackground()
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasNumber  = regexp.MustCompile(`\d`)
	hasSpecial = regexp.MustCompile(`[@$!%*?&#^_\-]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return hasLower.MatchString(password) && hasUpper.MatchString(password) &&
		hasNumber.MatchString(password) && hasSpecial.MatchString(password)
}

// ImageUploader turns image references (hosted URLs, data URIs) into hosted URLs.
type ImageUploader interface {
	UploadImages(ctx context.Context, images []string, folder string) ([]string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func IsHostedURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsImageDataURI reports whether s is an inline base64 image.
func IsImageDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/") && api.IsBase64Data(s)
}

// CheckImageRefs accepts blanks, http(s) URLs and data:image URIs only. Any
// other string would reach the uploader as a server-side file path.
func CheckImageRefs(images []string) error {
	ve := &models.ValidationError{}
	for i, img := range images {
		img = strings.TrimSpace(img)
		if img == "" || IsHostedURL(img) || IsImageDataURI(img) {
			continue
		}
		ve.Add(fmt.Sprintf("images[%d]", i), "must be an http(s) URL or a base64 data:image URI")
	}
	return ve.OrNil()
}

// UploadImages uploads every data URI and keeps hosted URLs as they are.
func (cu *CloudinaryUploader) UploadImages(ctx context.Context, images []string, folder string) ([]string, error) {
	if err := CheckImageRefs(images); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if IsHostedURL(img) {
			urls = append(urls, img)
			continue
		}
		res, err := cu.cld.Upload.Upload(ctx, img, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"dharamshala"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		if res.Error.Message != "" {
			return nil, fmt.Errorf("failed to upload image: %s", res.Error.Message)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}
