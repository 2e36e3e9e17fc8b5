package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ErrEmailNotFound is returned by EmailLookup when the directory has no match
// and missing emails are configured as fatal.
var ErrEmailNotFound = fmt.Errorf("owner email %w", errorwrapper.ErrNotFound)

// AssetFacingLookup maps an asset name to its internet-facing classification.
type AssetFacingLookup interface {
	LookupInternetFacing(ctx context.Context, assetName string) (string, error)
}

// EmailResult is the outcome of a directory lookup. Resolved is false when no email was found.
type EmailResult struct {
	Email    string
	Resolved bool
}

// EmailLookup maps an owner display name to an email.
type EmailLookup interface {
	LookupEmail(ctx context.Context, ownerName string) (EmailResult, error)
}

// AssetSearcher returns the raw asset register response for an exact asset name.
type AssetSearcher interface {
	SearchAssets(ctx context.Context, assetName string) ([]byte, error)
}

// UserSearcher returns the raw user directory response for an exact name.
type UserSearcher interface {
	SearchUsers(ctx context.Context, name string) ([]byte, error)
}

// FirstNameToken is the directory search key for an owner display name.
func FirstNameToken(ownerName string) string {
	fields := strings.Fields(ownerName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// RegisterFacingLookup reads the classification from the assets register.
type RegisterFacingLookup struct {
	searcher AssetSearcher
	logger   zerolog.Logger
}

func NewRegisterFacingLookup(searcher AssetSearcher, logger zerolog.Logger) *RegisterFacingLookup {
	return &RegisterFacingLookup{
		searcher: searcher,
		logger:   logger.With().Str("component", "AssetFacingLookup").Logger(),
	}
}

// LookupInternetFacing returns "N/A" when the asset is unknown or the response has an
// unexpected shape. Transport and non-200 failures are returned as errors.
func (l *RegisterFacingLookup) LookupInternetFacing(ctx context.Context, assetName string) (string, error) {
	body, err := l.searcher.SearchAssets(ctx, assetName)
	if err != nil {
		return "", err
	}

	asset := newRecordFromResult(gjson.GetBytes(body, firstAssetRecord))
	facing, ok := asset.SimpleValue(FieldAssetInternetFace)
	if !ok {
		l.logger.Warn().Str("asset_name", assetName).Msg("Internet facing classification not found, using N/A")
		return models.InternetFacingNotAvailable, nil
	}
	return facing, nil
}

// RegisterEmailLookup reads the first matching email from the user directory.
type RegisterEmailLookup struct {
	searcher      UserSearcher
	failOnMissing bool
	logger        zerolog.Logger
}

func NewRegisterEmailLookup(searcher UserSearcher, failOnMissing bool, logger zerolog.Logger) *RegisterEmailLookup {
	return &RegisterEmailLookup{
		searcher:      searcher,
		failOnMissing: failOnMissing,
		logger:        logger.With().Str("component", "EmailLookup").Logger(),
	}
}

// LookupEmail searches the directory by the owner's first name token.
// Name uniqueness is assumed and the first match wins.
func (l *RegisterEmailLookup) LookupEmail(ctx context.Context, ownerName string) (EmailResult, error) {
	token := FirstNameToken(ownerName)
	if token == "" {
		return EmailResult{}, nil
	}

	body, err := l.searcher.SearchUsers(ctx, token)
	if err != nil {
		return EmailResult{}, err
	}

	email := gjson.GetBytes(body, firstUserEmail)
	if email.Type != gjson.String || email.Str == "" {
		if l.failOnMissing {
			return EmailResult{}, fmt.Errorf("%w for %q", ErrEmailNotFound, token)
		}
		l.logger.Warn().Str("owner", ownerName).Str("name_token", token).Msg("No directory match for owner, email unresolved")
		return EmailResult{}, nil
	}
	return EmailResult{Email: email.Str, Resolved: true}, nil
}

type cachedFacingLookup struct {
	inner AssetFacingLookup
	cache *lru.Cache[string, string]
}

// NewCachedFacingLookup memoises successful lookups by asset name. Errors are not cached.
func NewCachedFacingLookup(inner AssetFacingLookup, size int) (AssetFacingLookup, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create facing lookup cache")
	}
	return &cachedFacingLookup{inner: inner, cache: cache}, nil
}

func (c *cachedFacingLookup) LookupInternetFacing(ctx context.Context, assetName string) (string, error) {
	if v, ok := c.cache.Get(assetName); ok {
		return v, nil
	}
	v, err := c.inner.LookupInternetFacing(ctx, assetName)
	if err != nil {
		return "", err
	}
	c.cache.Add(assetName, v)
	return v, nil
}

type cachedEmailLookup struct {
	inner EmailLookup
	cache *lru.Cache[string, EmailResult]
}

// NewCachedEmailLookup memoises lookups by first name token, matching the directory query key.
func NewCachedEmailLookup(inner EmailLookup, size int) (EmailLookup, error) {
	cache, err := lru.New[string, EmailResult](size)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create email lookup cache")
	}
	return &cachedEmailLookup{inner: inner, cache: cache}, nil
}

func (c *cachedEmailLookup) LookupEmail(ctx context.Context, ownerName string) (EmailResult, error) {
	key := FirstNameToken(ownerName)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.LookupEmail(ctx, ownerName)
	if err != nil {
		return EmailResult{}, err
	}
	c.cache.Add(key, v)
	return v, nil
}
