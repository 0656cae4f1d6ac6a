package repository

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"record_access_service/internal/config"
	"record_access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const settingsCacheKey = "site-settings"
const settingsCacheTTL = time.Minute

// SettingsRepository reads the site-wide access configuration: the default
// visibility for new records and the tiers the site has disabled. It backs the
// access core's SiteConfig collaborator, so its accessors are total - any
// lookup failure degrades to the environment fallback.
type SettingsRepository struct {
	collection *mongo.Collection
	cache      *RedisRepo
}

func NewSettingsRepository(db *mongo.Database, cache *RedisRepo) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection("SiteSettings"),
		cache:      cache,
	}
}

func (r *SettingsRepository) load(ctx context.Context) *models.SiteSettings {
	var cached models.SiteSettings
	if r.cache != nil {
		if err := r.cache.GetStructCached(ctx, settingsCacheKey, &cached); err == nil {
			return &cached
		}
	}

	var settings models.SiteSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Error reading site settings: %s", err)
		}
		return nil
	}

	if r.cache != nil {
		if _, err := r.cache.SaveStructCached(ctx, settingsCacheKey, &settings, settingsCacheTTL); err != nil {
			log.Printf("Error caching site settings: %s", err)
		}
	}
	return &settings
}

func (r *SettingsRepository) DefaultVisibility() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if settings := r.load(ctx); settings != nil && settings.DefaultVisibility != "" {
		return settings.DefaultVisibility
	}
	return config.ServiceConfig.DefaultVisibility
}

func (r *SettingsRepository) IsVisibilityDisabled(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	settings := r.load(ctx)
	if settings == nil {
		return false
	}
	return slices.Contains(settings.DisabledVisibilities, name)
}

// Update replaces the site settings document and drops the cache.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.SiteSettings) error {
	settings.UpdatedAt = int(time.Now().Unix())

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{}, settings, opts)
	if err != nil {
		return err
	}
	if r.cache != nil {
		if err := r.cache.DeleteKey(ctx, settingsCacheKey); err != nil {
			log.Printf("Error invalidating settings cache: %s", err)
		}
	}
	return nil
}
