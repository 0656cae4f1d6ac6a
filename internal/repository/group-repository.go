package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"record_access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const groupCacheTTL = 5 * time.Minute

// GroupRepository resolves group membership. Groups are maintained by the
// user-management side of the platform; this service only reads them. Lookups
// go through Redis first since the same fan-out is hit on every access check.
type GroupRepository struct {
	collection *mongo.Collection
	cache      *RedisRepo
}

func NewGroupRepository(db *mongo.Database, cache *RedisRepo) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("Group"),
		cache:      cache,
	}
}

// GroupsForMember expands a principal to every group it belongs to, nested
// groups included.
func (r *GroupRepository) GroupsForMember(ctx context.Context, principal string) ([]string, error) {
	if principal == "" {
		return nil, nil
	}

	cacheKey := "groups:" + principal
	var cached []string
	if r.cache != nil {
		if err := r.cache.GetStructCached(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	visited := make(map[string]bool)
	queue := []string{principal}
	var groups []string

	for len(queue) > 0 {
		member := queue[0]
		queue = queue[1:]

		cursor, err := r.collection.Find(ctx, bson.M{"members": member})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve groups of %s: %w", member, err)
		}

		var batch []*models.Group
		if err = cursor.All(ctx, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode groups of %s: %w", member, err)
		}

		for _, g := range batch {
			if visited[g.Name] {
				continue
			}
			visited[g.Name] = true
			groups = append(groups, g.Name)
			queue = append(queue, g.Name)
		}
	}

	if r.cache != nil {
		if _, err := r.cache.SaveStructCached(ctx, cacheKey, groups, groupCacheTTL); err != nil {
			log.Printf("Error caching groups of %s: %s", principal, err)
		}
	}
	return groups, nil
}

// IsGroup reports whether the reference names a known group.
func (r *GroupRepository) IsGroup(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		log.Printf("Error checking group %s: %s", name, err)
		return false
	}
	return count > 0
}

// IsMemberOf reports whether the principal belongs to the named group,
// directly or through nesting. Fails closed on resolution errors.
func (r *GroupRepository) IsMemberOf(ctx context.Context, principal, group string) bool {
	groups, err := r.GroupsForMember(ctx, principal)
	if err != nil {
		log.Printf("Error resolving membership of %s: %s", principal, err)
		return false
	}
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}
