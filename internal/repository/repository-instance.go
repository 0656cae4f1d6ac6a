package repository

import "record_access_service/internal/database/mongo"

type Repositories struct {
	RecordAccessRepository *RecordAccessRepository
	GroupRepository        *GroupRepository
	SettingsRepository     *SettingsRepository
	RedisRepository        *RedisRepo
}

var Repositories_instance = newRepositories()

func newRepositories() *Repositories {
	redisRepo := NewRedisRepo()
	return &Repositories{
		RecordAccessRepository: NewRecordAccessRepository(mongo.Mongo_Database),
		GroupRepository:        NewGroupRepository(mongo.Mongo_Database, redisRepo),
		SettingsRepository:     NewSettingsRepository(mongo.Mongo_Database, redisRepo),
		RedisRepository:        redisRepo,
	}
}
