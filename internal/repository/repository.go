// Package repository persists users, reset tokens and the tracked health
// entities with database/sql.
//
// Lookups return nil, nil when the row does not exist.
package repository

import (
	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
)

type Repositories struct {
	Users          *UserRepository
	ResetTokens    *ResetTokenRepository
	Points         *EntityRepository[domain.Points, *domain.Points]
	Weights        *EntityRepository[domain.Weight, *domain.Weight]
	BloodPressures *EntityRepository[domain.BloodPressure, *domain.BloodPressure]
	Preferences    *EntityRepository[domain.Preferences, *domain.Preferences]
}

func New(db *db.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(db),
		ResetTokens:    NewResetTokenRepository(db),
		Points:         NewEntityRepository[domain.Points, *domain.Points](db, PointsTable),
		Weights:        NewEntityRepository[domain.Weight, *domain.Weight](db, WeightTable),
		BloodPressures: NewEntityRepository[domain.BloodPressure, *domain.BloodPressure](db, BloodPressureTable),
		Preferences:    NewEntityRepository[domain.Preferences, *domain.Preferences](db, PreferencesTable),
	}
}
