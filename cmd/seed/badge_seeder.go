package main

import (
	"log"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"

	"gorm.io/gorm"
)

// SeedBadges populates the badge catalog the badge checker awards from.
func SeedBadges(db *gorm.DB) {
	badges := []model.Badge{
		{
			Name:           "First Ticket",
			Description:    "Attended your first event",
			TargetCount:    1,
			ApplicableRole: string(entity.UserRoleUser),
			CriteriaType:   string(entity.BadgeCriteriaEventAttended),
			IsActive:       true,
		},
		{
			Name:           "Regular",
			Description:    "Attended five events",
			TargetCount:    5,
			ApplicableRole: string(entity.UserRoleUser),
			CriteriaType:   string(entity.BadgeCriteriaEventAttended),
			IsActive:       true,
		},
		{
			Name:           "Enthusiast",
			Description:    "Attended twenty events",
			TargetCount:    20,
			ApplicableRole: string(entity.UserRoleUser),
			CriteriaType:   string(entity.BadgeCriteriaEventAttended),
			IsActive:       true,
		},
		{
			Name:           "Host",
			Description:    "Organized your first event",
			TargetCount:    1,
			ApplicableRole: string(entity.UserRoleOrganizer),
			CriteriaType:   string(entity.BadgeCriteriaEventCreated),
			IsActive:       true,
		},
		{
			Name:           "Seasoned Host",
			Description:    "Organized ten events",
			TargetCount:    10,
			ApplicableRole: string(entity.UserRoleOrganizer),
			CriteriaType:   string(entity.BadgeCriteriaEventCreated),
			IsActive:       true,
		},
	}

	for _, b := range badges {
		var existing model.Badge
		if err := db.Where("name = ?", b.Name).First(&existing).Error; err == nil {
			log.Printf("Badge '%s' already exists, skipping...", b.Name)
			continue
		}

		if err := db.Create(&b).Error; err != nil {
			log.Printf("Error creating badge '%s': %v", b.Name, err)
		} else {
			log.Printf("Created badge: %s (%s x%d)", b.Name, b.CriteriaType, b.TargetCount)
		}
	}
}
