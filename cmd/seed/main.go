package main

import (
	"log"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/database"

	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Subscription Plans...")
	plans := mapper.NewSubscriptionMapper()
	for _, p := range subscription.DefaultPlans() {
		var existing model.SubscriptionPlan
		if err := db.Where("tier = ?", string(p.Tier)).First(&existing).Error; err == nil {
			log.Printf("Plan '%s' already exists, skipping...", p.Tier)
			continue
		}

		p.Id = uuid.New()
		if err := db.Create(plans.PlanToModel(p)).Error; err != nil {
			log.Printf("Error creating plan '%s': %v", p.Tier, err)
		} else {
			log.Printf("Created plan: %s (%s) at %s", p.Name, p.Tier, p.Price.StringFixed(2))
		}
	}

	log.Println("Seeding Badges...")
	SeedBadges(db)

	log.Println("Seeding completed!")
}
