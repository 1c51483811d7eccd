package main

import (
	"fmt"
	"os"
	"time"

	"pondo/internal/database"
	"pondo/internal/logger"
	"pondo/internal/models"
	"pondo/internal/services"
)

// reminders scans every active user's bill categories and logs the ones due
// within the next two days or already overdue. Meant to be run daily from
// cron; sending the actual notification is delegated to whatever collects
// the log stream.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Reminder error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	budgetService := services.NewBudgetService(db)
	categoryService := services.NewCategoryService(db, budgetService)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var users []models.User
	if err := db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	total := 0
	for _, user := range users {
		due, err := categoryService.DueSoon(user.ID, today)
		if err != nil {
			log.Errorw("Failed to check due categories", "user_id", user.ID, "error", err)
			continue
		}

		for _, category := range due {
			days := int(category.DueDate.Sub(today).Hours() / 24)
			if days < 0 {
				log.Infow("Payment overdue",
					"email", user.Email,
					"category", category.Name,
					"amount", category.Amount.StringFixed(2),
					"days_overdue", -days,
				)
			} else {
				log.Infow("Payment due soon",
					"email", user.Email,
					"category", category.Name,
					"amount", category.Amount.StringFixed(2),
					"days_until_due", days,
				)
			}
			total++
		}
	}

	log.Infof("Reminder scan complete: %d reminder(s) across %d user(s)", total, len(users))
	return nil
}
