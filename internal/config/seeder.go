package config

import (
	"log"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedDemoData seeds demo users and properties for development. Each row is
// looked up before insert so repeated startups don't duplicate anything.
func SeedDemoData(db *gorm.DB) error {
	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedProperties(db); err != nil {
		return err
	}

	log.Println("Demo data seeded successfully")
	return nil
}

func seedUsers(db *gorm.DB) error {
	users := []struct {
		username string
		email    string
		role     string
	}{
		{"admin", "admin@renthub.io", "ADMIN"},
		{"manager1", "manager1@renthub.io", "MANAGER"},
		{"tenant1", "tenant1@renthub.io", "TENANT"},
		{"tenant2", "tenant2@renthub.io", "TENANT"},
	}

	for _, u := range users {
		var existing models.User
		err := db.Where("username = ?", u.username).First(&existing).Error
		if err != gorm.ErrRecordNotFound {
			continue
		}

		hashed, err := password.Hash("changeme123")
		if err != nil {
			return err
		}

		user := models.User{
			Username: u.username,
			Email:    u.email,
			Password: hashed,
			Role:     u.role,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("   Created user: %s (%s)", u.username, u.role)
	}
	return nil
}

func seedProperties(db *gorm.DB) error {
	var manager models.User
	if err := db.Where("username = ?", "manager1").First(&manager).Error; err != nil {
		return err
	}

	properties := []models.Property{
		{
			Name:            "Maple Court 2B",
			Address:         "114 Maple Street, Unit 2B",
			City:            "Portland",
			PricePerMonth:   1500,
			SecurityDeposit: 1500,
			ApplicationFee:  50,
			Beds:            2,
			Baths:           1,
			ManagerID:       manager.ID,
		},
		{
			Name:            "Riverside Loft 5",
			Address:         "890 Riverside Drive, Loft 5",
			City:            "Portland",
			PricePerMonth:   2100,
			SecurityDeposit: 2100,
			ApplicationFee:  75,
			Beds:            1,
			Baths:           1,
			ManagerID:       manager.ID,
		},
	}

	for _, p := range properties {
		var existing models.Property
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if err != gorm.ErrRecordNotFound {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
		log.Printf("   Created property: %s", p.Name)
	}
	return nil
}
