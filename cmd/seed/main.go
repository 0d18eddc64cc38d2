package main

import (
	"context"
	"log"
	"os"

	"resolvedesk/internal/database"
	"resolvedesk/internal/domain"
	"resolvedesk/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "resolvedesk.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	adminRepo := repository.NewAdminRepository(db)
	centerRepo := repository.NewCenterRepository(db)

	// ================== SUPER ADMIN ==================
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@resolvedesk.ng"
	}
	pass := os.Getenv("SEED_ADMIN_PASSWORD")
	if pass == "" {
		pass = "ChangeMe#2024"
	}

	exists, err := adminRepo.ExistsByEmail(ctx, email)
	if err != nil {
		log.Fatal(err)
	}
	if !exists {
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		admin := &domain.Admin{
			Email:           email,
			Phone:           "+234 800 000 0001",
			PasswordHash:    string(hash),
			Name:            "Platform Admin",
			Role:            domain.RoleSuperAdmin,
			IsActive:        true,
			IsEmailVerified: true,
		}
		if err := adminRepo.Create(ctx, admin); err != nil {
			log.Fatal(err)
		}
		log.Printf("Super admin created: %s", email)
	} else {
		log.Printf("Super admin already present: %s", email)
	}

	// ================== SAMPLE CENTERS ==================
	log.Println("Creating sample centers...")
	samples := []domain.Center{
		{Name: "Ikeja Multi-Door Courthouse", State: "Lagos", LGA: "Ikeja", Address: "10 Obafemi Awolowo Way, Ikeja", Phone: "+234 801 234 5601", Capacity: 40},
		{Name: "Lekki Mediation Centre", State: "Lagos", LGA: "Eti-Osa", Address: "Admiralty Way, Lekki Phase 1", Phone: "+234 801 234 5602", Capacity: 25},
		{Name: "Garki Dispute Resolution Centre", State: "FCT", LGA: "Abuja Municipal", Address: "Area 11, Garki, Abuja", Phone: "+234 801 234 5603", Capacity: 35},
		{Name: "Kano Central Mediation Office", State: "Kano", LGA: "Kano Municipal", Address: "Zoo Road, Kano", Phone: "+234 801 234 5604", Capacity: 30},
		{Name: "Port Harcourt ADR Centre", State: "Rivers", LGA: "Port Harcourt", Address: "Aba Road, Port Harcourt", Phone: "+234 801 234 5605", Capacity: 28},
		{Name: "Enugu Settlement House", State: "Enugu", LGA: "Enugu North", Address: "Okpara Avenue, Enugu", Phone: "+234 801 234 5606", Capacity: 20},
		{Name: "Ibadan Community Mediation Centre", State: "Oyo", LGA: "Ibadan North", Address: "Bodija Estate, Ibadan", Phone: "+234 801 234 5607", Capacity: 22},
		{Name: "Kaduna Peace Centre", State: "Kaduna", LGA: "Kaduna North", Address: "Ahmadu Bello Way, Kaduna", Phone: "+234 801 234 5608", Capacity: 26},
	}

	created := 0
	for i := range samples {
		samples[i].Status = domain.CenterActive
		existing, _, err := centerRepo.List(ctx, repository.CenterFilter{
			State: samples[i].State,
			LGA:   samples[i].LGA,
			Query: samples[i].Name,
		})
		if err != nil {
			log.Fatal(err)
		}
		if len(existing) > 0 {
			continue
		}
		if err := centerRepo.Create(ctx, &samples[i]); err != nil {
			log.Fatal(err)
		}
		created++
	}
	log.Printf("Seed complete: %d centers created", created)
}
