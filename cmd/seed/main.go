package main

import (
	"context"
	"log"

	"github.com/google/uuid"

	"pouicentral/internal/auth"
	"pouicentral/internal/config"
	"pouicentral/internal/db"
	"pouicentral/internal/model"
	"pouicentral/internal/repository"
)

// seedUser is a demo account inserted for local development.
type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

var seedUsers = []seedUser{
	{FirstName: "Homer", LastName: "Simpson", Email: "homer@simpson.com", Password: "secret"},
	{FirstName: "Marge", LastName: "Simpson", Email: "marge@simpson.com", Password: "secret"},
	{FirstName: "Bart", LastName: "Simpson", Email: "bart@simpson.com", Password: "secret"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users := repository.NewUserRepository(gormDB)
	hasher := auth.NewBcryptHasher()
	ctx := context.Background()

	created := 0
	for _, s := range seedUsers {
		if existing, err := users.FindByEmail(ctx, s.Email); err == nil && existing != nil {
			log.Printf("Skipping %s: already registered", s.Email)
			continue
		}

		digest, err := hasher.Hash(s.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", s.Email, err)
		}

		user := &model.User{
			ID:           uuid.New(),
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			Email:        s.Email,
			PasswordHash: digest,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create %s: %v", s.Email, err)
		}
		created++
	}

	log.Printf("Seed complete: %d users created", created)
}
