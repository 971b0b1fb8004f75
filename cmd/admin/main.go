package main

import (
	"fmt"
	"log"
	"os"

	"gameday/backend/internal/models"
	"gameday/backend/internal/storage"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		if err := seedUsers(db); err != nil {
			log.Fatalf("Error seeding users: %v", err)
		}
		fmt.Println("Demo users seeded.")
	case "user":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin user <user_id>")
			os.Exit(1)
		}
		user, err := storageSvc.GetUserByID(os.Args[2])
		if err != nil {
			log.Fatalf("Error looking up user: %v", err)
		}
		fmt.Printf("%s\t%s\tguest=%v\tteams=%v\n", user.ID, user.Name, user.Guest, user.FavoriteTeams)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func seedUsers(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return err
	}
	demo := []models.User{
		{Name: "Alice", FavoriteTeams: pq.StringArray{"USA", "Brazil"}},
		{Name: "Bob", FavoriteTeams: pq.StringArray{"Germany"}},
		{Name: "Carla", FavoriteTeams: pq.StringArray{"Argentina", "France"}},
	}
	for i := range demo {
		if err := db.Create(&demo[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
