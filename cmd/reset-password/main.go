package main

import (
	"flag"
	"log"

	"sibos-pos/internal/model"
	"sibos-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Escape hatch untuk operasional: reset password langsung di DB saat tidak
// ada akun owner yang bisa login lagi.
func main() {
	email := flag.String("email", "owner@example.com", "account email to reset")
	password := flag.String("password", "owner123", "new password")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Find account
	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update. TokenVersion ikut dirotasi supaya sesi lama langsung mati.
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": uuid.New().String(),
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("❌ Failed to update user in DB: %v", err)
	}

	log.Printf("✅ Success! Password for %s has been reset; existing sessions invalidated", *email)
}
