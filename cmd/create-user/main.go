// Command create-user provisions an account directly in MongoDB. The
// server exposes no registration endpoint; accounts are seeded with this
// tool.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/thecoder877/Vrticko/database"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/utils"
)

func main() {
	username := flag.String("username", "", "display name")
	email := flag.String("email", "", "login email (unique)")
	password := flag.String("password", "", "initial password")
	role := flag.String("role", models.RoleParent, "parent, teacher or admin")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	switch *role {
	case models.RoleParent, models.RoleTeacher, models.RoleAdmin:
	default:
		log.Fatalf("❌ Unknown role %q", *role)
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "vrticko"
	}

	if err := database.Connect(uri, dbName); err != nil {
		log.Fatalf("❌ MongoDB connection failed: %v", err)
	}
	defer database.Close()

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	user := &models.User{
		Username: *username,
		Email:    *email,
		Password: hash,
		Role:     *role,
	}
	if err := database.NewUserRepository(database.DB).Create(user); err != nil {
		log.Fatalf("❌ Failed to create user: %v", err)
	}

	log.Printf("✓ Created %s user %s (%s)", user.Role, user.Email, user.ID.Hex())
}
