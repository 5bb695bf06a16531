package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/db"
	"taskmanager/internal/logging"
	"taskmanager/internal/model"
	"taskmanager/internal/notify"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

// SeedUser is one account of the fixture file together with its tasks.
type SeedUser struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Age      int        `json:"age"`
	Tasks    []SeedTask `json:"tasks"`
}

// SeedTask is one task of a fixture user.
type SeedTask struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

func main() {
	source := flag.String("fixtures", "cmd/seed/fixtures.json", "path or http(s) URL of the JSON fixture file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	log.Printf("Loading fixtures from: %s", *source)
	users, err := loadFixtures(*source)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}
	log.Printf("Loaded %d users", len(users))

	// Seeded accounts never receive real email.
	dispatcher := notify.NewDispatcher(notify.LogSender{Logger: logger}, logger, cfg.NotifyQueueSize)
	defer dispatcher.Close(context.Background())

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, jwtService, dispatcher, nil)
	taskService := service.NewTaskService(repository.NewTaskRepository(gormDB))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, skipped, tasks, err := seedUsers(ctx, userRepo, userService, taskService, users)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
	log.Printf("  - Tasks created: %d", tasks)
}

// loadFixtures reads the fixture list from a local file or an http(s) URL.
func loadFixtures(source string) ([]SeedUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fixtures URL returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open fixtures: %w", err)
		}
		r = f
	}
	defer r.Close()

	return decodeFixtures(r)
}

func decodeFixtures(r io.Reader) ([]SeedUser, error) {
	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	for i, u := range users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" || strings.TrimSpace(u.Name) == "" {
			return nil, fmt.Errorf("fixture %d: email, password and name are required", i)
		}
	}
	return users, nil
}

// seedUsers registers every fixture user that does not exist yet and creates
// its tasks. Existing users are left untouched, so the seed can be re-run.
func seedUsers(
	ctx context.Context,
	lookup userLookup,
	users service.UserService,
	tasks service.TaskService,
	fixtures []SeedUser,
) (created, skipped, taskCount int, err error) {
	for _, fx := range fixtures {
		existing, err := lookup.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(fx.Email)))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, skipped, taskCount, fmt.Errorf("error checking user %s: %w", fx.Email, err)
		}
		if existing != nil {
			skipped++
			continue
		}

		user, _, err := users.Register(ctx, service.RegisterInput{
			Email:    fx.Email,
			Password: fx.Password,
			Name:     fx.Name,
			Age:      fx.Age,
		})
		if err != nil {
			return created, skipped, taskCount, fmt.Errorf("error creating user %s: %w", fx.Email, err)
		}
		created++

		for _, t := range fx.Tasks {
			if _, err := tasks.Create(ctx, user.ID, service.TaskInput{
				Description: t.Description,
				Completed:   t.Completed,
			}); err != nil {
				return created, skipped, taskCount, fmt.Errorf("error creating task for %s: %w", fx.Email, err)
			}
			taskCount++
		}
	}

	return created, skipped, taskCount, nil
}
