package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ewait/internal/locations"
	"ewait/internal/queues"
	"ewait/internal/shared/config"
	"ewait/internal/shared/database"
	"ewait/internal/users"
)

const (
	demoEmail    = "demo@ewait.ng"
	demoPassword = "demo-password"
)

type Seeder struct {
	db *database.DB
}

type demoQueue struct {
	name           string
	description    string
	avgServiceTime int
}

type demoLocation struct {
	name    string
	address string
	phone   string
	queues  []demoQueue
}

var demoLocations = []demoLocation{
	{
		name:    "Demo Restaurant",
		address: "123 Main Street, Lagos",
		phone:   "+2348012345678",
		queues:  []demoQueue{{"Main Queue", "Main service queue", 5}},
	},
	{
		name:    "Demo Bank",
		address: "456 Banking Avenue, Victoria Island",
		phone:   "+2349087654321",
		queues: []demoQueue{
			{"Customer Service", "General inquiries", 10},
			{"Account Opening", "New account applications", 20},
		},
	},
}

var demoCustomers = []string{"John Doe", "Jane Smith", "Bob Wilson", "Alice Brown", "Charlie Davis"}

func main() {
	fmt.Println("🌱 Starting eWait Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}
	created, err := seeder.SeedAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	if !created {
		fmt.Printf("✅ Demo data already present (%s), nothing to do\n", demoEmail)
		return
	}

	fmt.Printf("\n🎉 Seeding completed! Log in as %s / %s\n", demoEmail, demoPassword)
}

// SeedAll creates the demo owner with locations, queues and waiting customers.
// It returns false when the demo owner already exists.
func (s *Seeder) SeedAll(ctx context.Context) (bool, error) {
	pg := s.db.GetPostgreSQL()

	exists, err := users.NewRepository(pg).EmailExists(ctx, demoEmail)
	if err != nil {
		return false, fmt.Errorf("failed to check demo user: %w", err)
	}
	if exists {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	err = pg.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := &users.User{
			Email:        demoEmail,
			Name:         "Demo Owner",
			PasswordHash: string(hashed),
			Role:         users.RoleAdmin,
			Plan:         users.PlanFree,
		}
		if err := users.NewRepository(tx).Create(ctx, owner); err != nil {
			return fmt.Errorf("failed to create demo owner: %w", err)
		}
		fmt.Printf("  👤 Created owner: %s\n", owner.Email)

		for i, data := range demoLocations {
			location, err := s.seedLocation(ctx, tx, owner, data)
			if err != nil {
				return err
			}
			fmt.Printf("  📍 Created location: %s (%d queues)\n", location.Name, len(location.Queues))

			if i == 0 {
				if err := s.seedEntries(ctx, tx, location.Queues[0]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Seeder) seedLocation(ctx context.Context, tx *gorm.DB, owner *users.User, data demoLocation) (*locations.Location, error) {
	address, phone := data.address, data.phone
	location := &locations.Location{
		Name:    data.name,
		Address: &address,
		Phone:   &phone,
		OwnerID: owner.ID,
	}
	for _, q := range data.queues {
		description := q.description
		location.Queues = append(location.Queues, queues.Queue{
			Name:           q.name,
			Description:    &description,
			AvgServiceTime: q.avgServiceTime,
			IsActive:       true,
		})
	}

	if err := locations.NewRepository(tx).Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location %s: %w", data.name, err)
	}
	return location, nil
}

// seedEntries adds waiting customers five minutes apart, oldest first
func (s *Seeder) seedEntries(ctx context.Context, tx *gorm.DB, queue queues.Queue) error {
	repo := queues.NewRepository(tx)
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i, name := range demoCustomers {
		customer := name
		phone := fmt.Sprintf("+234801234%04d", 5670+i)
		entry := &queues.Entry{
			QueueID:      queue.ID,
			TicketNumber: 101 + i,
			Name:         &customer,
			Phone:        &phone,
			PartySize:    1 + i%4,
			Status:       queues.StatusWaiting,
			JoinedAt:     now.Add(-time.Duration(len(demoCustomers)-i) * 5 * time.Minute),
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to create entry for %s: %w", name, err)
		}
	}

	fmt.Printf("  🎫 Created %d waiting entries in %s\n", len(demoCustomers), queue.Name)
	return nil
}
