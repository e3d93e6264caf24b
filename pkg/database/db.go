package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Worker represents the workers table. Admins log in here too but are never
// scheduled.
type Worker struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Role         string    `gorm:"not null;default:employee" json:"role"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Skills       []Skill   `gorm:"many2many:worker_skills" json:"skills"`
}

// Skill represents the skills table
type Skill struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

// AvailabilityWindow represents the availability_windows table. Times are
// stored as "HH:MM" strings, one row per worker, weekday and range.
type AvailabilityWindow struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	WorkerID  string `gorm:"index;not null" json:"worker_id"`
	Weekday   int    `gorm:"not null" json:"weekday"`
	StartTime string `gorm:"not null" json:"start_time"`
	EndTime   string `gorm:"not null" json:"end_time"`
}

// Requirement represents the requirements table. An empty assigned_worker
// means the shift is open. Version guards every assignment write with
// compare-and-swap.
type Requirement struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Date           string    `gorm:"index;not null" json:"date"`
	SkillID        string    `gorm:"not null" json:"skill_id"`
	Quantity       int       `gorm:"default:1" json:"quantity"`
	AssignedWorker string    `gorm:"index" json:"assigned_worker"`
	Version        int       `gorm:"default:0" json:"version"`
	CreatedAt      time.Time `json:"created_at"`
}

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	KeyID             uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date              string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount      int    `gorm:"default:0" json:"request_count"`
	TotalRequirements int    `gorm:"default:0" json:"total_requirements"`
	TotalWorkers      int    `gorm:"default:0" json:"total_workers"`
}

// InitDB initializes the database connection and migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "roster.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(&Worker{}, &Skill{}, &AvailabilityWindow{}, &Requirement{}, &APIKey{}, &APIUsage{})

	return db
}
