package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Таблицы идентичности. Для ядра мессенджера они read-only:
// CRUD по салонам/клиентам/сотрудникам живет вне этого сервиса,
// здесь они нужны резолверу и автомиграции.

// Customer - клиент салона
type Customer struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	SalonID string `gorm:"type:uuid;index"`

	Name     string `gorm:"not null"`
	Phone    string `gorm:"index"`
	Email    string
	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Staff - сотрудник салона (мастер, администратор зала и т.д.)
type Staff struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	SalonID string `gorm:"type:uuid;index;not null"`

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Position     string `gorm:"type:varchar(50)"`
	IsActive     bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Admin - администратор платформы. Историческая таблица
// с числовым ключом, поэтому ID актора здесь - строка с числом.
type Admin struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Admin) TableName() string {
	return "admins"
}
