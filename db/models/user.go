package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	OwnerRole           Role = "owner"
	ScrutinyClerkRole   Role = "scrutiny_clerk"
	DistrictOfficerRole Role = "district_officer"
	StateApproverRole   Role = "state_approver"
	AdminRole           Role = "admin"
	SuperAdminRole      Role = "super_admin"
)

// DistrictScoped reports whether a role may only act inside its assigned district.
func (r Role) DistrictScoped() bool {
	return r == ScrutinyClerkRole || r == DistrictOfficerRole
}

type Gender string

const (
	MaleGender   Gender = "MALE"
	FemaleGender Gender = "FEMALE"
	OtherGender  Gender = "OTHER"
)

// User represents system users with role-based access: property owners and
// the department officers who move applications through review.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Phone     string    `gorm:"unique" json:"phone"`
	Password  string    `json:"-"` // Never include in JSON responses
	Gender    Gender    `gorm:"type:varchar(10)" json:"gender"`

	// Role and scope. District is required for district-scoped roles;
	// a missing district denies every district action.
	Role     Role    `gorm:"type:varchar(30);not null" json:"role"`
	District *string `gorm:"type:varchar(50);index" json:"district"`

	// Status
	Active      bool       `gorm:"default:true" json:"active"`
	IsSuspended bool       `gorm:"default:false" json:"is_suspended"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
