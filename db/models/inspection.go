package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InspectionOrderStatus string

const (
	InspectionOrderScheduled InspectionOrderStatus = "SCHEDULED"
	InspectionOrderCompleted InspectionOrderStatus = "COMPLETED"
)

// InspectionRecommendation is the outcome the inspecting officer records.
// Each recommendation maps onto a fixed application transition.
type InspectionRecommendation string

const (
	RecommendApprove               InspectionRecommendation = "APPROVE"
	RecommendApproveWithConditions InspectionRecommendation = "APPROVE_WITH_CONDITIONS"
	RecommendRaiseObjections       InspectionRecommendation = "RAISE_OBJECTIONS"
	RecommendReject                InspectionRecommendation = "REJECT"
)

// InspectionOrder is a scheduled site visit for an application.
type InspectionOrder struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`

	ScheduledBy   uuid.UUID `gorm:"type:uuid;not null" json:"scheduled_by"`
	AssigneeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"assignee_id"`
	ScheduledDate time.Time `gorm:"not null" json:"scheduled_date"`

	// Address copied from the application at scheduling time, so the order
	// stays meaningful even if the application is later corrected.
	AddressSnapshot string `gorm:"type:text" json:"address_snapshot"`

	Status InspectionOrderStatus `gorm:"type:varchar(20);default:'SCHEDULED';index" json:"status"`

	// Relationships
	Application *Application      `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Report      *InspectionReport `gorm:"foreignKey:OrderID" json:"report,omitempty"`

	// Audit fields
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ChecklistItem is one structured finding in an inspection report.
type ChecklistItem struct {
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
	Satisfied bool   `json:"satisfied"`
	Remark    string `json:"remark,omitempty"`
}

// InspectionReport holds the structured findings of a completed site visit.
// At most one report exists per order.
type InspectionReport struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`

	SubmittedBy    uuid.UUID                `gorm:"type:uuid;not null" json:"submitted_by"`
	Recommendation InspectionRecommendation `gorm:"type:varchar(30);not null" json:"recommendation"`
	Checklist      datatypes.JSON           `gorm:"type:jsonb" json:"checklist"`
	Findings       string                   `gorm:"type:text" json:"findings"`

	// Relationships
	Order *InspectionOrder `gorm:"foreignKey:OrderID" json:"order,omitempty"`

	// Audit fields
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (io *InspectionOrder) BeforeCreate(tx *gorm.DB) error {
	if io.ID == uuid.Nil {
		io.ID = uuid.New()
	}
	return nil
}

func (ir *InspectionReport) BeforeCreate(tx *gorm.DB) error {
	if ir.ID == uuid.Nil {
		ir.ID = uuid.New()
	}
	return nil
}
