package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HomestayCategory is the registration class of the property.
type HomestayCategory string

const (
	DiamondCategory HomestayCategory = "DIAMOND"
	GoldCategory    HomestayCategory = "GOLD"
	SilverCategory  HomestayCategory = "SILVER"
)

// LocationType determines which tariff column applies to the property.
type LocationType string

const (
	MunicipalLocation     LocationType = "MUNICIPAL"
	TownPlanningLocation  LocationType = "TOWN_PLANNING"
	GramPanchayatLocation LocationType = "GRAM_PANCHAYAT"
)

// ApplicationStatus defines the current state of an application in the
// review workflow. Transitions between statuses are owned by the workflow
// package; nothing else may write this field directly.
type ApplicationStatus string

const (
	DraftApplication          ApplicationStatus = "DRAFT"
	SubmittedApplication      ApplicationStatus = "SUBMITTED"
	UnderScrutinyApplication  ApplicationStatus = "UNDER_SCRUTINY"
	SentBackForCorrections    ApplicationStatus = "SENT_BACK_FOR_CORRECTIONS"
	ForwardedToReview         ApplicationStatus = "FORWARDED_TO_REVIEW"
	RevertedByReview          ApplicationStatus = "REVERTED_BY_REVIEW"
	RevertedToApplicant       ApplicationStatus = "REVERTED_TO_APPLICANT"
	ReviewAccepted            ApplicationStatus = "REVIEW_ACCEPTED"
	InspectionScheduled       ApplicationStatus = "INSPECTION_SCHEDULED"
	InspectionCompleted       ApplicationStatus = "INSPECTION_COMPLETED"
	InspectionUnderReview     ApplicationStatus = "INSPECTION_UNDER_REVIEW"
	ObjectionRaised           ApplicationStatus = "OBJECTION_RAISED"
	VerifiedForPayment        ApplicationStatus = "VERIFIED_FOR_PAYMENT"
	PaymentPendingApplication ApplicationStatus = "PAYMENT_PENDING"
	ApprovedApplication       ApplicationStatus = "APPROVED"
	RejectedApplication       ApplicationStatus = "REJECTED"
	ExpiredApplication        ApplicationStatus = "EXPIRED"
)

// IsTerminal reports whether no further workflow transitions are defined
// from this status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApprovedApplication || s == RejectedApplication || s == ExpiredApplication
}

// ApplicationStage is the coarse dashboard grouping derived from status.
type ApplicationStage string

const (
	ApplicationStageOwner      ApplicationStage = "APPLICATION"
	ApplicationStageScrutiny   ApplicationStage = "SCRUTINY"
	ApplicationStageDistrict   ApplicationStage = "DISTRICT_REVIEW"
	ApplicationStageInspection ApplicationStage = "INSPECTION"
	ApplicationStageState      ApplicationStage = "STATE_APPROVAL"
	ApplicationStagePayment    ApplicationStage = "PAYMENT"
	ApplicationStageClosed     ApplicationStage = "CLOSED"
)

// Stage maps a status onto its dashboard phase.
func (s ApplicationStatus) Stage() ApplicationStage {
	switch s {
	case DraftApplication, SentBackForCorrections, RevertedToApplicant:
		return ApplicationStageOwner
	case SubmittedApplication, UnderScrutinyApplication, RevertedByReview:
		return ApplicationStageScrutiny
	case ForwardedToReview, ReviewAccepted:
		return ApplicationStageDistrict
	case InspectionScheduled, InspectionCompleted, InspectionUnderReview:
		return ApplicationStageInspection
	case ObjectionRaised:
		return ApplicationStageState
	case VerifiedForPayment, PaymentPendingApplication:
		return ApplicationStagePayment
	default:
		return ApplicationStageClosed
	}
}

type PaymentStatus string

const (
	PendingPayment PaymentStatus = "PENDING"
	PaidPayment    PaymentStatus = "PAID"
	FailedPayment  PaymentStatus = "FAILED"
)

// Application is the central homestay-registration record moving through
// the review workflow.
type Application struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	ApplicationNumber string    `gorm:"unique;not null;index" json:"application_number"`

	// Ownership: exactly one non-terminal application per owner.
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Classification
	Category     HomestayCategory `gorm:"type:varchar(20);not null" json:"category"`
	LocationType LocationType     `gorm:"type:varchar(20);not null" json:"location_type"`
	ProjectType  *string          `gorm:"type:varchar(50)" json:"project_type"`

	// Room configuration. TotalRooms is derived, never hand-edited.
	SingleBedRooms int `gorm:"default:0" json:"single_bed_rooms"`
	DoubleBedRooms int `gorm:"default:0" json:"double_bed_rooms"`
	FamilySuites   int `gorm:"default:0" json:"family_suites"`
	TotalRooms     int `gorm:"default:0" json:"total_rooms"`

	SingleBedRoomRate *decimal.Decimal `gorm:"type:decimal(15,2)" json:"single_bed_room_rate"`
	DoubleBedRoomRate *decimal.Decimal `gorm:"type:decimal(15,2)" json:"double_bed_room_rate"`
	FamilySuiteRate   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"family_suite_rate"`

	// Location
	District      string           `gorm:"type:varchar(50);not null;index" json:"district"`
	Tehsil        string           `gorm:"type:varchar(50)" json:"tehsil"`
	Block         *string          `gorm:"type:varchar(50)" json:"block"`
	GramPanchayat *string          `gorm:"type:varchar(80)" json:"gram_panchayat"`
	UrbanBody     *string          `gorm:"type:varchar(80)" json:"urban_body"`
	Address       string           `gorm:"type:text" json:"address"`
	Latitude      *decimal.Decimal `gorm:"type:decimal(10,7)" json:"latitude"`
	Longitude     *decimal.Decimal `gorm:"type:decimal(10,7)" json:"longitude"`

	// Fee inputs
	ValidityYears int  `gorm:"default:1" json:"validity_years"`
	IsTribalArea  bool `gorm:"default:false" json:"is_tribal_area"`

	// Fee breakdown. All derived by the fee calculator, never hand-edited.
	BaseFee              *decimal.Decimal `gorm:"type:decimal(15,2)" json:"base_fee"`
	GSTAmount            *decimal.Decimal `gorm:"type:decimal(15,2)" json:"gst_amount"`
	TotalBeforeDiscounts *decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_before_discounts"`
	ValidityDiscount     *decimal.Decimal `gorm:"type:decimal(15,2)" json:"validity_discount"`
	WomenOwnerDiscount   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"women_owner_discount"`
	TribalAreaDiscount   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"tribal_area_discount"`
	TotalDiscount        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_discount"`
	TotalFee             *decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_fee"`

	// Payment tracking
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"payment_status"`
	PaymentReference *string       `gorm:"index" json:"payment_reference"`
	PaymentDate      *time.Time    `json:"payment_date"`

	// Review audit trail, one set of stamps per stage.
	ScrutinyBy      *uuid.UUID `gorm:"type:uuid" json:"scrutiny_by"`
	ScrutinyAt      *time.Time `json:"scrutiny_at"`
	ScrutinyRemarks *string    `gorm:"type:text" json:"scrutiny_remarks"`

	DistrictReviewBy      *uuid.UUID `gorm:"type:uuid" json:"district_review_by"`
	DistrictReviewAt      *time.Time `json:"district_review_at"`
	DistrictReviewRemarks *string    `gorm:"type:text" json:"district_review_remarks"`

	StateReviewBy      *uuid.UUID `gorm:"type:uuid" json:"state_review_by"`
	StateReviewAt      *time.Time `json:"state_review_at"`
	StateReviewRemarks *string    `gorm:"type:text" json:"state_review_remarks"`

	InspectionBy      *uuid.UUID `gorm:"type:uuid" json:"inspection_by"`
	InspectionAt      *time.Time `json:"inspection_at"`
	InspectionRemarks *string    `gorm:"type:text" json:"inspection_remarks"`

	// Feedback channel: at most one outstanding clarification per stage.
	// All three are cleared on every transition back into SUBMITTED.
	ScrutinyFeedback *string `gorm:"type:text" json:"scrutiny_feedback"`
	DistrictFeedback *string `gorm:"type:text" json:"district_feedback"`
	StateFeedback    *string `gorm:"type:text" json:"state_feedback"`

	// Certificate, populated only on terminal approval.
	CertificateNumber    *string    `gorm:"uniqueIndex" json:"certificate_number"`
	CertificateIssuedAt  *time.Time `json:"certificate_issued_at"`
	CertificateExpiresAt *time.Time `json:"certificate_expires_at"`

	// Status and dates
	Status       ApplicationStatus `gorm:"type:varchar(30);default:'DRAFT';index" json:"status"`
	CurrentStage ApplicationStage  `gorm:"type:varchar(30);default:'APPLICATION';index" json:"current_stage"`
	SubmittedAt  *time.Time        `json:"submitted_at"`
	ApprovedAt   *time.Time        `json:"approved_at"`

	// Optimistic concurrency token; bumped on every guarded update.
	RowVersion int `gorm:"default:1" json:"row_version"`

	// Relationships
	Owner     User       `gorm:"foreignKey:OwnerID" json:"owner"`
	Documents []Document `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoomCountTotal sums the per-class room counts. TotalRooms must always
// equal this value.
func (a *Application) RoomCountTotal() int {
	return a.SingleBedRooms + a.DoubleBedRooms + a.FamilySuites
}

// ClearFeedback empties every outstanding stage clarification.
func (a *Application) ClearFeedback() {
	a.ScrutinyFeedback = nil
	a.DistrictFeedback = nil
	a.StateFeedback = nil
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
