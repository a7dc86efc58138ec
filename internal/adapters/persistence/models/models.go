package models

import (
	"time"

	"atw-marketplace/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & agent applications
// ============================================================

// User represents users table
type User struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	Name                 string      `gorm:"size:100;not null" json:"name"`
	Email                string      `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Password             string      `gorm:"size:255;not null" json:"-"`
	Role                 domain.Role `gorm:"size:20;not null;default:'user';index" json:"role"`
	Phone                string      `gorm:"size:30" json:"phone,omitempty"`
	Avatar               string      `gorm:"size:255" json:"avatar,omitempty"`
	IsVerified           bool        `gorm:"default:false" json:"isVerified"`
	IsApproved           bool        `gorm:"default:false" json:"isApproved"`
	VerificationToken    *string     `gorm:"size:64;index" json:"-"`
	ResetPasswordToken   *string     `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time  `json:"-"`
	HasAppliedAsAgent    bool        `gorm:"default:false" json:"hasAppliedAsAgent"`
	AgentApplicationID   *uint       `json:"agentApplicationId,omitempty"`
	CreatedAt            time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse is the sanitized projection of a user: no password, no tokens
type UserResponse struct {
	ID                 uint        `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Role               domain.Role `json:"role"`
	Phone              string      `json:"phone,omitempty"`
	Avatar             string      `json:"avatar,omitempty"`
	IsVerified         bool        `json:"isVerified"`
	IsApproved         bool        `json:"isApproved,omitempty"`
	HasAppliedAsAgent  bool        `json:"hasAppliedAsAgent,omitempty"`
	AgentApplicationID *uint       `json:"agentApplicationId,omitempty"`
	CreatedAt          *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time  `json:"updatedAt,omitempty"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Phone:              u.Phone,
		Avatar:             u.Avatar,
		IsVerified:         u.IsVerified,
		HasAppliedAsAgent:  u.HasAppliedAsAgent,
		AgentApplicationID: u.AgentApplicationID,
	}
	// approval only means something for agents
	if u.Role == domain.RoleAgent {
		resp.IsApproved = u.IsApproved
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	if !u.UpdatedAt.IsZero() {
		updated := u.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// UserSummary is the minimal applicant/reviewer projection used in joins
type UserSummary struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role,omitempty"`
}

func (u *User) ToSummary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// AgentApplication represents agent_applications table
type AgentApplication struct {
	ID              uint                     `gorm:"primaryKey" json:"id"`
	UserID          uint                     `gorm:"uniqueIndex;not null" json:"userId"`
	FullName        string                   `gorm:"size:150;not null" json:"fullName"`
	Phone           string                   `gorm:"size:30;not null" json:"phone"`
	BusinessName    string                   `gorm:"size:150" json:"businessName,omitempty"`
	ExperienceYears int                      `gorm:"not null" json:"experienceYears"`
	LicenseNumber   string                   `gorm:"size:100" json:"licenseNumber,omitempty"`
	Bio             string                   `gorm:"type:text;not null" json:"bio"`
	Documents       []string                 `gorm:"type:text;serializer:json" json:"documents"`
	Status          domain.ApplicationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AppliedAt       time.Time                `gorm:"not null;index" json:"appliedAt"`
	ReviewedAt      *time.Time               `json:"reviewedAt,omitempty"`
	ReviewedBy      *uint                    `json:"reviewedBy,omitempty"`
	RejectionReason string                   `gorm:"type:text" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time                `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (AgentApplication) TableName() string {
	return "agent_applications"
}

// ApplicationWithUser joins an application with its applicant or reviewer summary
type ApplicationWithUser struct {
	*AgentApplication
	Applicant *UserSummary `json:"applicant,omitempty"`
	Reviewer  *UserSummary `json:"reviewer,omitempty"`
}

// ============================================================
// Listings
// ============================================================

// Location is embedded into properties
type Location struct {
	City    string `gorm:"size:100;not null;default:'Agbor';index" json:"city"`
	State   string `gorm:"size:100;not null;default:'Delta'" json:"state"`
	Area    string `gorm:"size:100" json:"area,omitempty"`
	Address string `gorm:"size:255" json:"address,omitempty"`
}

// Property represents properties table
type Property struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	Title        string               `gorm:"size:100;not null" json:"title"`
	PropertyType domain.PropertyType  `gorm:"size:20;not null;default:'apartment'" json:"propertyType"`
	Price        float64              `gorm:"type:decimal(15,2);not null;index" json:"price"`
	OffPrice     *float64             `gorm:"type:decimal(15,2)" json:"offPrice,omitempty"`
	CallOnPrice  bool                 `gorm:"default:false" json:"callOnPrice"`
	Location     Location             `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Description  string               `gorm:"type:text" json:"description,omitempty"`
	Images       []string             `gorm:"type:text;serializer:json" json:"images"`
	Size         float64              `gorm:"not null" json:"size"`
	Bedrooms     int                  `json:"bedrooms,omitempty"`
	Bathrooms    int                  `json:"bathrooms,omitempty"`
	Amenities    []string             `gorm:"type:text;serializer:json" json:"amenities"`
	Status       domain.ListingStatus `gorm:"size:20;not null;default:'available';index" json:"status"`
	Views        int                  `gorm:"default:0" json:"views"`
	PostedBy     uint                 `gorm:"not null;index" json:"postedBy"`
	CreatedAt    time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`

	Poster *User `gorm:"foreignKey:PostedBy" json:"poster,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// Car represents cars table
type Car struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Make        string               `gorm:"size:50;not null" json:"make"`
	Model       string               `gorm:"size:50;not null" json:"model"`
	Year        int                  `gorm:"not null" json:"year"`
	Mileage     int                  `gorm:"not null" json:"mileage"`
	Price       float64              `gorm:"type:decimal(15,2);not null;index" json:"price"`
	Condition   domain.CarCondition  `gorm:"size:20;not null;default:'used'" json:"condition"`
	Description string               `gorm:"type:text" json:"description,omitempty"`
	Images      []string             `gorm:"type:text;serializer:json" json:"images"`
	Videos      []string             `gorm:"type:text;serializer:json" json:"videos"`
	Location    string               `gorm:"size:150" json:"location,omitempty"`
	Status      domain.ListingStatus `gorm:"size:20;not null;default:'available';index" json:"status"`
	PostedBy    uint                 `gorm:"not null;index" json:"postedBy"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`

	Poster *User `gorm:"foreignKey:PostedBy" json:"poster,omitempty"`
}

func (Car) TableName() string {
	return "cars"
}

// ============================================================
// Chat
// ============================================================

// ChatRoom represents chat_rooms table, one room per user/agent pair
type ChatRoom struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_room_pair" json:"userId"`
	AgentID       uint       `gorm:"not null;uniqueIndex:idx_room_pair;index" json:"agentId"`
	LastMessageAt *time.Time `gorm:"index" json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Agent *User `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// HasMember reports whether userID is one side of the room
func (r *ChatRoom) HasMember(userID uint) bool {
	return r.UserID == userID || r.AgentID == userID
}

// Message represents messages table
type Message struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	RoomID     uint        `gorm:"not null;index" json:"roomId"`
	SenderID   uint        `gorm:"not null" json:"senderId"`
	SenderRole domain.Role `gorm:"size:20;not null" json:"senderRole"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	IsRead     bool        `gorm:"default:false" json:"isRead"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// ============================================================
// Payments
// ============================================================

// Payment represents payments table
type Payment struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	Reference        string               `gorm:"size:100;uniqueIndex;not null" json:"reference"`
	Email            string               `gorm:"size:150;not null;index" json:"email"`
	Amount           float64              `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency         string               `gorm:"size:10" json:"currency,omitempty"`
	Status           domain.PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AuthorizationURL string               `gorm:"size:255" json:"authorizationUrl,omitempty"`
	AccessCode       string               `gorm:"size:100" json:"accessCode,omitempty"`
	PaidAt           *time.Time           `json:"paidAt,omitempty"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&AgentApplication{},
		&Property{},
		&Car{},
		&ChatRoom{},
		&Message{},
		&Payment{},
	)
}
