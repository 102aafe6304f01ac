package db

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enum defined
type Role string

type ApprovalStatus string

type TicketType string

type PaymentStatus string

type RefundStatus string

// Constant defined
const (
	// Constant role defined
	Customer  Role = "user"
	Organizer Role = "organizer"
	Admin     Role = "admin"

	// Event approval status, admin-gated
	EventPending  ApprovalStatus = "pending"
	EventApproved ApprovalStatus = "approved"
	EventRejected ApprovalStatus = "rejected"

	// Ticket type. RSVP is the free path, everything else is paid
	RSVP             TicketType = "RSVP"
	GeneralAdmission TicketType = "General Admission"
	VIP              TicketType = "VIP"
	EarlyBird        TicketType = "Early Bird"

	// Payment status
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"

	// Refund status
	RefundNotRequested RefundStatus = "Not Requested"
	RefundRequested    RefundStatus = "Requested"
	RefundRefunded     RefundStatus = "Refunded"
)

// ValidTicketType reports whether t is one of the ticket types sold on the
// platform.
func ValidTicketType(t TicketType) bool {
	switch t {
	case RSVP, GeneralAdmission, VIP, EarlyBird:
		return true
	}
	return false
}

// User of the system, consist of 3 roles:
// 1. user/customer (who browse events and buy tickets)
// 2. organizer: who host events through the platform
// 3. admin: platform's administrator, moderates event approval
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Fullname       string             `bson:"fullname" json:"fullname"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Role           Role               `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Event category, managed by admin. Kept minimal here: the core only needs
// names for search and ids for preference matching.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Event document. The attendee list is embedded so capacity enforcement and
// duplicate detection are a single-document conditional update.
// Invariants:
// 1. current_attendees == len(current_attendee_list)
// 2. current_attendees <= max_attendees when max_attendees is set
// 3. ticket_price == 0 when is_paid == false
// 4. event_id is unique and never changes after creation
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     int64              `bson:"event_id" json:"event_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`

	// Wall-clock strings in the event's local calendar: DD/MM/YYYY and HH:MM
	Date      string `bson:"date" json:"date"`
	StartTime string `bson:"start_time" json:"startTime"`
	EndTime   string `bson:"end_time" json:"endTime"`

	IsPaid      bool    `bson:"is_paid" json:"isPaid"`
	TicketPrice float64 `bson:"ticket_price" json:"ticketPrice"`
	Discount    float64 `bson:"discount" json:"discount"`

	MaxAttendees        *int64               `bson:"max_attendees,omitempty" json:"maxAttendees,omitempty"` // nil = unlimited
	CurrentAttendees    int64                `bson:"current_attendees" json:"currentAttendees"`
	CurrentAttendeeList []primitive.ObjectID `bson:"current_attendee_list" json:"current_attendee_list,omitempty"`

	Images     []string             `bson:"images" json:"images"`
	Category   []primitive.ObjectID `bson:"category" json:"category"`
	FoodStalls bool                 `bson:"food_stalls" json:"food_stalls"`

	IsCancelled bool           `bson:"isCancelled" json:"isCancelled"`
	Status      ApprovalStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Ticket is the durable proof of a single attendance or purchase.
// QR exists iff payment status is Paid; `used` transitions nil -> timestamp
// exactly once and never reverts.
type Ticket struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketNumber string             `bson:"ticket_number" json:"ticket_number"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	TicketType   TicketType         `bson:"ticket_type" json:"ticket_type"`
	Price        float64            `bson:"price" json:"price"`

	// Stripe checkout session id. Empty for the RSVP path.
	SessionID string `bson:"session_id,omitempty" json:"session_id,omitempty"`

	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	RefundStatus  RefundStatus  `bson:"refund_status" json:"refund_status"`
	QRCode        string        `bson:"qr_code,omitempty" json:"qr_code,omitempty"`

	// Event date snapshot taken at issuance, decoupled from later edits
	EventDate string `bson:"event_date" json:"event_date"`

	Used      *time.Time `bson:"used,omitempty" json:"used,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// TicketDetails is a ticket joined with its event, the shape every
// ticket-returning endpoint responds with.
type TicketDetails struct {
	Ticket
	Event *Event `json:"event,omitempty"`
}

// Notification is owned by the recipient: created in bulk by the notifier,
// mutated only by mark-read and delete.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	EventID   *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Message   string              `bson:"message" json:"message"`
	IsRead    bool                `bson:"isRead" json:"isRead"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

// UserPreference: one record per user. Absence is equivalent to an empty
// preference set.
type UserPreference struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"user_id"`
	PreferredCategory []primitive.ObjectID `bson:"preferred_category" json:"preferred_category"`
}
