package models

import "time"

// Set-top box statuses.
const (
	STBStatusInStock  = "in_stock"
	STBStatusAssigned = "assigned"
	STBStatusFaulty   = "faulty"
	STBStatusRetired  = "retired"
)

// STB is one set-top box in inventory. SubscriberID is set only while
// the box is assigned.
type STB struct {
	ID           int     `json:"id"`
	SerialNumber string  `json:"serial_number"` // Unique
	Model        string  `json:"model"`
	Status       string  `json:"status"`
	SubscriberID *string `json:"subscriber_id,omitempty"`
}

// DummySTB carries the JSON body of a create-STB request.
type DummySTB struct {
	SerialNumber string `json:"serial_number" validate:"required"`
	Model        string `json:"model" validate:"required"`
}

// Complaint statuses.
const (
	ComplaintStatusOpen       = "open"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusResolved   = "resolved"
)

// Complaint is a subscriber-reported issue with a simple status field.
type Complaint struct {
	ID           int        `json:"id"`
	SubscriberID string     `json:"subscriber_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// DummyComplaint carries the JSON body of an open-complaint request.
type DummyComplaint struct {
	SubscriberID string `json:"subscriber_id" validate:"required,uuid"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description,omitempty"`
}

// Region is a service area subscribers belong to.
type Region struct {
	ID   int    `json:"id"`
	Name string `json:"name"` // Unique
}

// CompanySettings is the single-row operator company profile included
// in backup snapshots.
type CompanySettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
