package models

import "time"

// Device is a subscriber record. The document key is the operator-chosen
// subscriber number, fixed at creation.
type Device struct {
	ID            string      `firestore:"-" json:"id"`
	UserNumber    string      `firestore:"userNumber" json:"user_number"`
	PaymentStatus bool        `firestore:"paymentStatus" json:"payment_status"`
	Lists         []ListEntry `firestore:"lists" json:"lists"`
	CreatedAt     time.Time   `firestore:"createdAt" json:"created_at"`
	ExpiresAt     time.Time   `firestore:"expiresAt" json:"expires_at"`
	UpdatedAt     time.Time   `firestore:"updatedAt" json:"updated_at"`
}

// ListEntry is embedded in a device, never stored on its own. Name and URL
// are denormalized copies derived from the referenced server at last write.
type ListEntry struct {
	ServerID string `firestore:"serverId" json:"server_id"`
	Name     string `firestore:"name" json:"name"`
	Username string `firestore:"username" json:"username"`
	Password string `firestore:"password" json:"password"`
	URL      string `firestore:"url" json:"url"`
}

// DeviceFields is the operator-editable subset of Device.
type DeviceFields struct {
	UserNumber    string      `json:"user_number"`
	PaymentStatus bool        `json:"payment_status"`
	Lists         []ListEntry `json:"lists"`
}

// ListsUpdate is one element of a batched lists write: replace the lists
// field of the device identified by ID, touch nothing else.
type ListsUpdate struct {
	ID    string
	Lists []ListEntry
}
