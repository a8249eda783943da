package models

import "time"

// Server is an upstream content source. List entries reference it by id only
// (weak reference: deleting a server leaves entries dangling).
type Server struct {
	ID         string    `firestore:"-" json:"id"`
	Name       string    `firestore:"name" json:"name"`
	DNS        string    `firestore:"dns" json:"dns"`
	Complement string    `firestore:"complement" json:"complement"`
	CreatedAt  time.Time `firestore:"createdAt" json:"created_at"`
	UpdatedAt  time.Time `firestore:"updatedAt" json:"updated_at"`
}

// ServerFields is the operator-editable subset of Server.
type ServerFields struct {
	Name       string `json:"name"`
	DNS        string `json:"dns"`
	Complement string `json:"complement"`
}

// FindServer resolves a list entry's server reference against a server set.
// A nil result is a valid state ("server not found"), not an error.
func FindServer(servers []Server, id string) *Server {
	for i := range servers {
		if servers[i].ID == id {
			return &servers[i]
		}
	}
	return nil
}
