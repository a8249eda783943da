package admin

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"tropical/internal/middleware"
	"tropical/internal/models"
)

// ServerStore is the slice of the server accessor the panel needs.
type ServerStore interface {
	GetAll(ctx context.Context) ([]models.Server, error)
	Get(ctx context.Context, id string) (*models.Server, error)
	Create(ctx context.Context, f models.ServerFields) (string, error)
	Delete(ctx context.Context, id string) error
}

// DeviceStore is the slice of the device accessor the panel needs.
type DeviceStore interface {
	GetAll(ctx context.Context) ([]models.Device, error)
	Get(ctx context.Context, id string) (*models.Device, error)
	Create(ctx context.Context, id string, f models.DeviceFields) error
	Update(ctx context.Context, id string, f models.DeviceFields) error
	SetPaymentStatus(ctx context.Context, id string, paid bool) error
	Delete(ctx context.Context, id string) error
}

// Propagator pushes a server edit out to every referencing device.
type Propagator interface {
	Propagate(ctx context.Context, serverID string, f models.ServerFields) (int, error)
}

type Dependencies struct {
	Servers   ServerStore
	Devices   DeviceStore
	Prop      Propagator
	AuthToken string // empty leaves /api open
}

func Attach(r *mux.Router, d Dependencies) {
	h := &Handler{d: d}
	sub := r.PathPrefix("/api").Subrouter()
	sub.Use(middleware.BearerAuth(d.AuthToken))

	sub.HandleFunc("/devices", h.DevicesList).Methods(http.MethodGet)
	sub.HandleFunc("/devices", h.DeviceCreate).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}", h.DeviceGet).Methods(http.MethodGet)
	sub.HandleFunc("/devices/{id}", h.DeviceUpdate).Methods(http.MethodPut)
	sub.HandleFunc("/devices/{id}", h.DeviceDelete).Methods(http.MethodDelete)
	sub.HandleFunc("/devices/{id}/payment", h.DevicePayment).Methods(http.MethodPatch)

	sub.HandleFunc("/servers", h.ServersList).Methods(http.MethodGet)
	sub.HandleFunc("/servers", h.ServerCreate).Methods(http.MethodPost)
	sub.HandleFunc("/servers/{id}", h.ServerGet).Methods(http.MethodGet)
	sub.HandleFunc("/servers/{id}", h.ServerUpdate).Methods(http.MethodPut)
	sub.HandleFunc("/servers/{id}", h.ServerDelete).Methods(http.MethodDelete)
}
