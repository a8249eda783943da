package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"tropical/internal/listurl"
	"tropical/internal/logs"
	"tropical/internal/models"
	"tropical/internal/repo"
)

type Handler struct {
	d Dependencies
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// storeProblem maps store-layer failures onto the problem+json envelope.
func storeProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		models.WriteProblem(w, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.Is(err, repo.ErrExists):
		models.WriteProblem(w, http.StatusConflict, "Conflict", err.Error(), nil)
	default:
		models.WriteProblem(w, http.StatusBadGateway, "Store Error", err.Error(), nil)
	}
}

// refreshLists recomputes the denormalized name and URL of each entry from
// the current server set. A missing server is not an error: the entry keeps
// its name and gets a URL built from empty dns/complement, same as the
// previous panel did.
func refreshLists(servers []models.Server, lists []models.ListEntry) []models.ListEntry {
	out := make([]models.ListEntry, len(lists))
	for i, item := range lists {
		var dns, complement string
		if srv := models.FindServer(servers, item.ServerID); srv != nil {
			dns, complement = srv.DNS, srv.Complement
			if srv.Name != "" {
				item.Name = srv.Name
			}
		}
		item.URL = listurl.Build(dns, complement, item.Username, item.Password)
		out[i] = item
	}
	return out
}

// ---------- Devices ----------

func (h *Handler) DevicesList(w http.ResponseWriter, r *http.Request) {
	devices, err := h.d.Devices.GetAll(r.Context())
	if err != nil {
		storeProblem(w, err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	models.WriteJSON(w, http.StatusOK, devices)
}

func (h *Handler) DeviceGet(w http.ResponseWriter, r *http.Request) {
	dev, err := h.d.Devices.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, dev)
}

func (h *Handler) DeviceCreate(w http.ResponseWriter, r *http.Request) {
	var f models.DeviceFields
	if err := decode(r, &f); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}
	f.UserNumber = strings.TrimSpace(f.UserNumber)
	if f.UserNumber == "" {
		verr := models.Invalid("user_number", "subscriber number is required")
		models.WriteProblem(w, http.StatusBadRequest, "Validation Error", verr.Error(), nil)
		return
	}

	servers, err := h.d.Servers.GetAll(r.Context())
	if err != nil {
		storeProblem(w, err)
		return
	}
	f.Lists = refreshLists(servers, f.Lists)

	if err := h.d.Devices.Create(r.Context(), f.UserNumber, f); err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, map[string]string{"id": f.UserNumber})
}

func (h *Handler) DeviceUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var f models.DeviceFields
	if err := decode(r, &f); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	servers, err := h.d.Servers.GetAll(r.Context())
	if err != nil {
		storeProblem(w, err)
		return
	}
	f.Lists = refreshLists(servers, f.Lists)

	if err := h.d.Devices.Update(r.Context(), id, f); err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) DeviceDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.d.Devices.Delete(r.Context(), id); err != nil {
		storeProblem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DevicePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Paid bool `json:"paid"`
	}
	if err := decode(r, &body); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}
	if err := h.d.Devices.SetPaymentStatus(r.Context(), id, body.Paid); err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "paid": body.Paid})
}

// ---------- Servers ----------

func (h *Handler) ServersList(w http.ResponseWriter, r *http.Request) {
	servers, err := h.d.Servers.GetAll(r.Context())
	if err != nil {
		storeProblem(w, err)
		return
	}
	if servers == nil {
		servers = []models.Server{}
	}
	models.WriteJSON(w, http.StatusOK, servers)
}

func (h *Handler) ServerGet(w http.ResponseWriter, r *http.Request) {
	srv, err := h.d.Servers.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, srv)
}

func (h *Handler) ServerCreate(w http.ResponseWriter, r *http.Request) {
	var f models.ServerFields
	if err := decode(r, &f); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}
	id, err := h.d.Servers.Create(r.Context(), f)
	if err != nil {
		storeProblem(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ServerUpdate persists the edit and pushes the new URLs to every device
// referencing the server. The response carries how many devices were in the
// write set; on a mid-batch store failure the devices committed before it
// stay committed and the count of them is reported in the problem body.
func (h *Handler) ServerUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var f models.ServerFields
	if err := decode(r, &f); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	updated, err := h.d.Prop.Propagate(r.Context(), id, f)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			models.WriteProblem(w, http.StatusNotFound, "Not Found", err.Error(), nil)
			return
		}
		models.WriteProblem(w, http.StatusBadGateway, "Store Error", err.Error(),
			map[string]any{"updated_devices": updated})
		return
	}

	logs.Logger.Infof("server %s updated, urls propagated to %d devices", id, updated)
	models.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "updated_devices": updated})
}

// ServerDelete removes the server only. Devices referencing it keep their
// entries; the reference is weak.
func (h *Handler) ServerDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.d.Servers.Delete(r.Context(), id); err != nil {
		storeProblem(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
