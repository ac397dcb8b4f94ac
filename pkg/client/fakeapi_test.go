package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

type fakeLine struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"productId"`
	PriceAtAddition float64 `json:"priceAtAddition"`
	Quantity        int     `json:"quantity"`
	Size            string  `json:"size,omitempty"`
	Color           string  `json:"color,omitempty"`
	Product         struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"product"`
}

// fakeAPI reproduit /api/cart avec un panier unique et des pannes programmables
type fakeAPI struct {
	t     *testing.T
	token string

	mu     sync.Mutex
	lines  []fakeLine
	seq    int
	prices map[string]float64
	// fail force un statut pour "METHODE chemin-sans-id"
	fail    map[string]int
	calls   []string
	onPatch func(quantity int)
	onGet   func()
	// push déclenche un message cart_updated sur le websocket
	push chan struct{}

	srv *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{t: t, token: "tok", prices: map[string]float64{}, fail: map[string]int{}, push: make(chan struct{}, 4)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", api.auth(api.getCart))
	mux.HandleFunc("POST /api/cart", api.auth(api.addLine))
	mux.HandleFunc("PATCH /api/cart/items/{id}", api.auth(api.patchLine))
	mux.HandleFunc("DELETE /api/cart/items/{id}", api.auth(api.deleteLine))
	mux.HandleFunc("GET /api/cart/ws", api.auth(api.socket))
	api.srv = httptest.NewServer(mux)
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if r.PathValue("id") != "" {
			route = r.Method + " " + strings.TrimSuffix(r.URL.Path, r.PathValue("id"))
		}
		a.mu.Lock()
		a.calls = append(a.calls, route)
		status := a.fail[route]
		token := a.token
		a.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token invalide"})
			return
		}
		if status != 0 {
			msg := "Erreur serveur"
			if status < http.StatusInternalServerError {
				msg = "Stock insuffisant"
			}
			writeJSON(w, status, map[string]string{"error": msg})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) getCart(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	hook := a.onGet
	a.mu.Unlock()
	if hook != nil {
		hook()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": append([]fakeLine{}, a.lines...)})
}

func (a *fakeAPI) addLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Données invalides"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.lines {
		if l.ProductID == in.ProductID && l.Size == in.Size && l.Color == in.Color {
			a.lines[i].Quantity += in.Quantity
			writeJSON(w, http.StatusCreated, a.lines[i])
			return
		}
	}
	a.seq++
	line := fakeLine{
		ID:              fmt.Sprintf("line-%d", a.seq),
		ProductID:       in.ProductID,
		PriceAtAddition: a.prices[in.ProductID],
		Quantity:        in.Quantity,
		Size:            in.Size,
		Color:           in.Color,
	}
	line.Product.Name = "Produit " + in.ProductID
	a.lines = append(a.lines, line)
	writeJSON(w, http.StatusCreated, line)
}

func (a *fakeAPI) patchLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	a.mu.Lock()
	hook := a.onPatch
	a.mu.Unlock()
	if hook != nil {
		hook(in.Quantity)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.lines {
		if l.ID == r.PathValue("id") {
			a.lines[i].Quantity = in.Quantity
			writeJSON(w, http.StatusOK, a.lines[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Article introuvable"})
}

func (a *fakeAPI) deleteLine(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.lines {
		if l.ID == r.PathValue("id") {
			a.lines = append(a.lines[:i], a.lines[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Article introuvable"})
}

func (a *fakeAPI) setFail(route string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail[route] = status
}

func (a *fakeAPI) setToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *fakeAPI) hookPatch(fn func(quantity int)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onPatch = fn
}

func (a *fakeAPI) hookGet(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGet = fn
}

func (a *fakeAPI) callCount(route string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.calls {
		if c == route {
			n++
		}
	}
	return n
}

func (a *fakeAPI) seedLine(productID string, price float64, quantity int, image string) fakeLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	line := fakeLine{ID: fmt.Sprintf("line-%d", a.seq), ProductID: productID, PriceAtAddition: price, Quantity: quantity}
	line.Product.Name = "Produit " + productID
	if image != "" {
		line.Product.Images = append(line.Product.Images, struct {
			URL string `json:"url"`
		}{URL: image})
	}
	a.lines = append(a.lines, line)
	return line
}

func (a *fakeAPI) socket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}
	for {
		select {
		case <-a.push:
			if err := conn.WriteJSON(map[string]string{"type": "cart_updated"}); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
