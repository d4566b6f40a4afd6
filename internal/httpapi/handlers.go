package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/liminalpurple/flyerkit/internal/detail"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/navigation"
	"github.com/liminalpurple/flyerkit/internal/preview"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ViewFactory creates an unopened view of a flyer for a session, along
// with the headless renderer it draws to
type ViewFactory func(flyerID int64, s *session.Session) (*viewer.View, *viewer.Headless)

// --- Request / Response DTOs ---

type sessionRequest struct {
	PostalCode string `json:"postal_code"`
}

type sessionResponse struct {
	SessionID  string         `json:"session_id"`
	Next       session.Screen `json:"next"`
	PostalCode string         `json:"postal_code"`
	FlyerID    int64          `json:"default_flyer_id"`
}

type openRequest struct {
	FlyerID    int64  `json:"flyer_id"`
	PostalCode string `json:"postal_code"`
	SessionID  string `json:"session_id"`
}

type viewResponse struct {
	ViewID    string          `json:"view_id"`
	FlyerID   int64           `json:"flyer_id"`
	Status    viewer.Status   `json:"status"`
	Errors    []string        `json:"errors,omitempty"`
	Threshold float64         `json:"threshold"`
	Clips     []int64         `json:"clips"`
	Overlays  viewer.Overlays `json:"overlays"`
}

type discountRequest struct {
	Threshold float64 `json:"threshold"`
}

type tapResponse struct {
	Route  navigation.Route `json:"route"`
	Title  string           `json:"title,omitempty"`
	Detail string           `json:"detail_html,omitempty"`
}

type pressResponse struct {
	ItemID  int64 `json:"item_id"`
	Clipped bool  `json:"clipped"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// --- Handler struct & constructor ---

type openView struct {
	view     *viewer.View
	renderer *viewer.Headless
}

// Handler owns the open views
type Handler struct {
	factory        ViewFactory
	defaultPostal  string
	defaultFlyerID int64
	log            zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
	views    map[uuid.UUID]openView
}

// NewHandler creates a handler that opens views with factory
func NewHandler(factory ViewFactory, defaultPostal string, defaultFlyerID int64, log zerolog.Logger) *Handler {
	return &Handler{
		factory:        factory,
		defaultPostal:  defaultPostal,
		defaultFlyerID: defaultFlyerID,
		log:            log.With().Str("component", "httpapi").Logger(),
		sessions:       make(map[uuid.UUID]*session.Session),
		views:          make(map[uuid.UUID]openView),
	}
}

// CloseAll closes every open view
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ov := range h.views {
		ov.view.Close()
		delete(h.views, id)
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Code: flyer.Code(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, flyer.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, flyer.ErrPageLinksUnavailable):
		return http.StatusConflict
	case errors.Is(err, flyer.ErrNoRoute), errors.Is(err, flyer.ErrPageOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flyer.ErrLoadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return errors.Wrap(json.NewDecoder(r.Body).Decode(v), "invalid request body")
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (openView, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "viewID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid view id"})
		return openView{}, false
	}

	h.mu.Lock()
	ov, ok := h.views[id]
	h.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "view not found"})
		return openView{}, false
	}
	return ov, true
}

func (h *Handler) sessionFor(w http.ResponseWriter, req openRequest) (*session.Session, bool) {
	if req.SessionID == "" {
		return session.New(req.PostalCode), true
	}

	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return nil, false
	}

	h.mu.Lock()
	s, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return nil, false
	}
	return s, true
}

func itemParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid item id")
	}
	return id, nil
}

func snapshot(ov openView) viewResponse {
	status := ov.view.Status()
	resp := viewResponse{
		ViewID:    ov.view.ID().String(),
		FlyerID:   ov.view.FlyerID(),
		Status:    status,
		Threshold: ov.view.Threshold(),
		Clips:     ov.view.Clips(),
		Overlays:  ov.renderer.Overlays(),
	}
	for _, s := range []viewer.LoadState{status.Items, status.Pages} {
		if msg := s.Message(); msg != "" {
			resp.Errors = append(resp.Errors, msg)
		}
	}
	return resp
}

// --- Handlers ---

// CreateSession submits a postal code
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s := session.New(h.defaultPostal)
	next := session.NewEntry(s, h.defaultFlyerID).Submit(req.PostalCode)

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:  s.ID.String(),
		Next:       next.Screen,
		PostalCode: next.PostalCode,
		FlyerID:    h.defaultFlyerID,
	})
}

// OpenView opens and loads a flyer. With a session_id the view uses that
// session's postal code; otherwise a new session is made from postal_code.
// A failed load still creates the view so the client can see which fetch
// failed.
func (h *Handler) OpenView(w http.ResponseWriter, r *http.Request) {
	req := openRequest{FlyerID: h.defaultFlyerID, PostalCode: h.defaultPostal}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s, ok := h.sessionFor(w, req)
	if !ok {
		return
	}

	view, renderer := h.factory(req.FlyerID, s)
	if _, err := view.Open(context.WithoutCancel(r.Context())); err != nil {
		h.log.Warn().Err(err).Str("view", view.ID().String()).Msg("View opened with errors")
	}
	viewer.FitToFlyer(view, renderer)

	ov := openView{view: view, renderer: renderer}
	h.mu.Lock()
	h.views[view.ID()] = ov
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, snapshot(ov))
}

// GetView returns the view's state and overlays
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(ov))
}

// CloseView closes and forgets a view
func (h *Handler) CloseView(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}

	ov.view.Close()
	h.mu.Lock()
	delete(h.views, ov.view.ID())
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// Appear resets the discount filter and refreshes clipped coupons
func (h *Handler) Appear(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := ov.view.Appear(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Clipped coupons refresh failed")
	}
	writeJSON(w, http.StatusOK, snapshot(ov))
}

// SetDiscount updates the highlight threshold
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req discountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Threshold < 0 || req.Threshold > 100 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "threshold must be between 0 and 100"})
		return
	}

	ov.view.SetDiscount(req.Threshold)
	writeJSON(w, http.StatusOK, snapshot(ov))
}

// DoubleTap zooms the view around a point
func (h *Handler) DoubleTap(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var p flyer.Point
	if err := decode(r, &p); err != nil {
		writeError(w, err)
		return
	}

	if _, ok := ov.view.DoubleTap(p); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "view has no size to zoom"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot(ov))
}

// Tap resolves a single tap and returns its route and detail page
func (h *Handler) Tap(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}
	itemID, err := itemParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	route, err := ov.view.SingleTap(itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := tapResponse{Route: route}
	if page, err := detail.ForRoute(route, ov.view.Item); err == nil {
		resp.Title = page.Title()
		resp.Detail = detail.HTML(page)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Press toggles an item's clip state
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}
	itemID, err := itemParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	clipped, err := ov.view.LongPress(itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pressResponse{ItemID: itemID, Clipped: clipped})
}

// Preview renders the overlays as PNG
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	ov, ok := h.lookup(w, r)
	if !ok {
		return
	}

	width := preview.DefaultWidth
	if q := r.URL.Query().Get("width"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 4096 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid width"})
			return
		}
		width = n
	}

	img, err := preview.Render(ov.renderer.Overlays(), preview.Options{Width: width, Labels: true})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := preview.EncodePNG(w, img); err != nil {
		h.log.Warn().Err(err).Msg("Failed to write preview")
	}
}
