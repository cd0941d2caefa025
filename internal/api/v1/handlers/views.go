package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/season"
	"ulascansenturk/season-service/internal/service"
)

var validate = validator.New()

type ViewHandler struct {
	viewService service.ViewService
	timeout     time.Duration
	waitTimeout time.Duration
	now         func() time.Time
	router      *mux.Router
}

func NewViewHandler(viewService service.ViewService, timeout, waitTimeout time.Duration) *ViewHandler {
	h := &ViewHandler{
		viewService: viewService,
		timeout:     timeout,
		waitTimeout: waitTimeout,
		now:         time.Now,
		router:      mux.NewRouter(),
	}
	h.registerRoutes(h.router)

	return h
}

func (h *ViewHandler) registerRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/views", h.OpenView).Methods(http.MethodPost)
	v1.HandleFunc("/views/{id}", h.GetView).Methods(http.MethodGet)
	v1.HandleFunc("/views/{id}", h.CloseView).Methods(http.MethodDelete)
	v1.HandleFunc("/views/{id}/position", h.ReportPosition).Methods(http.MethodPost)
	v1.HandleFunc("/season", h.GetSeason).Methods(http.MethodGet)
	v1.HandleFunc("/stats/seasons", h.GetSeasonStats).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *ViewHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ViewHandler) OpenView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot, err := h.viewService.OpenView(ctx, service.OpenRequest{
		Provider: r.URL.Query().Get("provider"),
		RemoteIP: clientIP(r),
	})
	if err != nil {
		h.respondWithServiceError(w, err, "failed to open view")
		return
	}

	w.Header().Set("Location", "/v1/views/"+snapshot.ID)
	respondWithJSON(w, http.StatusCreated, toViewResponse(snapshot))
}

func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		snapshot service.ViewSnapshot
		err      error
	)

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
		defer cancel()
		snapshot, err = h.viewService.WaitView(ctx, id)
	} else {
		snapshot, err = h.viewService.RenderView(r.Context(), id)
	}

	if err != nil {
		h.respondWithServiceError(w, err, "failed to render view")
		return
	}

	respondWithJSON(w, http.StatusOK, toViewResponse(snapshot))
}

func (h *ViewHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.viewService.CloseView(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err, "failed to close view")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) ReportPosition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body PositionReport
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := validate.Struct(body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid position report: "+err.Error())
		return
	}

	report, err := body.toReport()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.viewService.ReportPosition(r.Context(), id, report); err != nil {
		h.respondWithServiceError(w, err, "failed to report position")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *ViewHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	latitude, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil || latitude < -90 || latitude > 90 {
		respondWithError(w, http.StatusBadRequest, "parameter 'lat' must be a latitude between -90 and 90")
		return
	}

	monthIndex := season.MonthIndex(h.now())
	if raw := query.Get("month"); raw != "" {
		monthIndex, err = strconv.Atoi(raw)
		if err != nil || monthIndex < 0 || monthIndex > 11 {
			respondWithError(w, http.StatusBadRequest, "parameter 'month' must be a month index between 0 and 11")
			return
		}
	}

	tag := season.Classify(latitude, monthIndex)
	info, err := season.Lookup(tag)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, SeasonResponse{
		Latitude:   latitude,
		MonthIndex: monthIndex,
		Season:     tag,
		Text:       info.Text,
		IconName:   info.IconName,
	})
}

func (h *ViewHandler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			respondWithError(w, http.StatusBadRequest, "parameter 'since' must be a positive duration such as 24h")
			return
		}
		window = d
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	since := h.now().Add(-window)
	counts, err := h.viewService.SeasonStats(ctx, since)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to load season stats")
		return
	}

	response := SeasonStatsResponse{
		Since:  since.UTC().Format(time.RFC3339),
		Counts: make([]SeasonCountResponse, 0, len(counts)),
	}
	for _, c := range counts {
		response.Counts = append(response.Counts, SeasonCountResponse{Season: c.Season, Count: c.Count})
	}

	respondWithJSON(w, http.StatusOK, response)
}

func (h *ViewHandler) respondWithServiceError(w http.ResponseWriter, err error, msg string) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrViewNotFound):
		code = http.StatusNotFound
	case errors.Is(err, geolocation.ErrUnknownProvider):
		code = http.StatusBadRequest
	case errors.Is(err, geolocation.ErrNoPendingRequest), errors.Is(err, service.ErrReportNotAcceptable):
		code = http.StatusConflict
	case errors.Is(err, service.ErrStatsUnavailable):
		code = http.StatusServiceUnavailable
	default:
		log.Error().Err(err).Msg(msg)
	}

	respondWithError(w, code, msg+": "+err.Error())
}

func (b PositionReport) toReport() (geolocation.Report, error) {
	switch {
	case b.Latitude != nil && b.Error != "":
		return geolocation.Report{}, errors.New("report either a position or an error, not both")
	case b.Latitude != nil:
		coords := geolocation.Coordinates{Latitude: *b.Latitude}
		if b.Longitude != nil {
			coords.Longitude = *b.Longitude
		}
		return geolocation.Report{Position: &coords}, nil
	case b.Error != "":
		return geolocation.Report{ErrorMessage: b.Error}, nil
	default:
		return geolocation.Report{}, errors.New("report must contain a latitude or an error")
	}
}

func toViewResponse(s service.ViewSnapshot) ViewResponse {
	return ViewResponse{
		ID:       s.ID,
		Provider: s.Provider,
		Status:   string(s.Status),
		Kind:     s.Descriptor.Kind,
		Message:  s.Descriptor.Message,
		Season:   s.Descriptor.Season,
		Text:     s.Descriptor.Text,
		IconName: s.Descriptor.IconName,
	}
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
