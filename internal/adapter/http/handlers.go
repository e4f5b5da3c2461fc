package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/service"
)

const (
	dateLayout   = "2006-01-02"
	maxBodyBytes = 1 << 16
)

type weatherRequest struct {
	TemperatureC float64 `json:"temperature_c" validate:"gte=-90,lte=60"`
	HumidityPct  float64 `json:"humidity_pct" validate:"gte=0,lte=100"`
	RainfallMm   float64 `json:"rainfall_mm" validate:"gte=0"`
	Conditions   string  `json:"conditions" validate:"max=64"`
}

type predictionRequest struct {
	Lat        *float64        `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon        *float64        `json:"lon" validate:"required,gte=-180,lte=180"`
	TargetDate string          `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Weather    *weatherRequest `json:"weather"`
}

type predictionResponse struct {
	domain.PredictionResult
	Place string `json:"place,omitempty"`
}

func (r predictionRequest) toServiceRequest() service.Request {
	req := service.Request{Location: domain.Coordinate{Lat: *r.Lat, Lon: *r.Lon}}
	if r.TargetDate != "" {
		// Already checked by the datetime validator.
		req.TargetDate, _ = time.Parse(dateLayout, r.TargetDate)
	}
	if r.Weather != nil {
		req.Weather = &domain.WeatherSnapshot{
			TemperatureC: r.Weather.TemperatureC,
			HumidityPct:  r.Weather.HumidityPct,
			RainfallMm:   r.Weather.RainfallMm,
			Conditions:   r.Weather.Conditions,
		}
	}
	return req
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var body predictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.predictor.Predict(r.Context(), body.toServiceRequest())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	resp := predictionResponse{PredictionResult: result}
	if includePlace, _ := strconv.ParseBool(r.URL.Query().Get("include_place")); includePlace {
		resp.Place = s.resolvePlace(r.Context(), result.Location)
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	c, err := coordinateFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{
		"label": s.resolvePlace(r.Context(), c),
	})
}

func coordinateFromQuery(r *http.Request) (domain.Coordinate, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lat: must be a number")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lon: must be a number")
	}
	c := domain.Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return c, nil
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return "invalid request: " + strings.Join(parts, ", ")
}
