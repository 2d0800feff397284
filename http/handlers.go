package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cvdrisk/cohort"
	"cvdrisk/risk"
)

// Prediction dependencies, injected once at startup (and swapped in tests).
var (
	classifier risk.Classifier
	explainer  risk.Explainer
	refCohort  *cohort.Cohort
	specs      []risk.FeatureSpec
)

// SetPredictor wires the loaded model, explainer, reference cohort and
// feature table into the handler layer.
func SetPredictor(clf risk.Classifier, exp risk.Explainer, ref *cohort.Cohort, featureSpecs []risk.FeatureSpec) {
	classifier = clf
	explainer = exp
	refCohort = ref
	specs = featureSpecs
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/features", handleFeatures)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/plot", handlePlot)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleFeatures(w http.ResponseWriter, r *http.Request) {
	if specs == nil {
		http.Error(w, `{"error":"predictor not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"features":       specs,
		"cohort_size":    refCohort.Len(),
		"low_percentile": risk.LowCutoffPercentile,
		"mid_percentile": risk.MidCutoffPercentile,
	})
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if classifier == nil || explainer == nil || refCohort == nil {
		http.Error(w, `{"error":"predictor not initialized"}`, http.StatusServiceUnavailable)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	lang := risk.MatchAdvisoryLanguage(r.Header.Get("Accept-Language"))
	result, err := risk.Predict(classifier, explainer, refCohort, specs, req.Features, lang)
	if err != nil {
		writePredictError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func writePredictError(w http.ResponseWriter, err error) {
	var verr *risk.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":      verr.Error(),
			"validation": verr,
		})
		return
	}
	if errors.Is(err, risk.ErrInsufficientCohort) {
		writeJSONError(w, http.StatusInternalServerError, "reference cohort is empty")
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "prediction failed")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
