package http

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"cvdrisk/risk"
)

// Rendered force plots are cached per input vector. This is a display
// cache only; the attribution itself is recomputed by the predict path.
var plotCache, _ = lru.New[string, []byte](128)

// handlePlot renders the SHAP force plot as SVG. Inputs arrive as one
// query parameter per feature key, e.g. /api/plot?age_years=58&...
func handlePlot(w http.ResponseWriter, r *http.Request) {
	if classifier == nil || explainer == nil || refCohort == nil {
		http.Error(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}

	raw := make(map[string]float64, len(specs))
	var keys []string
	for _, spec := range specs {
		param := r.URL.Query().Get(spec.Key())
		if param == "" {
			http.Error(w, fmt.Sprintf("missing parameter %s", spec.Key()), http.StatusBadRequest)
			return
		}
		value, err := strconv.ParseFloat(param, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid parameter %s", spec.Key()), http.StatusBadRequest)
			return
		}
		raw[spec.Name] = value
		keys = append(keys, fmt.Sprintf("%s=%v", spec.Key(), value))
	}

	cacheKey := strings.Join(keys, "&")
	if svg, ok := plotCache.Get(cacheKey); ok {
		writeSVG(w, svg)
		return
	}

	lang := risk.MatchAdvisoryLanguage(r.Header.Get("Accept-Language"))
	result, err := risk.Predict(classifier, explainer, refCohort, specs, raw, lang)
	if err != nil {
		writePredictError(w, err)
		return
	}

	svg := []byte(renderForcePlot(specs, result))
	plotCache.Add(cacheKey, svg)
	writeSVG(w, svg)
}

func writeSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(svg)
}

const (
	plotWidth  = 840.0
	plotHeight = 220.0
	barY       = 80.0
	barHeight  = 28.0
)

type plotSegment struct {
	name         string
	value        float64
	contribution float64
}

// renderForcePlot draws the additive decomposition as one horizontal bar:
// red segments push the probability up from the base value, blue segments
// push it down, in the style of the SHAP force plot.
func renderForcePlot(featureSpecs []risk.FeatureSpec, result *risk.PredictionResult) string {
	segments := make([]plotSegment, 0, len(featureSpecs))
	for _, spec := range featureSpecs {
		segments = append(segments, plotSegment{
			name:         spec.Name,
			value:        result.Features[spec.Name],
			contribution: result.Contributions[spec.Name],
		})
	}
	// positive pushes first, largest magnitude first within each sign
	sort.SliceStable(segments, func(i, j int) bool {
		si, sj := segments[i], segments[j]
		if (si.contribution >= 0) != (sj.contribution >= 0) {
			return si.contribution >= 0
		}
		return abs(si.contribution) > abs(sj.contribution)
	})

	base := result.BaseValue
	final := result.Probability / 100

	lo, hi := base, base
	cursor := base
	for _, seg := range segments {
		cursor += seg.contribution
		if cursor < lo {
			lo = cursor
		}
		if cursor > hi {
			hi = cursor
		}
	}
	span := hi - lo
	if span < 1e-9 {
		span = 1e-9
	}
	pad := span * 0.15
	lo -= pad
	hi += pad

	x := func(p float64) float64 {
		return 20 + (p-lo)/(hi-lo)*(plotWidth-40)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="sans-serif">`,
		plotWidth, plotHeight, plotWidth, plotHeight)
	fmt.Fprintf(&b, `<rect width="%.0f" height="%.0f" fill="white"/>`, plotWidth, plotHeight)

	cursor = base
	labelRow := 0
	for _, seg := range segments {
		if seg.contribution == 0 {
			continue
		}
		from, to := x(cursor), x(cursor+seg.contribution)
		color := "#ff0d57"
		if seg.contribution < 0 {
			color = "#1e88e5"
		}
		left, right := from, to
		if left > right {
			left, right = right, left
		}
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.0f" width="%.2f" height="%.0f" fill="%s" fill-opacity="0.85"/>`,
			left, barY, right-left, barHeight, color)

		mid := (from + to) / 2
		labelY := barY + barHeight + 18 + float64(labelRow%3)*16
		fmt.Fprintf(&b, `<text x="%.2f" y="%.0f" font-size="11" fill="%s" text-anchor="middle">%s = %s</text>`,
			mid, labelY, color, escape(seg.name), trimFloat(seg.value))
		labelRow++
		cursor += seg.contribution
	}

	// base value marker
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.0f" x2="%.2f" y2="%.0f" stroke="#888" stroke-dasharray="4,3"/>`,
		x(base), barY-28, x(base), barY+barHeight)
	fmt.Fprintf(&b, `<text x="%.2f" y="%.0f" font-size="11" fill="#555" text-anchor="middle">base value %s</text>`,
		x(base), barY-34, trimFloat(base))

	// prediction marker
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.0f" x2="%.2f" y2="%.0f" stroke="#000"/>`,
		x(final), barY-14, x(final), barY+barHeight)
	fmt.Fprintf(&b, `<text x="%.2f" y="%.0f" font-size="12" font-weight="bold" text-anchor="middle">f(x) = %s</text>`,
		x(final), barY-18, trimFloat(final))

	b.WriteString(`</svg>`)
	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
