package http

import (
	"html/template"
	"net/http"
)

// RegisterPageHandlers 注册演示页面
func RegisterPageHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if specs == nil {
		http.Error(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTemplate.Execute(w, specs)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Prediction of Cardiovascular Risk in New-onset T2D</title>
<style>
body { font-family: sans-serif; max-width: 880px; margin: 24px auto; color: #222; }
h1 { font-size: 1.4em; } .caption { color: #666; margin-bottom: 1.5em; }
.field { margin: 8px 0; } .field label { display: inline-block; width: 220px; }
#result { margin-top: 1.5em; } .tier-LOW { color: #2e7d32; } .tier-MODERATE { color: #f9a825; } .tier-HIGH { color: #c62828; }
.error { color: #c62828; } #plot { margin-top: 1em; max-width: 100%; }
button { margin-top: 12px; padding: 6px 18px; }
</style>
</head>
<body>
<h1>Prediction of Cardiovascular Risk in New-onset T2D</h1>
<div class="caption">Based on TyG Index and Carotid Ultrasound Features</div>
<form id="form">
{{range .}}
<div class="field">
<label for="{{.Key}}">{{.Name}}</label>
{{if .Categorical}}
<select id="{{.Key}}" name="{{.Key}}" data-feature="{{.Name}}">
<option value="0" {{if eq .Default 0.0}}selected{{end}}>0</option>
<option value="1" {{if eq .Default 1.0}}selected{{end}}>1</option>
</select>
{{else}}
<input type="number" id="{{.Key}}" name="{{.Key}}" data-feature="{{.Name}}"
       min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Default}}">
{{end}}
</div>
{{end}}
<button type="submit">Submit Prediction</button>
</form>
<div id="result"></div>
<img id="plot" alt="" hidden>
<script>
const form = document.getElementById('form');
form.addEventListener('submit', async (ev) => {
  ev.preventDefault();
  const features = {};
  const params = new URLSearchParams();
  for (const el of form.querySelectorAll('[data-feature]')) {
    features[el.dataset.feature] = parseFloat(el.value);
    params.set(el.name, el.value);
  }
  const result = document.getElementById('result');
  const plot = document.getElementById('plot');
  plot.hidden = true;
  const resp = await fetch('/api/predict', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({features})
  });
  const body = await resp.json();
  if (!resp.ok) {
    result.innerHTML = '<p class="error"></p>';
    result.firstChild.textContent = body.error || 'prediction failed';
    return;
  }
  result.innerHTML =
    '<p><b>Estimated probability:</b> ' + body.probability_pct.toFixed(2) + '%</p>' +
    '<p class="tier-' + body.tier + '"><b>' + body.tier + ' RISK</b></p>' +
    '<p></p>';
  result.lastChild.textContent = body.advisory;
  plot.src = '/api/plot?' + params.toString();
  plot.hidden = false;
});
</script>
</body>
</html>`))
