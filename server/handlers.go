package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/ChristianF88/launchdash/output"
	"github.com/ChristianF88/launchdash/pools"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/reactive"
)

// pageData feeds templates/dashboard.html
type pageData struct {
	Title        string
	AllSites     string
	Sites        []string
	SliderMin    float64
	SliderMax    float64
	SliderStep   float64
	Marks        []float64
	SiteInput    string
	PayloadInput string
	PieCell      string
	ScatterCell  string
	Initial      template.JS
	Bindings     template.JS
}

// chartsResponse maps cell ids to ECharts option objects
type chartsResponse map[reactive.CellID]map[string]interface{}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	buf := pools.Pools.GetBuffer()
	defer pools.Pools.ReturnBuffer(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// defaultSelection is the widget state of a freshly loaded page
func (s *Server) defaultSelection() query.Selection {
	return query.Selection{
		Site:    query.AllSites,
		Payload: query.PayloadRange{Min: s.slider.Min, Max: s.slider.Max},
	}
}

// parseSelection reads site, min and max from the query string. Missing
// values fall back to the page defaults.
func (s *Server) parseSelection(r *http.Request) (query.Selection, error) {
	sel := s.defaultSelection()
	params := r.URL.Query()

	if site := params.Get("site"); site != "" {
		sel.Site = site
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"min", &sel.Payload.Min},
		{"max", &sel.Payload.Max},
	} {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return sel, fmt.Errorf("invalid %s: %q is not a number", p.name, raw)
		}
		*p.dst = v
	}

	sel.Payload = sel.Payload.Normalize()
	return sel, nil
}

// chartOptions evaluates cells for sel and converts every spec to ECharts options
func (s *Server) chartOptions(sel query.Selection, cells ...reactive.Cell) (chartsResponse, error) {
	specs := s.table.Evaluate(sel, cells...)
	resp := make(chartsResponse, len(specs))
	for id, spec := range specs {
		opt, err := output.ChartOptions(spec)
		if err != nil {
			return nil, fmt.Errorf("building options for %s: %w", id, err)
		}
		resp[id] = opt
	}
	return resp, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	initial, err := s.chartOptions(s.defaultSelection())
	if err != nil {
		s.logger.Error("building initial charts", "error", err)
		http.Error(w, "Error building charts", http.StatusInternalServerError)
		return
	}
	initialJSON, err := json.Marshal(initial)
	if err != nil {
		s.logger.Error("encoding initial charts", "error", err)
		http.Error(w, "Error encoding charts", http.StatusInternalServerError)
		return
	}
	bindingsJSON, err := json.Marshal(s.table)
	if err != nil {
		s.logger.Error("encoding bindings", "error", err)
		http.Error(w, "Error encoding bindings", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:        s.title,
		AllSites:     query.AllSites,
		Sites:        s.dataset.Sites(),
		SliderMin:    s.slider.Min,
		SliderMax:    s.slider.Max,
		SliderStep:   s.slider.Step,
		Marks:        s.slider.Marks(),
		SiteInput:    string(reactive.SiteInput),
		PayloadInput: string(reactive.PayloadInput),
		PieCell:      string(reactive.PieCell),
		ScatterCell:  string(reactive.ScatterCell),
		Initial:      template.JS(initialJSON),
		Bindings:     template.JS(bindingsJSON),
	}

	buf := pools.Pools.GetBuffer()
	defer pools.Pools.ReturnBuffer(buf)

	if err := pageTemplate.ExecuteTemplate(buf, "dashboard.html", data); err != nil {
		s.logger.Error("executing page template", "error", err)
		http.Error(w, "Error executing template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleCharts re-evaluates the cells that depend on the input named in
// the request, or every cell when no input is given.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sel, err := s.parseSelection(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cells []reactive.Cell
	if input := reactive.InputID(r.URL.Query().Get("input")); input != "" {
		if !s.table.HasInput(input) {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", reactive.ErrUnknownInput, input))
			return
		}
		cells = s.table.Affected(input)
	}

	resp, err := s.chartOptions(sel, cells...)
	if err != nil {
		s.logger.Error("building charts", "error", err, "site", sel.Site)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to build charts")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.table)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Records: s.dataset.Len()})
}
