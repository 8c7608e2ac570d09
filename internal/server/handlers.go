package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl2py"
	"github.com/KDB-USJP/BNDL-Lite/pkg/cache"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	treeio "github.com/KDB-USJP/BNDL-Lite/pkg/io"
	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
	"github.com/KDB-USJP/BNDL-Lite/pkg/observability"
	"github.com/KDB-USJP/BNDL-Lite/pkg/render"
	"github.com/KDB-USJP/BNDL-Lite/pkg/replay"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// =============================================================================
// Request Plumbing
// =============================================================================

// decode reads a JSON request body into v. A malformed body writes an
// INVALID_INPUT envelope and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return false
	}
	return true
}

// fromCache serves a stored envelope when present. Cache failures log
// and fall through to a fresh computation.
func (s *Server) fromCache(w http.ResponseWriter, r *http.Request, c cache.Cache, scope, key string) bool {
	body, ok, err := c.Get(r.Context(), key)
	if err != nil {
		s.log.Warn("cache get", "err", err)
		return false
	}
	if !ok {
		observability.Cache().OnCacheMiss(r.Context(), scope)
		return false
	}
	observability.Cache().OnCacheHit(r.Context(), scope)
	s.writeRaw(w, http.StatusOK, body)
	return true
}

// respond stores the envelope under key and sends it.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, c cache.Cache, scope, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode response"))
		return
	}
	body = append(body, '\n')
	if err := c.Set(r.Context(), key, body, s.ttl); err != nil {
		s.log.Warn("cache set", "err", err)
	} else {
		observability.Cache().OnCacheSet(r.Context(), scope, len(body))
	}
	s.writeRaw(w, http.StatusOK, body)
}

// buildTree replays a parsed document and emits replay hook events
// around the build.
func buildTree(ctx context.Context, doc *bndl.Document, opts replay.Options) (*tree.Tree, *replay.Report, error) {
	typ := string(doc.Header.TreeType)
	start := time.Now()
	observability.Replay().OnBuildStart(ctx, typ, len(doc.Top.Statements))

	t, report, err := replay.Build(doc, opts)

	applied, skipped, groups := 0, 0, 0
	if report != nil {
		applied, skipped = report.Applied, report.Skipped
	}
	if t != nil {
		groups = len(t.Groups)
	}
	observability.Replay().OnBuildComplete(ctx, typ, applied, skipped, groups, time.Since(start), err)
	return t, report, err
}

// =============================================================================
// Validate
// =============================================================================

type validateRequest struct {
	Text string `json:"text"`

	// AssumeLegacyGeometry accepts documents without a Tree_Type
	// header as geometry exports.
	AssumeLegacyGeometry bool `json:"assume_legacy_geometry"`
}

type validateResponse struct {
	Valid     bool            `json:"valid"`
	TreeType  string          `json:"tree_type,omitempty"`
	Name      string          `json:"name,omitempty"`
	NodeCount int             `json:"node_count"`
	Groups    int             `json:"groups"`
	Applied   int             `json:"applied"`
	Skipped   int             `json:"skipped"`
	Warnings  errors.Warnings `json:"warnings,omitempty"`
	Error     *errorBody      `json:"error,omitempty"`
}

// handleValidate parses and replays a document. Document problems are
// part of the outcome, so the response is 200 with valid=false rather
// than an error status.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, err := bndl.Parse([]byte(req.Text))
	if err != nil {
		s.writeJSON(w, http.StatusOK, validateResponse{Error: asErrorBody(err)})
		return
	}

	t, report, err := buildTree(r.Context(), doc, replay.Options{
		AssumeLegacyGeometry: req.AssumeLegacyGeometry,
	})
	if err != nil {
		s.writeJSON(w, http.StatusOK, validateResponse{
			TreeType: string(doc.Header.TreeType),
			Name:     doc.Header.TreeName,
			Warnings: doc.Warnings,
			Error:    asErrorBody(err),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, validateResponse{
		Valid:     true,
		TreeType:  string(t.Type),
		Name:      t.Name,
		NodeCount: t.NodeCount(),
		Groups:    len(t.Groups),
		Applied:   report.Applied,
		Skipped:   report.Skipped,
		Warnings:  mergeWarnings(doc.Warnings, report.Warnings),
	})
}

func asErrorBody(err error) *errorBody {
	return &errorBody{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
}

func mergeWarnings(parse, build errors.Warnings) errors.Warnings {
	if len(parse) == 0 {
		return build
	}
	merged := make(errors.Warnings, 0, len(parse)+len(build))
	merged = append(merged, parse...)
	merged = append(merged, build...)
	return merged
}

// =============================================================================
// Round
// =============================================================================

type roundRequest struct {
	Text string `json:"text"`

	// Digits is the float precision. Omitted selects the default;
	// explicit zero rounds to integers.
	Digits *int `json:"digits"`
}

type roundResponse struct {
	Text   string `json:"text"`
	Digits int    `json:"digits"`
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if !s.decode(w, r, &req) {
		return
	}

	digits := numfmt.DefaultDigits
	if req.Digits != nil && *req.Digits >= 0 {
		digits = *req.Digits
	}

	key := cache.Key("v1", digits, req.Text)
	if s.fromCache(w, r, s.rounds, "round", key) {
		return
	}

	s.respond(w, r, s.rounds, "round", key, roundResponse{
		Text:   numfmt.RoundLiterals(req.Text, digits),
		Digits: digits,
	})
}

// =============================================================================
// Graph
// =============================================================================

type graphRequest struct {
	Text                 string `json:"text"`
	AssumeLegacyGeometry bool   `json:"assume_legacy_geometry"`
}

type graphResponse struct {
	Graph    json.RawMessage `json:"graph"`
	Warnings errors.Warnings `json:"warnings,omitempty"`
}

// handleGraph replays a document and returns the tree as a JSON graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decode(w, r, &req) {
		return
	}

	key := cache.Key("v1", req.AssumeLegacyGeometry, req.Text)
	if s.fromCache(w, r, s.graphs, "graph", key) {
		return
	}

	doc, err := bndl.Parse([]byte(req.Text))
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, report, err := buildTree(r.Context(), doc, replay.Options{
		AssumeLegacyGeometry: req.AssumeLegacyGeometry,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := treeio.WriteJSON(t, &buf); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode graph"))
		return
	}

	s.respond(w, r, s.graphs, "graph", key, graphResponse{
		Graph:    json.RawMessage(buf.Bytes()),
		Warnings: mergeWarnings(doc.Warnings, report.Warnings),
	})
}

// =============================================================================
// Script
// =============================================================================

type scriptRequest struct {
	Text string `json:"text"`

	// AssetMode selects the datablock policy baked into the script.
	// Empty selects proxy mode.
	AssetMode string `json:"asset_mode"`

	Digits               *int `json:"digits"`
	AssumeLegacyGeometry bool `json:"assume_legacy_geometry"`
}

type scriptResponse struct {
	Script   string          `json:"script"`
	Warnings errors.Warnings `json:"warnings,omitempty"`
}

// handleScript generates the Python replay script for a document.
// Replay-level warnings land inside the script as comment lines; the
// envelope carries the parse warnings.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if !s.decode(w, r, &req) {
		return
	}

	mode, err := assets.ParseMode(req.AssetMode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	digits := 0
	if req.Digits != nil {
		digits = *req.Digits
	}

	key := cache.Key("v1", mode, digits, req.AssumeLegacyGeometry, req.Text)
	if s.fromCache(w, r, s.scripts, "script", key) {
		return
	}

	doc, err := bndl.Parse([]byte(req.Text))
	if err != nil {
		s.writeError(w, err)
		return
	}
	script, err := bndl2py.Generate(doc, bndl2py.Options{
		Assets:               mode,
		Digits:               digits,
		AssumeLegacyGeometry: req.AssumeLegacyGeometry,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.respond(w, r, s.scripts, "script", key, scriptResponse{
		Script:   script,
		Warnings: doc.Warnings,
	})
}

// =============================================================================
// Render
// =============================================================================

// Render formats accepted by POST /v1/render.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// defaultPNGScale matches screen-density exports from the CLI.
const defaultPNGScale = 2.0

type renderRequest struct {
	Text string `json:"text"`

	// Format is one of dot, svg, png or pdf. Empty selects svg.
	Format string `json:"format"`

	// Detailed adds socket names, types and property values to the
	// diagram.
	Detailed bool `json:"detailed"`

	// Groups expands group definitions as clusters.
	Groups bool `json:"groups"`

	// Scale multiplies PNG output dimensions. Zero selects 2x.
	Scale float64 `json:"scale"`

	AssumeLegacyGeometry bool `json:"assume_legacy_geometry"`
}

type renderResponse struct {
	Format string `json:"format"`

	// Data holds text output (dot, svg).
	Data string `json:"data,omitempty"`

	// DataBase64 holds binary output (png, pdf).
	DataBase64 string `json:"data_base64,omitempty"`

	Warnings errors.Warnings `json:"warnings,omitempty"`
}

// handleRender replays a document and renders the node-link diagram.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}

	format := req.Format
	if format == "" {
		format = FormatSVG
	}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"unknown render format %q (want dot, svg, png or pdf)", req.Format))
		return
	}
	scale := req.Scale
	if scale <= 0 {
		scale = defaultPNGScale
	}

	key := cache.Key("v1", format, req.Detailed, req.Groups, scale, req.AssumeLegacyGeometry, req.Text)
	if s.fromCache(w, r, s.renders, "render", key) {
		return
	}

	doc, err := bndl.Parse([]byte(req.Text))
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, report, err := buildTree(r.Context(), doc, replay.Options{
		AssumeLegacyGeometry: req.AssumeLegacyGeometry,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	dot := render.ToDOT(t, render.Options{Detailed: req.Detailed, Groups: req.Groups})

	start := time.Now()
	observability.Render().OnRenderStart(r.Context(), format)
	data, err := renderAs(dot, format, scale)
	observability.Render().OnRenderComplete(r.Context(), format, len(data), time.Since(start), err)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format))
		return
	}

	resp := renderResponse{
		Format:   format,
		Warnings: mergeWarnings(doc.Warnings, report.Warnings),
	}
	switch format {
	case FormatDOT, FormatSVG:
		resp.Data = string(data)
	default:
		resp.DataBase64 = base64.StdEncoding.EncodeToString(data)
	}

	s.respond(w, r, s.renders, "render", key, resp)
}

// renderAs converts DOT text to the requested format.
func renderAs(dot, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return render.RenderSVG(dot)
	case FormatPNG:
		return render.RenderPNG(dot, scale)
	default:
		return render.RenderPDF(dot)
	}
}
