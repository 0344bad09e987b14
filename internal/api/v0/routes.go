// Package v0 provides the REST API handlers for the model registry.
package v0

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trustmodel/registry-server/internal/api/common"
	"github.com/trustmodel/registry-server/internal/artifact"
	"github.com/trustmodel/registry-server/internal/service"
	"github.com/trustmodel/registry-server/internal/versions"
)

// defaultPageSize caps listing responses when the client does not supply
// a limit.
const defaultPageSize = 100

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegexQuery is the request body for regular-expression searches.
type RegexQuery struct {
	Regex string `json:"regex"`
}

// LicenseCheckResponse reports the license assessment of a stored model.
type LicenseCheckResponse struct {
	LicenseScore float64 `json:"license_score"`
	Valid        bool    `json:"valid"`
}

// TracksResponse lists the tracks this registry deployment implements.
type TracksResponse struct {
	PlannedTracks []string `json:"planned_tracks"`
}

// AuthenticateResponse carries the stub bearer token. The registry does
// not enforce authentication.
type AuthenticateResponse struct {
	BearerToken string `json:"bearer_token"`
}

// CostResponse wraps the storage cost of an artifact.
type CostResponse struct {
	Cost service.Cost `json:"cost"`
}

// Routes defines the routes for the registry API with dependency injection
type Routes struct {
	service service.RegistryService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.RegistryService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates a new router for the registry API
func Router(svc service.RegistryService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	// System endpoints
	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler)
	r.Get("/version", versionHandler)
	r.Get("/tracks", routes.getTracks)
	r.Put("/authenticate", routes.authenticate)
	r.Delete("/reset", routes.reset)

	// Artifact collection
	r.Post("/artifacts", routes.listArtifacts)
	r.Post("/packages", routes.listArtifacts)
	r.Get("/artifacts/{type}", routes.listByType)

	// Artifact CRUD, with the plural and legacy package aliases
	r.Post("/artifact", routes.createArtifact)
	r.Post("/package", routes.createArtifact)
	r.Post("/artifact/{type}", routes.createArtifact)
	for _, prefix := range []string{"/artifact/{type}", "/artifacts/{type}"} {
		r.Get(prefix+"/{id}", routes.getArtifact)
		r.Put(prefix+"/{id}", routes.updateArtifact)
		r.Delete(prefix+"/{id}", routes.deleteArtifact)
	}
	r.Get("/package/{id}", routes.getArtifact)
	r.Put("/package/{id}", routes.updateArtifact)
	r.Delete("/package/{id}", routes.deleteArtifact)

	// Model scoring and provenance
	r.Get("/artifact/model/{id}/rate", routes.rateArtifact)
	r.Get("/package/{id}/rate", routes.rateArtifact)
	r.Get("/artifact/model/{id}/cost", routes.getCost)
	r.Post("/artifact/model/{id}/license-check", routes.checkLicense)
	r.Get("/artifact/model/lineage", routes.getGlobalLineage)
	r.Get("/artifact/model/{id}/lineage", routes.getLineage)

	// Search
	r.Post("/artifact/byRegEx", routes.searchByRegex)
	r.Post("/package/byRegEx", routes.searchByRegex)
	r.Get("/artifact/byName/*", routes.getHistory)
	r.Get("/package/byName/*", routes.getHistory)

	return r
}

// listArtifacts handles POST /artifacts
//
// @Summary		List artifacts
// @Description	List artifacts matching the given queries, windowed by offset and limit
// @Tags			artifacts
// @Accept			json
// @Produce		json
// @Param			offset	query		int	false	"Pagination offset"
// @Param			limit	query		int	false	"Maximum number of results"
// @Success		200		{array}		artifact.Metadata
// @Failure		400		{object}	ErrorResponse
// @Router			/artifacts [post]
func (rr *Routes) listArtifacts(w http.ResponseWriter, r *http.Request) {
	var queries []artifact.Query
	if err := json.NewDecoder(r.Body).Decode(&queries); err != nil {
		rr.writeErrorResponse(w, "Request body must be a list of artifact queries", http.StatusBadRequest)
		return
	}

	offset, ok := intQueryParam(w, r, "offset", 0)
	if !ok {
		return
	}
	limit, ok := intQueryParam(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}

	arts, err := rr.service.ListArtifacts(r.Context(), queries, offset, limit)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	if limit > 0 && len(arts) == limit {
		w.Header().Set("offset", strconv.Itoa(offset+limit))
	}
	rr.writeJSONResponse(w, metadataOf(arts), http.StatusOK)
}

// listByType handles GET /artifacts/{type}
//
// @Summary		List artifacts of one type
// @Description	List every artifact of the given type
// @Tags			artifacts
// @Produce		json
// @Param			type	path		string	true	"Artifact type"	Enums(model,dataset,code)
// @Success		200		{array}		artifact.Metadata
// @Failure		400		{object}	ErrorResponse
// @Router			/artifacts/{type} [get]
func (rr *Routes) listByType(w http.ResponseWriter, r *http.Request) {
	artType, ok := rr.pathType(w, r)
	if !ok {
		return
	}

	queries := []artifact.Query{{Name: "*", Types: []string{string(artType)}}}
	arts, err := rr.service.ListArtifacts(r.Context(), queries, 0, 0)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, metadataOf(arts), http.StatusOK)
}

// createArtifact handles POST /artifact and POST /artifact/{type}
//
// @Summary		Register an artifact
// @Description	Register an artifact by URL ingestion or direct upload. URL-ingested models are scored and rejected when their net score falls below the ingestion threshold.
// @Tags			artifacts
// @Accept			json
// @Produce		json
// @Param			type		path		string				false	"Artifact type"	Enums(model,dataset,code)
// @Param			artifact	body		artifact.Artifact	true	"Artifact to register"
// @Success		201			{object}	artifact.Artifact
// @Failure		400			{object}	ErrorResponse
// @Failure		424			{object}	ErrorResponse
// @Router			/artifact/{type} [post]
func (rr *Routes) createArtifact(w http.ResponseWriter, r *http.Request) {
	var art artifact.Artifact
	if err := json.NewDecoder(r.Body).Decode(&art); err != nil {
		rr.writeErrorResponse(w, "Invalid artifact body", http.StatusBadRequest)
		return
	}

	if typeParam := chi.URLParam(r, "type"); typeParam != "" {
		artType, ok := parseType(typeParam)
		if !ok {
			rr.writeErrorResponse(w, "Unknown artifact type: "+typeParam, http.StatusBadRequest)
			return
		}
		art.Metadata.Type = artType
	}

	created, err := rr.service.CreateArtifact(r.Context(), &art)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, created, http.StatusCreated)
}

// getArtifact handles GET /artifact/{type}/{id}
//
// @Summary		Retrieve an artifact
// @Description	Retrieve a registered artifact by id
// @Tags			artifacts
// @Produce		json
// @Param			type	path		string	true	"Artifact type"	Enums(model,dataset,code)
// @Param			id		path		string	true	"Artifact id"
// @Success		200		{object}	artifact.Artifact
// @Failure		404		{object}	ErrorResponse
// @Router			/artifact/{type}/{id} [get]
func (rr *Routes) getArtifact(w http.ResponseWriter, r *http.Request) {
	art, ok := rr.lookupArtifact(w, r)
	if !ok {
		return
	}

	rr.writeJSONResponse(w, art, http.StatusOK)
}

// updateArtifact handles PUT /artifact/{type}/{id}
//
// @Summary		Update an artifact
// @Description	Replace the content of a registered artifact. The id and the ingestion mode are immutable.
// @Tags			artifacts
// @Accept			json
// @Produce		json
// @Param			type		path		string				true	"Artifact type"	Enums(model,dataset,code)
// @Param			id			path		string				true	"Artifact id"
// @Param			artifact	body		artifact.Artifact	true	"Replacement artifact"
// @Success		200			{object}	artifact.Artifact
// @Failure		400			{object}	ErrorResponse
// @Failure		404			{object}	ErrorResponse
// @Router			/artifact/{type}/{id} [put]
func (rr *Routes) updateArtifact(w http.ResponseWriter, r *http.Request) {
	if _, ok := rr.lookupArtifact(w, r); !ok {
		return
	}

	var art artifact.Artifact
	if err := json.NewDecoder(r.Body).Decode(&art); err != nil {
		rr.writeErrorResponse(w, "Invalid artifact body", http.StatusBadRequest)
		return
	}
	art.Metadata.ID = chi.URLParam(r, "id")

	if err := rr.service.UpdateArtifact(r.Context(), &art); err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, &art, http.StatusOK)
}

// deleteArtifact handles DELETE /artifact/{type}/{id}
//
// @Summary		Delete an artifact
// @Description	Remove a registered artifact and its rating
// @Tags			artifacts
// @Produce		json
// @Param			type	path		string	true	"Artifact type"	Enums(model,dataset,code)
// @Param			id		path		string	true	"Artifact id"
// @Success		200		{object}	map[string]string
// @Failure		404		{object}	ErrorResponse
// @Router			/artifact/{type}/{id} [delete]
func (rr *Routes) deleteArtifact(w http.ResponseWriter, r *http.Request) {
	if _, ok := rr.lookupArtifact(w, r); !ok {
		return
	}

	if err := rr.service.DeleteArtifact(r.Context(), chi.URLParam(r, "id")); err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, map[string]string{"message": "Artifact deleted"}, http.StatusOK)
}

// rateArtifact handles GET /artifact/model/{id}/rate
//
// @Summary		Rate an artifact
// @Description	Return the quality rating of an artifact, computing it on demand for URL-ingested artifacts without a stored rating
// @Tags			scoring
// @Produce		json
// @Param			id	path		string	true	"Artifact id"
// @Success		200	{object}	artifact.Rating
// @Failure		404	{object}	ErrorResponse
// @Router			/artifact/model/{id}/rate [get]
func (rr *Routes) rateArtifact(w http.ResponseWriter, r *http.Request) {
	rating, err := rr.service.Rate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, rating, http.StatusOK)
}

// getCost handles GET /artifact/model/{id}/cost
//
// @Summary		Artifact storage cost
// @Description	Report the storage footprint of an artifact in megabytes
// @Tags			scoring
// @Produce		json
// @Param			id	path		string	true	"Artifact id"
// @Success		200	{object}	CostResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/artifact/model/{id}/cost [get]
func (rr *Routes) getCost(w http.ResponseWriter, r *http.Request) {
	cost, err := rr.service.GetCost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, CostResponse{Cost: *cost}, http.StatusOK)
}

// checkLicense handles POST /artifact/model/{id}/license-check
//
// @Summary		License check
// @Description	Report whether the artifact's detected license is compatible, based on its stored rating
// @Tags			scoring
// @Produce		json
// @Param			id	path		string	true	"Artifact id"
// @Success		200	{object}	LicenseCheckResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/artifact/model/{id}/license-check [post]
func (rr *Routes) checkLicense(w http.ResponseWriter, r *http.Request) {
	rating, err := rr.service.Rate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, LicenseCheckResponse{
		LicenseScore: rating.License,
		Valid:        rating.License > 0,
	}, http.StatusOK)
}

// getLineage handles GET /artifact/model/{id}/lineage
//
// @Summary		Model lineage
// @Description	Return the ancestry graph recorded for a model at ingestion
// @Tags			scoring
// @Produce		json
// @Param			id	path		string	true	"Artifact id"
// @Success		200	{object}	service.Lineage
// @Failure		404	{object}	ErrorResponse
// @Router			/artifact/model/{id}/lineage [get]
func (rr *Routes) getLineage(w http.ResponseWriter, r *http.Request) {
	lineage, err := rr.service.GetLineage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, lineage, http.StatusOK)
}

// getGlobalLineage handles GET /artifact/model/lineage
//
// @Summary		Global lineage
// @Description	Return the registry-wide lineage graph. Currently always empty.
// @Tags			scoring
// @Produce		json
// @Success		200	{object}	service.Lineage
// @Router			/artifact/model/lineage [get]
func (rr *Routes) getGlobalLineage(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, service.Lineage{
		Nodes: []service.LineageNode{},
		Edges: []service.LineageEdge{},
	}, http.StatusOK)
}

// searchByRegex handles POST /artifact/byRegEx
//
// @Summary		Search artifacts by regular expression
// @Description	Return artifacts whose name or id matches the expression
// @Tags			search
// @Accept			json
// @Produce		json
// @Param			query	body		RegexQuery	true	"Search expression"
// @Success		200		{array}		artifact.Metadata
// @Failure		400		{object}	ErrorResponse
// @Router			/artifact/byRegEx [post]
func (rr *Routes) searchByRegex(w http.ResponseWriter, r *http.Request) {
	var query RegexQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil || query.Regex == "" {
		rr.writeErrorResponse(w, "Request body must contain a regex field", http.StatusBadRequest)
		return
	}

	arts, err := rr.service.SearchByRegex(r.Context(), query.Regex)
	if err != nil {
		rr.writeErrorResponse(w, "Invalid regular expression", http.StatusBadRequest)
		return
	}

	rr.writeJSONResponse(w, metadataOf(arts), http.StatusOK)
}

// getHistory handles GET /artifact/byName/{name}
//
// @Summary		Artifact history by name
// @Description	Return the audit trail for every artifact registered under the given name
// @Tags			search
// @Produce		json
// @Param			name	path		string	true	"Artifact name"
// @Success		200		{array}		artifact.AuditEntry
// @Failure		404		{object}	ErrorResponse
// @Router			/artifact/byName/{name} [get]
func (rr *Routes) getHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		rr.writeErrorResponse(w, "Artifact name is required", http.StatusBadRequest)
		return
	}

	entries, err := rr.service.History(r.Context(), name)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, entries, http.StatusOK)
}

// reset handles DELETE /reset
//
// @Summary		Reset the registry
// @Description	Drop every artifact, rating and audit record
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/reset [delete]
func (rr *Routes) reset(w http.ResponseWriter, r *http.Request) {
	if err := rr.service.Reset(r.Context()); err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	rr.writeJSONResponse(w, map[string]string{"message": "Registry is reset"}, http.StatusOK)
}

// getTracks handles GET /tracks
//
// @Summary		Implemented tracks
// @Description	List the specification tracks this deployment implements
// @Tags			system
// @Produce		json
// @Success		200	{object}	TracksResponse
// @Router			/tracks [get]
func (rr *Routes) getTracks(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, TracksResponse{
		PlannedTracks: []string{"Access Control Track"},
	}, http.StatusOK)
}

// authenticate handles PUT /authenticate
//
// @Summary		Authenticate
// @Description	Issue a bearer token. Authentication is not enforced, so the token is a static stub.
// @Tags			system
// @Produce		json
// @Success		200	{object}	AuthenticateResponse
// @Router			/authenticate [put]
func (rr *Routes) authenticate(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, AuthenticateResponse{BearerToken: "bearer not-a-real-token"}, http.StatusOK)
}

// healthHandler handles health check requests
//
// @Summary		Health check
// @Description	Check if the registry API is healthy
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/health [get]
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessHandler handles readiness check requests
//
// @Summary		Readiness check
// @Description	Check if the registry API is ready to serve requests
// @Tags			system
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/readiness [get]
func readinessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// versionHandler handles version information requests
//
// @Summary		Version information
// @Description	Get version information about the registry API
// @Tags			system
// @Produce		json
// @Success		200	{object}	versions.VersionInfo
// @Router			/version [get]
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	info := versions.GetVersionInfo()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Error("failed to encode version info", "error", err)
	}
}

// lookupArtifact fetches the artifact named by the request path and
// verifies any {type} path segment against the stored type. It writes
// the error response itself when the lookup fails.
func (rr *Routes) lookupArtifact(w http.ResponseWriter, r *http.Request) (*artifact.Artifact, bool) {
	artType, ok := rr.pathType(w, r)
	if !ok {
		return nil, false
	}

	art, err := rr.service.GetArtifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rr.writeServiceError(w, r, err)
		return nil, false
	}

	if artType != "" && art.Metadata.Type != artType {
		rr.writeErrorResponse(w, "Artifact not found", http.StatusNotFound)
		return nil, false
	}

	return art, true
}

// pathType validates the optional {type} path segment. An absent segment
// is reported as the empty type.
func (rr *Routes) pathType(w http.ResponseWriter, r *http.Request) (artifact.Type, bool) {
	typeParam := chi.URLParam(r, "type")
	if typeParam == "" {
		return "", true
	}

	artType, ok := parseType(typeParam)
	if !ok {
		rr.writeErrorResponse(w, "Unknown artifact type: "+typeParam, http.StatusBadRequest)
		return "", false
	}
	return artType, true
}

func parseType(s string) (artifact.Type, bool) {
	switch artifact.Type(strings.ToLower(s)) {
	case artifact.TypeModel:
		return artifact.TypeModel, true
	case artifact.TypeDataset:
		return artifact.TypeDataset, true
	case artifact.TypeCode:
		return artifact.TypeCode, true
	default:
		return "", false
	}
}

// intQueryParam parses an optional integer query parameter, writing a 400
// response when the value is not a number.
func intQueryParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		common.WriteErrorResponse(w, "Query parameter "+name+" must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func metadataOf(arts []artifact.Artifact) []artifact.Metadata {
	mds := make([]artifact.Metadata, 0, len(arts))
	for i := range arts {
		mds = append(mds, arts[i].Metadata)
	}
	return mds
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	common.WriteJSONResponse(w, data, statusCode)
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	common.WriteErrorResponse(w, message, statusCode)
}

// writeServiceError maps service errors onto HTTP status codes.
func (rr *Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArtifact):
		rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		rr.writeErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrDisqualified):
		rr.writeErrorResponse(w, err.Error(), http.StatusFailedDependency)
	case errors.Is(err, service.ErrNotImplemented):
		rr.writeErrorResponse(w, err.Error(), http.StatusNotImplemented)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
