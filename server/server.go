// Package server implements the HTTP front end of the RPAL interpreter: a
// REST API that interprets programs on demand and keeps a shareable history
// of past runs.
//
//   - GET    /            - service info.
//   - GET    /health      - health check.
//   - POST   /interpret   - interpret a program without storing it.
//   - POST   /runs        - interpret a program and store the run; returns
//     the claim token needed to delete it later.
//   - GET    /runs        - list stored runs, newest first.
//   - GET    /runs/{id}   - fetch one stored run.
//   - DELETE /runs/{id}   - delete a run; requires its claim token in the
//     Authorization header as a Bearer token.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	rpal "github.com/Pratheep-Srikones/rpal-online"
	"github.com/Pratheep-Srikones/rpal-online/internal/version"
	"github.com/Pratheep-Srikones/rpal-online/server/dao"
	"github.com/Pratheep-Srikones/rpal-online/server/result"
	"github.com/Pratheep-Srikones/rpal-online/server/serr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParamKeyID is the chi URL parameter that holds a run ID.
const URLParamKeyID = "id"

// Server is an RPAL interpreter server. Create one with New; the zero value
// is not usable.
type Server struct {
	router      chi.Router
	db          dao.Store
	secret      []byte
	unauthDelay time.Duration
	maxSteps    int
}

// New creates a Server from the given config. Any unset config values are
// filled with defaults before validation.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	s := &Server{
		db:          db,
		secret:      cfg.TokenSecret,
		unauthDelay: cfg.UnauthDelay(),
		maxSteps:    cfg.MaxSteps,
	}

	r := chi.NewRouter()
	r.Get("/", s.endpoint(s.epInfo))
	r.Get("/health", s.endpoint(s.epInfo))
	r.Head("/health", s.endpoint(s.epInfo))
	r.Post("/interpret", s.endpoint(s.epInterpret))
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.endpoint(s.epCreateRun))
		r.Get("/", s.endpoint(s.epListRuns))
		r.Get("/{"+URLParamKeyID+"}", s.endpoint(s.epGetRun))
		r.Delete("/{"+URLParamKeyID+"}", s.endpoint(s.epDeleteRun))
	})
	s.router = r

	return s, nil
}

// Router returns the server's HTTP handler, for mounting or testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's persistence resources.
func (s *Server) Close() error {
	return s.db.Close()
}

// ServeForever begins listening on the given address and port. If address is
// blank, "localhost" is used; if port is 0, 8080 is used. This function does
// not return until the server is stopped.
func (s *Server) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port == 0 {
		port = 8080
	}

	listenAddr := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  Listening on %s", listenAddr)
	return http.ListenAndServe(listenAddr, s.router)
}

// EndpointFunc is the signature of a server endpoint.
type EndpointFunc func(req *http.Request) result.Result

// endpoint wraps an EndpointFunc into an http.HandlerFunc, adding panic
// recovery, response logging, and the anti-flood delay on unauthorized and
// errored responses.
func (s *Server) endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)

		r := ep(req)

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			// if it's one of these statuses the client is either
			// unauthorized or has hit a server bug; deprioritize such
			// requests by sleeping before answering.
			time.Sleep(s.unauthDelay)
		}

		logHTTPResponse(req, r)
		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if p := recover(); p != nil {
		log.Printf("ERROR %s %s: panic: %v", req.Method, req.URL.Path, p)
		result.InternalServerError("panic: %v", p).WriteResponse(w)
	}
}

func logHTTPResponse(req *http.Request, r result.Result) {
	level := "INFO "
	if r.IsErr {
		level = "ERROR"
	}
	log.Printf("%s %s %s: HTTP-%d: %s", level, req.Method, req.URL.Path, r.Status, r.InternalMsg)
}

func (s *Server) epInfo(req *http.Request) result.Result {
	resp := InfoResponse{
		Status:  "ok",
		Message: "RPAL interpreter service is running",
		Version: version.ServerCurrent,
	}
	return result.OK(resp, "info requested")
}

// interpretBody runs the interpreter over a parsed request body and shapes
// the outcome into an InterpretResponse. Interpretation failures are part of
// the response, not an HTTP error.
func (s *Server) interpretBody(body InterpretRequest) InterpretResponse {
	interp := rpal.Interpreter{MaxSteps: s.maxSteps}

	res, err := interp.EvalOpts(body.Code, rpal.Options{AST: body.AST, ST: body.ST})
	resp := InterpretResponse{
		Output:   res.Output,
		Warnings: res.Warnings,
		AST:      res.AST,
		ST:       res.ST,
	}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = res.Value.Format()
	}
	return resp
}

func (s *Server) epInterpret(req *http.Request) result.Result {
	var body InterpretRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%v", err)
	}
	if body.Code == "" {
		return result.BadRequest("code: property is empty or missing from request", "empty code")
	}

	resp := s.interpretBody(body)
	if resp.Error != "" {
		return result.OK(resp, "interpretation failed: %s", resp.Error)
	}
	return result.OK(resp, "interpreted %d bytes of source", len(body.Code))
}

func (s *Server) epCreateRun(req *http.Request) result.Result {
	var body InterpretRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%v", err)
	}
	if body.Code == "" {
		return result.BadRequest("code: property is empty or missing from request", "empty code")
	}

	resp := s.interpretBody(body)

	run, err := s.db.Runs().Create(req.Context(), dao.Run{
		Code:   body.Code,
		Output: resp.Output,
		Result: resp.Result,
		Error:  resp.Error,
	})
	if err != nil {
		return result.InternalServerError("store run: %v", err)
	}

	claim, err := generateClaimToken(s.secret, run.ID)
	if err != nil {
		return result.InternalServerError("issue claim token: %v", err)
	}

	return result.Created(CreateRunResponse{
		RunModel: daoRunToModel(run),
		Claim:    claim,
	}, "run %s stored", run.ID)
}

func (s *Server) epListRuns(req *http.Request) result.Result {
	runs, err := s.db.Runs().GetAll(req.Context())
	if err != nil {
		return result.InternalServerError("list runs: %v", err)
	}

	resp := RunsListResponse{Runs: make([]RunModel, len(runs))}
	for i := range runs {
		resp.Runs[i] = daoRunToModel(runs[i])
	}
	return result.OK(resp, "listed %d runs", len(runs))
}

func (s *Server) epGetRun(req *http.Request) result.Result {
	id, err := getURLParam(req, URLParamKeyID, uuid.Parse)
	if err != nil {
		return result.BadRequest("id: not a valid run ID", "%v", err)
	}

	run, err := s.db.Runs().GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return result.NotFound("run %s does not exist", id)
		}
		return result.InternalServerError("get run %s: %v", id, err)
	}

	return result.OK(daoRunToModel(run), "retrieved run %s", id)
}

func (s *Server) epDeleteRun(req *http.Request) result.Result {
	id, err := getURLParam(req, URLParamKeyID, uuid.Parse)
	if err != nil {
		return result.BadRequest("id: not a valid run ID", "%v", err)
	}

	tok, err := getBearerToken(req)
	if err != nil {
		return result.Unauthorized("", "%v", err)
	}
	claimedID, err := validateClaimToken(s.secret, tok)
	if err != nil {
		return result.Unauthorized("", "%v", err)
	}
	if claimedID != id {
		return result.Unauthorized("The provided claim token does not cover that run", "token covers %s, not %s", claimedID, id)
	}

	if _, err := s.db.Runs().Delete(req.Context(), id); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return result.NotFound("run %s does not exist", id)
		}
		return result.InternalServerError("delete run %s: %v", id, err)
	}

	return result.NoContent("deleted run %s", id)
}

func getURLParam[E any](req *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(req, key)
	if valStr == "" {
		// either it does not exist or it is empty; treat both the same
		return val, fmt.Errorf("parameter %q does not exist", key)
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}
