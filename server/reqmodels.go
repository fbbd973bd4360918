package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Pratheep-Srikones/rpal-online/server/dao"
	"github.com/Pratheep-Srikones/rpal-online/server/serr"
	"github.com/Pratheep-Srikones/rpal-online/syntax"
)

// InterpretRequest is the body of POST /interpret and POST /runs.
type InterpretRequest struct {
	// Code is the RPAL source text to interpret.
	Code string `json:"code"`

	// AST requests a dump of the parse tree in the response.
	AST bool `json:"ast"`

	// ST requests a dump of the standardized tree in the response.
	ST bool `json:"st"`
}

// InterpretResponse is the body returned by POST /interpret. Interpretation
// failures are reported in-band via the Error member, matching the behavior
// of a successful HTTP exchange whose program happened to be bad.
type InterpretResponse struct {
	Result   string       `json:"result"`
	Output   string       `json:"output"`
	Error    string       `json:"error,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	AST      *syntax.Node `json:"ast,omitempty"`
	ST       *syntax.Node `json:"st,omitempty"`
}

// RunModel is the API representation of a stored run.
type RunModel struct {
	ID      string    `json:"id"`
	Code    string    `json:"code"`
	Output  string    `json:"output"`
	Result  string    `json:"result"`
	Error   string    `json:"error,omitempty"`
	Created time.Time `json:"created"`
}

// CreateRunResponse is the body returned by POST /runs. Claim is the token
// that must be presented to delete the run later.
type CreateRunResponse struct {
	RunModel

	Claim string `json:"claim"`
}

// RunsListResponse is the body returned by GET /runs.
type RunsListResponse struct {
	Runs []RunModel `json:"runs"`
}

// InfoResponse is the body returned by GET / and GET /health.
type InfoResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

func daoRunToModel(run dao.Run) RunModel {
	return RunModel{
		ID:      run.ID.String(),
		Code:    run.Code,
		Output:  run.Output,
		Result:  run.Result,
		Error:   run.Error,
		Created: run.Created,
	}
}

// parseJSON parses the request body of req as JSON into the value pointed to
// by target.
func parseJSON(req *http.Request, target interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return serr.New("request content-type is not application/json", serr.ErrBodyUnmarshal)
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return serr.New("could not read request body", err, serr.ErrBodyUnmarshal)
	}
	defer req.Body.Close()

	if err := json.Unmarshal(bodyData, target); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}
