// Package httpapi implements a small read-only HTTP inspection surface over
// a running set of queries: GET /queries/{name}/current and
// GET /queries/{name}/best, each returning the operator's latest tick's
// output relation as JSON. Grounded on goProbe's pkg/api/goprobe/server
// package: a gin router wrapped by huma for OpenAPI-documented operations,
// huma.Register used per endpoint, Input/Output structs carrying path
// parameters and a typed Body (see status_api_ops.go).
package httpapi

import (
	"context"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/stream"
	"github.com/streampref/streampref/value"
)

// BestSource is a stream.Operator that can additionally report its best
// (dominant) set, satisfied by any operator built over a
// hierarchy.Hierarchy or a prefop-driven best/top-k wrapper.
type BestSource interface {
	stream.Operator
	BestRecords() []record.Record
}

// Registry maps query names to the operators serving them. Server reads it
// under no lock: callers register every query before serving Handler and never
// mutate it concurrently with a running server, matching the single
// goroutine tick loop of spec.md §5.
type Registry struct {
	queries map[string]stream.Operator
	order   []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{queries: make(map[string]stream.Operator)}
}

// Register adds or replaces the operator serving name.
func (r *Registry) Register(name string, op stream.Operator) {
	if _, exists := r.queries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.queries[name] = op
}

// Names returns the registered query names, sorted.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Server wraps a gin engine and huma API exposing Registry's queries.
type Server struct {
	registry *Registry
	router   *gin.Engine
	api      huma.API
}

// NewServer builds a Server over registry, registering its operations.
func NewServer(registry *Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := humagin.New(router, huma.DefaultConfig("streampref", "0.1.0"))

	s := &Server{registry: registry, router: router, api: api}
	s.registerQueryAPI()
	return s
}

// Handler returns the underlying http.Handler, for use with http.Server or
// httptest.
func (s *Server) Handler() http.Handler { return s.router }

var queryTags = []string{"Queries"}

func (s *Server) registerQueryAPI() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-queries",
		Method:      http.MethodGet,
		Path:        "/queries",
		Summary:     "List registered query names",
		Tags:        queryTags,
	}, s.listQueriesHandler())

	huma.Register(s.api, huma.Operation{
		OperationID: "get-query-current",
		Method:      http.MethodGet,
		Path:        "/queries/{name}/current",
		Summary:     "Get a query's current output relation",
		Tags:        queryTags,
	}, s.getCurrentHandler())

	huma.Register(s.api, huma.Operation{
		OperationID: "get-query-best",
		Method:      http.MethodGet,
		Path:        "/queries/{name}/best",
		Summary:     "Get a query's current best (dominant) records",
		Tags:        queryTags,
	}, s.getBestHandler())
}

// ListQueriesOutput is the body of GET /queries.
type ListQueriesOutput struct {
	Body struct {
		Queries []string `json:"queries"`
	}
}

func (s *Server) listQueriesHandler() func(ctx context.Context, input *struct{}) (*ListQueriesOutput, error) {
	return func(ctx context.Context, input *struct{}) (*ListQueriesOutput, error) {
		out := &ListQueriesOutput{}
		out.Body.Queries = s.registry.Names()
		return out, nil
	}
}

// QueryNameInput is the path-parameter input shared by the per-query
// endpoints.
type QueryNameInput struct {
	Name string `path:"name" doc:"Registered query name"`
}

// RelationOutput is the body of the per-query inspection endpoints: one row
// per record, attributes rendered by name.
type RelationOutput struct {
	Body struct {
		Timestamp int64               `json:"timestamp"`
		Records   []map[string]string `json:"records"`
	}
}

func (s *Server) getCurrentHandler() func(ctx context.Context, input *QueryNameInput) (*RelationOutput, error) {
	return func(ctx context.Context, input *QueryNameInput) (*RelationOutput, error) {
		op, ok := s.registry.queries[input.Name]
		if !ok {
			return nil, huma.Error404NotFound("unknown query: " + input.Name)
		}
		out := &RelationOutput{}
		out.Body.Timestamp = op.GetTimestamp()
		recs, err := renderRecords(op.GetCurrentList())
		if err != nil {
			return nil, huma.Error500InternalServerError("rendering records", err)
		}
		out.Body.Records = recs
		return out, nil
	}
}

func (s *Server) getBestHandler() func(ctx context.Context, input *QueryNameInput) (*RelationOutput, error) {
	return func(ctx context.Context, input *QueryNameInput) (*RelationOutput, error) {
		op, ok := s.registry.queries[input.Name]
		if !ok {
			return nil, huma.Error404NotFound("unknown query: " + input.Name)
		}
		best, ok := op.(BestSource)
		if !ok {
			return nil, huma.Error501NotImplemented("query " + input.Name + " has no best-set support")
		}
		out := &RelationOutput{}
		out.Body.Timestamp = op.GetTimestamp()
		recs, err := renderRecords(best.BestRecords())
		if err != nil {
			return nil, huma.Error500InternalServerError("rendering records", err)
		}
		out.Body.Records = recs
		return out, nil
	}
}

func renderRecords(recs []record.Record) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(recs))
	for _, r := range recs {
		row := make(map[string]string)
		err := r.Iterate(func(a record.Attribute, v value.Value) error {
			row[a.Key()] = v.String()
			return nil
		})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
