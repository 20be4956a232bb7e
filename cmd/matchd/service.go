package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
	"github.com/Comcast/matchbox/storage"
	"github.com/Comcast/matchbox/util"

	"github.com/google/uuid"
)

// Service holds decision tables and answers Requests.
type Service struct {
	Storage      storage.Storage
	Interpreters map[string]core.Interpreter
	Log          *util.Logger

	cache *SpecCache
}

func NewService(st storage.Storage, interpreters map[string]core.Interpreter, cache *SpecCache) *Service {
	if cache == nil {
		cache = NewSpecCache(0, 32)
	}
	return &Service{
		Storage:      st,
		Interpreters: interpreters,
		cache:        cache,
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	s.Log.Logf(format, args...)
}

// compile parses and compiles a spec source.  The name overrides
// whatever name the source has.
func (s *Service) compile(ctx context.Context, name string, src []byte) (*core.Spec, error) {
	spec, err := core.ParseSpec(src)
	if err != nil {
		return nil, err
	}
	spec.Name = name
	if _, err = spec.SetId(); err != nil {
		return nil, err
	}
	if err = spec.Compile(ctx, s.Interpreters, true); err != nil {
		return nil, fmt.Errorf("%w with '%s'", err, name)
	}
	return spec, nil
}

// PutSpec compiles, stores, and caches the given spec source.
//
// A source that doesn't compile isn't stored.
func (s *Service) PutSpec(ctx context.Context, name string, src []byte) (*core.Spec, error) {
	if name == "" {
		return nil, errors.New("spec needs a name")
	}
	spec, err := s.compile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	if err = s.Storage.PutSpec(ctx, name, src); err != nil {
		return nil, err
	}
	if err = s.cache.Put(name, spec); err != nil {
		return nil, err
	}
	s.logf("stored and compiled %s [%s]", name, spec.Id)
	return spec, nil
}

// GetSpec returns the compiled spec, loading it from storage if
// it's not cached.
func (s *Service) GetSpec(ctx context.Context, name string) (*core.Spec, error) {
	if u := s.cache.Get(name); u != nil {
		return u.Spec(), nil
	}
	src, err := s.Storage.GetSpec(ctx, name)
	if err != nil {
		return nil, err
	}
	spec, err := s.compile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Put(name, spec); err != nil {
		return nil, err
	}
	s.logf("loaded %s [%s]", name, spec.Id)
	return spec, nil
}

// GetSpecSource returns the spec as it was stored.
func (s *Service) GetSpecSource(ctx context.Context, name string) ([]byte, error) {
	return s.Storage.GetSpec(ctx, name)
}

func (s *Service) RemSpec(ctx context.Context, name string) error {
	s.cache.Rem(name)
	return s.Storage.RemSpec(ctx, name)
}

func (s *Service) ListSpecs(ctx context.Context) ([]string, error) {
	return s.Storage.ListSpecs(ctx)
}

// Decide processes the Request.
//
// Problems are reported in the Response's Err.  The returned error
// is the same problem for callers that want to pick a status.
func (s *Service) Decide(ctx context.Context, r *Request) (*Response, error) {
	if r.Id == "" {
		r.Id = uuid.NewString()
	}
	resp := &Response{
		Id:       r.Id,
		Spec:     r.Spec,
		Decision: r.Decision,
	}
	fail := func(err error) (*Response, error) {
		resp.Err = err.Error()
		s.logf("request %s failed: %v", r.Id, err)
		return resp, err
	}

	if len(r.Value) == 0 {
		return fail(&BadRequest{"no value"})
	}
	v, err := match.ParseValueJSON(r.Value)
	if err != nil {
		return fail(&BadRequest{err.Error()})
	}

	spec, err := s.GetSpec(ctx, r.Spec)
	if err != nil {
		return fail(err)
	}
	resp.SpecId = spec.Id

	d, err := spec.Decide(ctx, r.Decision, v, r.Props)
	if d != nil {
		resp.Result = d.Result
		if r.Trace {
			resp.Traces = d.Traces
		}
	}
	if err != nil {
		return fail(err)
	}

	s.logf("request %s: %s/%s arm %d", r.Id, r.Spec, r.Decision, d.Result.Arm)

	return resp, nil
}

// BadRequest is a problem with a Request itself.
type BadRequest struct {
	Msg string
}

func (e *BadRequest) Error() string {
	return "bad request: " + e.Msg
}
