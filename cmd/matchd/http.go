package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
	"github.com/Comcast/matchbox/storage"
	. "github.com/Comcast/matchbox/util/testutil"
)

// MaxBody limits request bodies.
var MaxBody int64 = 1 << 20

func statusFor(err error) int {
	var (
		nf  *storage.NotFound
		ud  *core.UnknownDecision
		br  *BadRequest
		ge  *match.GuardError
		bad *core.BadArm
	)
	switch {
	case errors.As(err, &nf), errors.As(err, &ud):
		return http.StatusNotFound
	case errors.As(err, &br), errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &ge):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func complain(w http.ResponseWriter, err error, status int) {
	log.Printf("HTTP error %d: %v", status, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	js := JS(map[string]string{"err": err.Error()})
	w.Write([]byte(js + "\n"))
}

func reply(w http.ResponseWriter, x interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(x); err != nil {
		log.Printf("HTTP reply error: %v", err)
	}
}

// Handler returns the HTTP API:
//
//	GET    /specs                      list spec names
//	PUT    /specs/NAME                 store a spec (YAML or JSON)
//	GET    /specs/NAME                 get a spec's source
//	DELETE /specs/NAME                 remove a spec
//	GET    /specs/NAME/coverage        exhaustiveness report
//	POST   /decide/SPEC/DECISION       decide a value (JSON body)
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/specs", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			complain(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
			return
		}
		names, err := s.ListSpecs(r.Context())
		if err != nil {
			complain(w, err, statusFor(err))
			return
		}
		reply(w, names)
	}))

	mux.Handle("/specs/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/specs/")
		coverage := false
		if strings.HasSuffix(name, "/coverage") {
			name = strings.TrimSuffix(name, "/coverage")
			coverage = true
		}
		if name == "" || strings.Contains(name, "/") {
			complain(w, &BadRequest{"bad spec name"}, http.StatusBadRequest)
			return
		}

		switch {
		case coverage && r.Method == http.MethodGet:
			spec, err := s.GetSpec(r.Context(), name)
			if err != nil {
				complain(w, err, statusFor(err))
				return
			}
			cov, err := spec.Exhaustiveness()
			if err != nil {
				complain(w, err, statusFor(err))
				return
			}
			reply(w, cov)

		case coverage:
			complain(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)

		case r.Method == http.MethodPut:
			src, err := io.ReadAll(io.LimitReader(r.Body, MaxBody))
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			spec, err := s.PutSpec(r.Context(), name, src)
			if err != nil {
				status := statusFor(err)
				if status == http.StatusInternalServerError {
					// Most likely a parse error.
					status = http.StatusBadRequest
				}
				complain(w, err, status)
				return
			}
			reply(w, map[string]string{"name": spec.Name, "id": spec.Id})

		case r.Method == http.MethodGet:
			src, err := s.GetSpecSource(r.Context(), name)
			if err != nil {
				complain(w, err, statusFor(err))
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(src)

		case r.Method == http.MethodDelete:
			if err := s.RemSpec(r.Context(), name); err != nil {
				complain(w, err, statusFor(err))
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			complain(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/decide/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			complain(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
			return
		}
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/decide/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			complain(w, &BadRequest{"want /decide/SPEC/DECISION"}, http.StatusBadRequest)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBody))
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		req := &Request{
			Id:       q.Get("id"),
			Spec:     parts[0],
			Decision: parts[1],
			Value:    body,
			Trace:    q.Get("trace") == "true",
		}
		if ps := q.Get("props"); ps != "" {
			if err := json.Unmarshal([]byte(ps), &req.Props); err != nil {
				complain(w, &BadRequest{"bad props: " + err.Error()}, http.StatusBadRequest)
				return
			}
		}

		resp, err := s.Decide(r.Context(), req)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusFor(err))
			json.NewEncoder(w).Encode(resp)
			return
		}
		reply(w, resp)
	}))

	return mux
}
