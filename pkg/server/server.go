package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint"
	"github.com/SAP/stewardci-provenance/pkg/utils"
)

// Enqueuer accepts fingerprint reports for asynchronous ingestion.
type Enqueuer interface {
	Enqueue(report api.FingerprintReport) error
}

// DefaultMaxRequestBytes is the default limit of request body sizes.
const DefaultMaxRequestBytes = 4 << 20

// Server serves the provenance HTTP API.
type Server struct {
	Addr string

	// MaxRequestBytes limits the size of request bodies. Larger requests
	// are rejected with status 413.
	MaxRequestBytes int64

	verifier *fingerprint.Verifier
	resolver fingerprint.Resolver
	records  fingerprint.RecordSource
	ingest   Enqueuer
}

// New creates a Server listening on addr.
func New(addr string, resolver fingerprint.Resolver, records fingerprint.RecordSource, ingest Enqueuer) *Server {
	return &Server{
		Addr:            addr,
		MaxRequestBytes: DefaultMaxRequestBytes,
		verifier: fingerprint.NewVerifier(records, resolver),
		resolver: resolver,
		records:  records,
		ingest:   ingest,
	}
}

// Start serves the API until ctx is closed.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// shutdown server when the context closes
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	klog.FromContext(ctx).V(1).Info("Starting API server", "addr", s.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return stewarderrors.Infra(errors.Wrapf(err, "API server on %q failed", s.Addr))
	}
	return nil
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fingerprints/{digest}", s.getFingerprint)
	mux.HandleFunc("GET /jobs/{job}/builds/{number}/fingerprints", s.getRecord)
	mux.HandleFunc("POST /jobs/{job}/builds/{number}/fingerprints", s.postRecord)
	mux.HandleFunc("POST /verify", s.verify)
	return mux
}

func (s *Server) getFingerprint(w http.ResponseWriter, r *http.Request) {
	digest := r.PathValue("digest")
	entry, ok, err := s.resolver.Resolve(r.Context(), digest)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if !ok {
		writeError(r.Context(), w, stewarderrors.NotFoundf("fingerprint %s", digest))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entry)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	build, err := buildFromPath(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	record, ok, err := s.records.GetFingerprintRecord(r.Context(), build)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if !ok {
		writeError(r.Context(), w, stewarderrors.NotFoundf("fingerprint record of build %s", build))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, record)
}

func (s *Server) postRecord(w http.ResponseWriter, r *http.Request) {
	build, err := buildFromPath(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	record := api.FingerprintRecord{}
	if err := s.decodeBody(w, r, &record); err != nil {
		writeError(r.Context(), w, errors.Wrap(err, "invalid fingerprint record"))
		return
	}
	if err := s.ingest.Enqueue(api.FingerprintReport{Build: build, Record: record}); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusAccepted, api.FingerprintReport{Build: build, Record: record})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var request api.VerifyRequest
	if err := s.decodeBody(w, r, &request); err != nil {
		writeError(r.Context(), w, errors.Wrap(err, "invalid verify request"))
		return
	}

	err := s.verifier.VerifyBuild(r.Context(), api.BuildRef{Job: request.Job, Number: request.Build}, request.FileName)
	if err == nil {
		writeJSON(r.Context(), w, http.StatusOK, api.VerifyResponse{Verified: true})
		return
	}

	kind := fingerprint.FailureKindOf(err)
	status := http.StatusUnprocessableEntity
	if kind == api.FailureKindError {
		status = http.StatusInternalServerError
		klog.FromContext(r.Context()).Error(err, "Verification failed with error")
	}
	writeJSON(r.Context(), w, status, api.VerifyResponse{
		Verified: false,
		Failure:  kind,
		Message:  err.Error(),
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, value interface{}) error {
	body := http.MaxBytesReader(w, r.Body, s.MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(value); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errRequestTooLarge{limit: tooLarge.Limit}
		}
		return stewarderrors.Content(err)
	}
	return nil
}

type errRequestTooLarge struct {
	limit int64
}

func (e errRequestTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

func buildFromPath(r *http.Request) (api.BuildRef, error) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number < 1 {
		return api.BuildRef{}, stewarderrors.Content(errors.Errorf("invalid build number %q", r.PathValue("number")))
	}
	return api.BuildRef{Job: r.PathValue("job"), Number: number}, nil
}

func statusOf(err error) int {
	var tooLarge errRequestTooLarge
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stewarderrors.IsNotFound(err):
		return http.StatusNotFound
	case stewarderrors.GetClass(err) == api.ErrorClassContent:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		klog.FromContext(ctx).Error(err, "Request failed")
	}
	writeJSON(ctx, w, status, api.ErrorResponse{Error: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, value interface{}) {
	body, err := utils.ToJSONString(value)
	if err != nil {
		klog.FromContext(ctx).Error(err, "Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
