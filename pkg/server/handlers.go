package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/buildinfo"
	"github.com/matzehuels/codescope/pkg/cache"
	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/report"
	"github.com/matzehuels/codescope/pkg/source/npm"
)

// Response headers set on report responses.
const (
	ReportKeyHeader = "X-Report-Key"
	CacheHeader     = "X-Cache"
)

// AnalyzeRequest is the body of POST /v1/analyze. Manifest takes
// precedence over PackageJSON; Lockfile is only read with PackageJSON.
type AnalyzeRequest struct {
	analysis.Input
	PackageJSON json.RawMessage `json:"package_json,omitempty"`
	Lockfile    json.RawMessage `json:"lockfile,omitempty"`
}

// AnalyzeResponse is the JSON response of the report routes.
type AnalyzeResponse struct {
	Key      string           `json:"key"`
	CacheHit bool             `json:"cache_hit"`
	Report   *analysis.Report `json:"report"`
}

func (req *AnalyzeRequest) input() (analysis.Input, error) {
	in := req.Input
	if in.Manifest != nil {
		return in, nil
	}
	if len(req.PackageJSON) == 0 {
		return in, errors.New(errors.ErrCodeInvalidInput, "request needs a manifest or package_json")
	}
	pkg, err := npm.ParsePackageJSON(req.PackageJSON)
	if err != nil {
		return in, err
	}
	in.Manifest = pkg.Manifest("root")
	if len(req.Lockfile) > 0 {
		lock, err := npm.ParseLockfile(req.Lockfile)
		if err != nil {
			return in, err
		}
		in.Manifest.Packages = lock.Manifests()
	}
	return in, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			writeErr(w, err)
			return
		}
		writeErr(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	in, err := req.input()
	if err != nil {
		writeErr(w, err)
		return
	}

	ctx := r.Context()
	if format.NeedsGraph() {
		key, err := s.runner.Key(in)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !refresh {
			if data, ok := s.cachedExport(r, key, format); ok {
				writeRendered(w, format, key, true, data)
				return
			}
		}
		// A graph export needs the graph, which cached reports do not keep.
		out, err := s.runner.Run(ctx, in, analysis.RunOptions{Refresh: true})
		if err != nil {
			writeErr(w, err)
			return
		}
		var buf bytes.Buffer
		if err := report.Render(ctx, &buf, out.Result, out.Report, format, report.DOTOptions{Sizes: true}); err != nil {
			writeErr(w, err)
			return
		}
		s.storeExport(r, key, format, buf.Bytes())
		writeRendered(w, format, key, false, buf.Bytes())
		return
	}

	out, err := s.runner.Run(ctx, in, analysis.RunOptions{Refresh: refresh})
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeReport(w, out.Report, format, out.CacheKey, out.CacheHit)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	key := chi.URLParam(r, "key")

	if format.NeedsGraph() {
		data, ok := s.cachedExport(r, key, format)
		if !ok {
			writeErr(w, errors.New(errors.ErrCodeNotFound, "no %s export cached for %s", format, key))
			return
		}
		writeRendered(w, format, key, true, data)
		return
	}

	rep, ok := s.runner.Lookup(r.Context(), key)
	if !ok {
		writeErr(w, errors.New(errors.ErrCodeNotFound, "no report cached for %s", key))
		return
	}
	s.writeReport(w, rep, format, key, true)
}

func (s *Server) writeReport(w http.ResponseWriter, rep *analysis.Report, format report.Format, key string, hit bool) {
	if format == report.FormatJSON {
		setReportHeaders(w, key, hit)
		writeJSON(w, http.StatusOK, AnalyzeResponse{Key: key, CacheHit: hit, Report: rep})
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, rep, format); err != nil {
		writeErr(w, err)
		return
	}
	writeRendered(w, format, key, hit, buf.Bytes())
}

func (s *Server) cachedExport(r *http.Request, key string, format report.Format) ([]byte, bool) {
	data, ok, err := s.cache().Get(r.Context(), s.exportKey(key, format))
	if err != nil {
		s.logger.Warn("export cache read failed", "error", err)
		return nil, false
	}
	return data, ok
}

func (s *Server) storeExport(r *http.Request, key string, format report.Format, data []byte) {
	if err := s.cache().Set(r.Context(), s.exportKey(key, format), data, s.runner.TTL); err != nil {
		s.logger.Warn("could not cache export", "format", format, "error", err)
	}
}

func (s *Server) exportKey(reportKey string, format report.Format) string {
	return s.runner.Keyer.ExportKey(reportKey, cache.ExportKeyOpts{Format: string(format)})
}

func queryFormat(r *http.Request) (report.Format, error) {
	q := r.URL.Query().Get("format")
	if q == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(q)
}

func setReportHeaders(w http.ResponseWriter, key string, hit bool) {
	w.Header().Set(ReportKeyHeader, key)
	if hit {
		w.Header().Set(CacheHeader, "HIT")
	} else {
		w.Header().Set(CacheHeader, "MISS")
	}
}

func writeRendered(w http.ResponseWriter, format report.Format, key string, hit bool, data []byte) {
	setReportHeaders(w, key, hit)
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
