package web

import (
	"bytes"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fulfillment/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport writes the current page of the mount, with the live filter
// applied, as a spreadsheet download. A mount that has not fetched yet is
// loaded from the request's query first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	def, ok := resolvePage(w, r)
	if !ok {
		return
	}

	if err := s.exports.Acquire(r.Context()); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer s.exports.Release()

	sess := s.mounts.session(w, r)
	mt := s.mounts.mount(sess, def, s.logger)
	defer mt.mu.Unlock()

	logger := logging.WithFields(r.Context(),
		"page", def.Info.Key,
		"session", sess.id,
		"export_id", uuid.NewString(),
	)
	start := time.Now()

	if !mt.fetched {
		u := &url.URL{Path: def.Info.Path, RawQuery: r.URL.RawQuery}
		if err := s.load(r.Context(), def, sess, mt, u); err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
	}

	var buf bytes.Buffer
	name, err := mt.table.Export(&buf, s.props(def, sess, mt))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("export write failed", "file", name, "error", err)
		return
	}

	logger.Info("export complete",
		"file", name,
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
