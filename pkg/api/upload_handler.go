package api

import (
	"net/http"

	"github.com/etm-murmansk/site/pkg/httputil"
)

// upload handles POST upload
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	fh, err := s.uploads.FileFromRequest(w, r)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	res, err := s.uploads.Save(r.Context(), fh)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}
