package api

import (
	"errors"
	"net/http"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
)

// mapRepositoryError maps incidentdb errors to HTTP status codes, grounded
// on the teacher's api.mapServiceError idiom.
func mapRepositoryError(err error) (int, string) {
	if errors.Is(err, incidentdb.ErrNotFound) {
		return http.StatusNotFound, "incident not found"
	}
	return http.StatusInternalServerError, "internal server error"
}
