package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	apperrors "github.com/berkaykaya07/BerkayKayaCase/pkg/errors"
)

// mapCatalogError translates the catalog error taxonomy into transport
// errors. An upstream 404 for a specific resource surfaces as not found;
// everything else the remote catalog can produce is a bad gateway.
func mapCatalogError(err error, resource, id string) error {
	if srvErr, ok := catalog.AsServerError(err); ok {
		if srvErr.StatusCode == http.StatusNotFound && id != "" {
			return apperrors.NotFound(resource, id)
		}
		return apperrors.Upstream(err)
	}

	switch {
	case errors.Is(err, catalog.ErrInvalidURL):
		return apperrors.Internal(err)
	case errors.Is(err, catalog.ErrNetwork),
		errors.Is(err, catalog.ErrInvalidResponse),
		errors.Is(err, catalog.ErrDecoding),
		errors.Is(err, catalog.ErrNoData):
		return apperrors.Upstream(err)
	}
	return err
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
