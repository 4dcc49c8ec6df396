package httpapi

import (
	"net/http"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
)

var errUnauthorized = apierr.ErrUnauthorized

// adminPrivilege is the privilege level at which an update/delete
// request is allowed to bypass the author-scoping an ordinary user is
// held to.
const adminPrivilege = domain.PrivilegeAdmin

func errBadRequest(detail string) error {
	return &apierr.BadRequestDetail{Detail: detail}
}

// writeErr renders a service error through the §7 status-code mapping
// (internal/apierr.Render) using the shared JSON envelope.
func writeErr(w http.ResponseWriter, err error) {
	status, message := apierr.Render(err)
	if status == http.StatusNoContent {
		httputil.NoContent(w)
		return
	}
	httputil.Error(w, status, message)
}
