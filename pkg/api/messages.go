package api

import (
	"net/http"

	"bmcd/pkg/response"
)

// redfishError fills res with a Redfish-shaped error payload and ends
// it. All error paths in this package terminate through here so the
// one-shot completion contract holds on failures too.
func redfishError(res *response.Response, status int, code, message string) {
	res.SetStatus(status)
	res.SetJSON(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
	res.End()
}

func resourceNotFound(res *response.Response, resourceType, id string) {
	redfishError(res, http.StatusNotFound, "Base.ResourceMissingAtURI",
		"The requested resource of type "+resourceType+" named "+id+" was not found.")
}

func internalError(res *response.Response) {
	redfishError(res, http.StatusInternalServerError, "Base.InternalError",
		"The request failed due to an internal service error.")
}
