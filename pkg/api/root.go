package api

import (
	"bmcd/pkg/response"
	"bmcd/pkg/transport"
)

// Version is stamped by the app at startup for the service root and
// manager resources.
var Version = "dev"

func serviceRoot(req *transport.Request, res *response.Response) {
	res.SetJSON(map[string]any{
		"@odata.id":      "/redfish/v1",
		"@odata.type":    "#ServiceRoot.v1_11_0.ServiceRoot",
		"Id":             "RootService",
		"Name":           "Root Service",
		"RedfishVersion": "1.11.0",
		"Chassis":        map[string]any{"@odata.id": "/redfish/v1/Chassis"},
		"Managers":       map[string]any{"@odata.id": "/redfish/v1/Managers"},
	})
	res.HandleNotModified()
	res.End()
}

func manager(req *transport.Request, res *response.Response) {
	res.SetJSON(map[string]any{
		"@odata.id":       "/redfish/v1/Managers/bmc",
		"@odata.type":     "#Manager.v1_14_0.Manager",
		"Id":              "bmc",
		"Name":            "OpenBmc Manager",
		"ManagerType":     "BMC",
		"FirmwareVersion": Version,
		"Status":          map[string]any{"State": "Enabled", "Health": "OK"},
		"LogServices": map[string]any{
			"@odata.id": "/redfish/v1/Managers/bmc/LogServices/EventLog",
		},
	})
	res.HandleNotModified()
	res.End()
}
