// Package api exposes the Redfish-style management resources. Handlers
// are written against the response lifecycle core; the transport
// adapter owns serialization and conditional-GET precondition capture.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"bmcd/pkg/transport"
)

// Handler returns the management API router.
func Handler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/redfish/v1", transport.NetHTTP(serviceRoot)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/", transport.NetHTTP(serviceRoot)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Managers/bmc", transport.NetHTTP(manager)).Methods(http.MethodGet)

	r.Handle("/redfish/v1/Chassis", transport.NetHTTP(chassisCollection)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Chassis/{chassisID}", transport.NetHTTP(chassisResource)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Chassis/{chassisID}/FabricAdapters", transport.NetHTTP(fabricAdapterCollection)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Chassis/{chassisID}/FabricAdapters/{adapterID}", transport.NetHTTP(fabricAdapter)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Chassis/{chassisID}/Sensors", transport.NetHTTP(sensorCollection)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Chassis/{chassisID}/Sensors/{sensorID}", transport.NetHTTP(sensorResource)).Methods(http.MethodGet)

	r.Handle("/redfish/v1/Managers/bmc/LogServices/EventLog", transport.NetHTTP(eventLogService)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Managers/bmc/LogServices/EventLog/Entries", transport.NetHTTP(eventLogEntries)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Managers/bmc/LogServices/EventLog/Entries/{entryID}", transport.NetHTTP(eventLogEntry)).Methods(http.MethodGet)
	r.Handle("/redfish/v1/Managers/bmc/LogServices/EventLog/Actions/LogService.ClearLog", transport.NetHTTP(eventLogClear)).Methods(http.MethodPost)
	r.Handle("/redfish/v1/Managers/bmc/LogServices/EventLog/Export", transport.NetHTTPStream(eventLogExport)).Methods(http.MethodGet)

	return r
}
