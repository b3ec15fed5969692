package api

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"

	"bmcd/pkg/response"
	"bmcd/pkg/transport"
)

// fastRoute matches one method+pattern pair. Pattern segments wrapped
// in braces capture into the RequestCtx user values, which the
// transport adapter exposes as Request.Vars.
type fastRoute struct {
	method   string
	segments []string
	handler  fasthttp.RequestHandler
}

func newFastRoute(method, pattern string, h fasthttp.RequestHandler) fastRoute {
	return fastRoute{
		method:   method,
		segments: strings.Split(strings.Trim(pattern, "/"), "/"),
		handler:  h,
	}
}

func (rt fastRoute) match(ctx *fasthttp.RequestCtx, segs []string) bool {
	if len(segs) != len(rt.segments) {
		return false
	}
	for i, want := range rt.segments {
		if strings.HasPrefix(want, "{") && strings.HasSuffix(want, "}") {
			continue
		}
		if segs[i] != want {
			return false
		}
	}
	// second pass binds vars only after a full match
	for i, want := range rt.segments {
		if strings.HasPrefix(want, "{") && strings.HasSuffix(want, "}") {
			ctx.SetUserValue(want[1:len(want)-1], segs[i])
		}
	}
	return true
}

// FastHandler returns the management API dispatcher for the fasthttp
// transport. It serves the same routes as Handler.
func FastHandler() fasthttp.RequestHandler {
	routes := []fastRoute{
		newFastRoute(http.MethodGet, "/redfish/v1", transport.FastHTTP(serviceRoot)),
		newFastRoute(http.MethodGet, "/redfish/v1/Managers/bmc", transport.FastHTTP(manager)),

		newFastRoute(http.MethodGet, "/redfish/v1/Chassis", transport.FastHTTP(chassisCollection)),
		newFastRoute(http.MethodGet, "/redfish/v1/Chassis/{chassisID}", transport.FastHTTP(chassisResource)),
		newFastRoute(http.MethodGet, "/redfish/v1/Chassis/{chassisID}/FabricAdapters", transport.FastHTTP(fabricAdapterCollection)),
		newFastRoute(http.MethodGet, "/redfish/v1/Chassis/{chassisID}/FabricAdapters/{adapterID}", transport.FastHTTP(fabricAdapter)),
		newFastRoute(http.MethodGet, "/redfish/v1/Chassis/{chassisID}/Sensors", transport.FastHTTP(sensorCollection)),
		newFastRoute(http.MethodGet, "/redfish/v1/Chassis/{chassisID}/Sensors/{sensorID}", transport.FastHTTP(sensorResource)),

		newFastRoute(http.MethodGet, "/redfish/v1/Managers/bmc/LogServices/EventLog", transport.FastHTTP(eventLogService)),
		newFastRoute(http.MethodGet, "/redfish/v1/Managers/bmc/LogServices/EventLog/Entries", transport.FastHTTP(eventLogEntries)),
		newFastRoute(http.MethodGet, "/redfish/v1/Managers/bmc/LogServices/EventLog/Entries/{entryID}", transport.FastHTTP(eventLogEntry)),
		newFastRoute(http.MethodPost, "/redfish/v1/Managers/bmc/LogServices/EventLog/Actions/LogService.ClearLog", transport.FastHTTP(eventLogClear)),
		newFastRoute(http.MethodGet, "/redfish/v1/Managers/bmc/LogServices/EventLog/Export", transport.FastHTTPStream(eventLogExport)),
	}
	notFound := transport.FastHTTP(func(req *transport.Request, res *response.Response) {
		resourceNotFound(res, "Resource", req.Path)
	})

	return func(ctx *fasthttp.RequestCtx) {
		segs := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
		method := string(ctx.Method())
		for _, rt := range routes {
			if rt.method == method && rt.match(ctx, segs) {
				rt.handler(ctx)
				return
			}
		}
		notFound(ctx)
	}
}
