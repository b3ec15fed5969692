package api

import (
	"sort"

	"bmcd/pkg/response"
	"bmcd/pkg/transport"
)

// adapterInfo is the static inventory view of a fabric adapter. A full
// BMC discovers these over the system bus; this service carries a fixed
// inventory table instead.
type adapterInfo struct {
	Model           string
	PartNumber      string
	SparePartNumber string
	SerialNumber    string
	Present         bool
	Functional      bool
}

var chassisInventory = map[string]map[string]adapterInfo{
	"chassis": {
		"fabric_adapter0": {
			Model:        "FA-100",
			PartNumber:   "02XY341",
			SerialNumber: "YL10CT0AB001",
			Present:      true,
			Functional:   true,
		},
		"fabric_adapter1": {
			Model:        "FA-100",
			PartNumber:   "02XY341",
			SerialNumber: "YL10CT0AB002",
			Present:      true,
			Functional:   false,
		},
	},
}

// sortedKeys keeps collection member order (and therefore etags) stable
// across requests.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func chassisCollection(req *transport.Request, res *response.Response) {
	members := make([]any, 0, len(chassisInventory))
	for _, id := range sortedKeys(chassisInventory) {
		members = append(members, map[string]any{
			"@odata.id": "/redfish/v1/Chassis/" + id,
		})
	}
	res.SetJSON(map[string]any{
		"@odata.id":           "/redfish/v1/Chassis",
		"@odata.type":         "#ChassisCollection.ChassisCollection",
		"Name":                "Chassis Collection",
		"Members":             members,
		"Members@odata.count": len(members),
	})
	res.HandleNotModified()
	res.End()
}

func chassisResource(req *transport.Request, res *response.Response) {
	id := req.Vars["chassisID"]
	if _, ok := chassisInventory[id]; !ok {
		resourceNotFound(res, "Chassis", id)
		return
	}
	res.SetJSON(map[string]any{
		"@odata.id":   "/redfish/v1/Chassis/" + id,
		"@odata.type": "#Chassis.v1_19_0.Chassis",
		"Id":          id,
		"Name":        id,
		"Status":      map[string]any{"State": "Enabled", "Health": "OK"},
		"FabricAdapters": map[string]any{
			"@odata.id": "/redfish/v1/Chassis/" + id + "/FabricAdapters",
		},
		"Sensors": map[string]any{
			"@odata.id": "/redfish/v1/Chassis/" + id + "/Sensors",
		},
	})
	res.HandleNotModified()
	res.End()
}

func fabricAdapterCollection(req *transport.Request, res *response.Response) {
	chassisID := req.Vars["chassisID"]
	adapters, ok := chassisInventory[chassisID]
	if !ok {
		resourceNotFound(res, "Chassis", chassisID)
		return
	}
	members := make([]any, 0, len(adapters))
	for _, id := range sortedKeys(adapters) {
		members = append(members, map[string]any{
			"@odata.id": "/redfish/v1/Chassis/" + chassisID + "/FabricAdapters/" + id,
		})
	}
	res.SetJSON(map[string]any{
		"@odata.id":           "/redfish/v1/Chassis/" + chassisID + "/FabricAdapters",
		"@odata.type":         "#FabricAdapterCollection.FabricAdapterCollection",
		"Name":                "Fabric Adapter Collection",
		"Members":             members,
		"Members@odata.count": len(members),
	})
	res.HandleNotModified()
	res.End()
}

func fabricAdapter(req *transport.Request, res *response.Response) {
	chassisID := req.Vars["chassisID"]
	adapterID := req.Vars["adapterID"]
	adapters, ok := chassisInventory[chassisID]
	if !ok {
		resourceNotFound(res, "Chassis", chassisID)
		return
	}
	info, ok := adapters[adapterID]
	if !ok {
		resourceNotFound(res, "FabricAdapter", adapterID)
		return
	}

	state := "Enabled"
	if !info.Present {
		state = "Absent"
	}
	health := "OK"
	if !info.Functional {
		health = "Critical"
	}
	v := map[string]any{
		"@odata.id":   "/redfish/v1/Chassis/" + chassisID + "/FabricAdapters/" + adapterID,
		"@odata.type": "#FabricAdapter.v1_4_0.FabricAdapter",
		"Id":          adapterID,
		"Name":        "Fabric Adapter",
		"Status":      map[string]any{"State": state, "Health": health},
	}
	if info.Model != "" {
		v["Model"] = info.Model
	}
	if info.PartNumber != "" {
		v["PartNumber"] = info.PartNumber
	}
	if info.SparePartNumber != "" {
		v["SparePartNumber"] = info.SparePartNumber
	}
	if info.SerialNumber != "" {
		v["SerialNumber"] = info.SerialNumber
	}
	res.SetJSON(v)
	res.HandleNotModified()
	res.End()
}
