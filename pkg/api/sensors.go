package api

import (
	"bmcd/pkg/response"
	"bmcd/pkg/sensor"
	"bmcd/pkg/transport"
)

// hostSensor serves the chassis Sensors resources. Nil until the app
// wires a running sampler; the endpoints 404 without one.
var hostSensor *sensor.Sensor

// UseSensor installs the sampler backing the Sensors resources.
func UseSensor(s *sensor.Sensor) { hostSensor = s }

type sensorReading struct {
	Name  string
	Type  string
	Units string
	Value func(sensor.Snapshot) float64
}

// sensorTable maps sensor IDs to how their reading is taken. Readings
// are process/host figures; thermal and power channels would slot in
// here on real hardware.
var sensorTable = map[string]sensorReading{
	"cpu_count": {
		Name:  "CPU Count",
		Type:  "Count",
		Value: func(s sensor.Snapshot) float64 { return float64(s.CPUCount) },
	},
	"memory_total": {
		Name:  "Memory Total",
		Type:  "Memory",
		Units: "By",
		Value: func(s sensor.Snapshot) float64 { return float64(s.MemTotal) },
	},
	"memory_used": {
		Name:  "Memory Used",
		Type:  "Memory",
		Units: "By",
		Value: func(s sensor.Snapshot) float64 { return float64(s.MemUsed) },
	},
	"goroutines": {
		Name:  "Goroutines",
		Type:  "Count",
		Value: func(s sensor.Snapshot) float64 { return float64(s.Goroutines) },
	},
}

func sensorCollection(req *transport.Request, res *response.Response) {
	chassisID := req.Vars["chassisID"]
	if _, ok := chassisInventory[chassisID]; !ok {
		resourceNotFound(res, "Chassis", chassisID)
		return
	}
	if hostSensor == nil {
		resourceNotFound(res, "SensorCollection", chassisID)
		return
	}
	members := make([]any, 0, len(sensorTable))
	for _, id := range sortedKeys(sensorTable) {
		members = append(members, map[string]any{
			"@odata.id": "/redfish/v1/Chassis/" + chassisID + "/Sensors/" + id,
		})
	}
	res.SetJSON(map[string]any{
		"@odata.id":           "/redfish/v1/Chassis/" + chassisID + "/Sensors",
		"@odata.type":         "#SensorCollection.SensorCollection",
		"Name":                "Sensor Collection",
		"Members":             members,
		"Members@odata.count": len(members),
	})
	res.HandleNotModified()
	res.End()
}

// sensorResource serves a live reading; readings change between
// requests so no fingerprint is offered for conditional GET.
func sensorResource(req *transport.Request, res *response.Response) {
	chassisID := req.Vars["chassisID"]
	sensorID := req.Vars["sensorID"]
	if _, ok := chassisInventory[chassisID]; !ok {
		resourceNotFound(res, "Chassis", chassisID)
		return
	}
	rd, ok := sensorTable[sensorID]
	if !ok || hostSensor == nil {
		resourceNotFound(res, "Sensor", sensorID)
		return
	}
	snap := hostSensor.Snapshot()
	v := map[string]any{
		"@odata.id":   "/redfish/v1/Chassis/" + chassisID + "/Sensors/" + sensorID,
		"@odata.type": "#Sensor.v1_6_0.Sensor",
		"Id":          sensorID,
		"Name":        rd.Name,
		"ReadingType": rd.Type,
		"Reading":     rd.Value(snap),
		"Status":      map[string]any{"State": "Enabled", "Health": "OK"},
	}
	if rd.Units != "" {
		v["ReadingUnits"] = rd.Units
	}
	res.SetJSON(v)
	res.End()
}
