package viiper

// API responses of the VIIPER line protocol.

type BusListResponse struct {
	Buses []uint32 `json:"buses"`
}

type BusCreateResponse struct {
	BusID uint32 `json:"busId"`
}

type BusRemoveResponse struct {
	BusID uint32 `json:"busId"`
}

type Device struct {
	BusID uint32 `json:"busId"`
	DevID string `json:"devId"`
	Vid   string `json:"vid"`
	Pid   string `json:"pid"`
	Type  string `json:"type"`
}

type DevicesListResponse struct {
	Devices []Device `json:"devices"`
}

// DeviceAddResponse covers both server generations: older servers only
// return ID ("<busId>-<devId>"), newer ones also fill the split fields.
type DeviceAddResponse struct {
	ID    string `json:"id,omitempty"`
	BusID uint32 `json:"busId,omitempty"`
	DevID string `json:"devId,omitempty"`
	Type  string `json:"type,omitempty"`
}

type DeviceRemoveResponse struct {
	BusID uint32 `json:"busId"`
	DevID string `json:"devId"`
}

type apiError struct {
	Error string `json:"error"`
}
