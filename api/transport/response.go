package transport

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response. Data is always serialised so that an
// absent lookup answers with "data": null rather than a missing key.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta accompanies collection responses.
type ListMeta struct {
	Count  int `json:"count"`
	Offset int `json:"offset,omitempty"`
}

func Success(data interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

func SuccessList(data interface{}, meta ListMeta) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// Failure builds an error envelope. Details, when non-nil, travel in data so
// clients can inspect e.g. the degraded dependency map.
func Failure(code, message string, details interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Data: details}
}
