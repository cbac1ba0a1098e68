package registry

// Record is one compliance record from the publicDOCRev listing.
type Record struct {
	TrackingNumber string `json:"trackingNumber"`
	MakeName       string `json:"makeName"`
	ModelName      string `json:"modelName"`
	Status         string `json:"status"`
	UpdatedAt      string `json:"updatedAt"`
}

// Serial is one serial-number item from a record's snapshot. Value is
// either a single serial or a hyphenated range string.
type Serial struct {
	Value     string `json:"value"`
	MfrSerial string `json:"mfrSerial"`
	UpdatedAt string `json:"updatedAt"`
}

// SerialMatch is one hit from a direct serial lookup. Unlike Record it
// carries the docType, which the resolver uses as the description.
type SerialMatch struct {
	TrackingNumber string `json:"trackingNumber"`
	DocType        string `json:"docType"`
	Status         string `json:"status"`
	MakeName       string `json:"makeName"`
	ModelName      string `json:"modelName"`
	UpdatedAt      string `json:"updatedAt"`
}

// The API wraps every list response in {"data": {"items": [...]}}.
type recordsEnvelope struct {
	Data struct {
		Items []Record `json:"items"`
	} `json:"data"`
}

type serialsEnvelope struct {
	Data struct {
		Items []Serial `json:"items"`
	} `json:"data"`
}

type matchesEnvelope struct {
	Data struct {
		Items []SerialMatch `json:"items"`
	} `json:"data"`
}
