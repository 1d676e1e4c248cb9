package types

// Envelope is the JSON body written on every response, success and error alike.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code,omitempty"`
	Details    any    `json:"details,omitempty"`
}
