// SPDX-License-Identifier: MIT

package openapi_server

// RouteRequest names both endpoints by location key or node id
type RouteRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Algorithm  string `json:"algorithm,omitempty"`
	TargetRank int    `json:"targetRank,omitempty"`
}

// AssertRouteRequestRequired checks if the required fields are not zero-ed
func AssertRouteRequestRequired(obj RouteRequest) error {
	elements := map[string]interface{}{
		"from": obj.From,
		"to":   obj.To,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}
