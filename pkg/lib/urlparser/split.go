package urlparser

import (
	"errors"
	"strings"
)

const (
	ResourceCart   = ""
	ResourceItems  = "items"
	ResourceCount  = "count"
	ResourceExport = "export"
)

type PathParams struct {
	SessionID string
	Resource  string
}

// ParseCartPath splits /carts/{sessionId}[/{resource}].
func ParseCartPath(path string) (PathParams, error) {
	trimmed := strings.Trim(path, "/")
	parts := strings.Split(trimmed, "/")

	params := PathParams{}

	if len(parts) < 2 || len(parts) > 3 {
		return params, errors.New("wrong url format")
	}
	if parts[0] != "carts" {
		return params, errors.New("invalid path, expected /carts/{sessionId}")
	}
	if parts[1] == "" {
		return params, errors.New("invalid sessionId, must not be empty")
	}
	params.SessionID = parts[1]

	if len(parts) == 2 {
		return params, nil
	}

	switch parts[2] {
	case ResourceItems, ResourceCount, ResourceExport:
		params.Resource = parts[2]
		return params, nil
	default:
		return params, errors.New("invalid path, expected /carts/{sessionId}/{items|count|export}")
	}
}
