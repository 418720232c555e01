package session

import (
	"encoding/json"
)

var knownKeys = []string{"role", "entityId", "email", "name", "issuerStatus", "issuerName"}

type wire struct {
	Role         Role   `json:"role"`
	EntityID     string `json:"entityId,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	IssuerStatus string `json:"issuerStatus,omitempty"`
	IssuerName   string `json:"issuerName,omitempty"`
}

// UnmarshalJSON reads the typed fields and keeps everything else in Extra.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(all, k)
	}

	*s = Session{
		Role:         w.Role,
		EntityID:     w.EntityID,
		Email:        w.Email,
		Name:         w.Name,
		IssuerStatus: w.IssuerStatus,
		IssuerName:   w.IssuerName,
	}
	if len(all) > 0 {
		s.Extra = all
	}
	return nil
}

// MarshalJSON writes Extra first so typed fields always win.
func (s Session) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(wire{
		Role:         s.Role,
		EntityID:     s.EntityID,
		Email:        s.Email,
		Name:         s.Name,
		IssuerStatus: s.IssuerStatus,
		IssuerName:   s.IssuerName,
	})
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return typed, nil
	}

	merged := make(map[string]any, len(s.Extra)+len(knownKeys))
	for k, v := range s.Extra {
		merged[k] = v
	}
	var fields map[string]any
	if err := json.Unmarshal(typed, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}
