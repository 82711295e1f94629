package dto

import "strings"

// POST /api/a/promotions, /api/a/promotions/preview
type PromoteRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,max=1000,dive,required"`
}

// Normalize: trim + buang duplikat, urutan dipertahankan.
func (r *PromoteRequest) Normalize() {
	seen := make(map[string]struct{}, len(r.StudentIDs))
	out := make([]string, 0, len(r.StudentIDs))
	for _, id := range r.StudentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	r.StudentIDs = out
}
