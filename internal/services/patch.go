package services

import (
	"fmt"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

// checkPatch rejects fields outside the mutable allowlist and values of the
// wrong type. It returns the patch keyed by database column.
func checkPatch(p models.Patch) (map[string]any, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty patch")
	}

	cols := make(map[string]any, len(p))
	for field, v := range p {
		if !models.MutableFields[field] {
			return nil, fmt.Errorf("field %q cannot be patched", field)
		}
		switch field {
		case "manualInput":
			if _, ok := v.(bool); !ok {
				return nil, fmt.Errorf("field %q must be a bool", field)
			}
		case "screeningScore":
			if _, ok := v.(float64); !ok {
				return nil, fmt.Errorf("field %q must be a number", field)
			}
		default:
			if _, ok := v.(string); !ok {
				return nil, fmt.Errorf("field %q must be a string", field)
			}
		}
		cols[models.Columns[field]] = v
	}
	return cols, nil
}

// applyPatch writes a checked patch onto c.
func applyPatch(c *models.Candidate, p models.Patch) {
	for field, v := range p {
		switch field {
		case "stage":
			c.Stage = v.(string)
		case "resumeUrl":
			c.ResumeURL = v.(string)
		case "videoUrl":
			c.VideoURL = v.(string)
		case "thumbnailUrl":
			c.ThumbnailURL = v.(string)
		case "resumeText":
			c.ResumeText = v.(string)
		case "manualInput":
			c.ManualInput = v.(bool)
		case "screeningScore":
			score := v.(float64)
			c.ScreeningScore = &score
		case "screeningSummary":
			c.ScreeningSummary = v.(string)
		}
	}
}
