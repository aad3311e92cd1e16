package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/ecoguard/internal/audit/catalog"
	"github.com/farcloser/ecoguard/internal/store"
)

// RulesData builds one formatter entry per rule, keyed by rule id.
func RulesData(entries []catalog.Entry) []*format.Data {
	out := make([]*format.Data, 0, len(entries))

	for _, entry := range entries {
		state := "enabled"
		if !entry.Enabled {
			state = "disabled"
		}

		meta := map[string]any{
			"name":        entry.Info.Name,
			"analyzer":    entry.Analyzer,
			"category":    entry.Info.Category.String(),
			"severity":    entry.Info.Severity.String(),
			"state":       state,
			"description": entry.Info.Description,
		}

		if len(entry.Info.Tags) > 0 {
			meta["tags"] = strings.Join(entry.Info.Tags, ", ")
		}

		if entry.Custom {
			meta["custom"] = true
		}

		out = append(out, &format.Data{Object: entry.Info.ID, Meta: meta})
	}

	return out
}

// HistoryData builds one formatter entry per stored run, keyed by run id.
func HistoryData(runs []store.Run) []*format.Data {
	out := make([]*format.Data, 0, len(runs))

	for _, run := range runs {
		out = append(out, &format.Data{
			Object: run.ID,
			Meta: map[string]any{
				"started_at":     run.StartedAt.Format(time.RFC3339),
				"project_path":   run.ProjectPath,
				"files":          run.Files,
				"issues":         run.Issues,
				"green_score":    fmt.Sprintf("%.1f", run.GreenScore),
				"security_score": fmt.Sprintf("%.1f", run.SecurityScore),
			},
		})
	}

	return out
}
