package search

import (
	"github.com/Gismakerr/DaChuang/models"
)

// GranuleOutput is the structured output for a single granule.
type GranuleOutput struct {
	Name       string   `json:"name" yaml:"name"`
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Filename   string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
	SizeMB     *float64 `json:"size_mb,omitempty" yaml:"size_mb,omitempty"`
	SizeStatus string   `json:"size_status" yaml:"size_status"`
}

// FinalOutput is the structured output for a whole search.
type FinalOutput struct {
	Query    QueryOutput          `json:"query" yaml:"query"`
	Summary  models.SearchSummary `json:"summary" yaml:"summary"`
	Granules []GranuleOutput      `json:"granules" yaml:"granules"`
}

// QueryOutput echoes the filters that were sent.
type QueryOutput struct {
	ShortName string       `json:"short_name" yaml:"short_name"`
	Start     string       `json:"start" yaml:"start"`
	End       string       `json:"end" yaml:"end"`
	BBox      *models.BBox `json:"bbox,omitempty" yaml:"bbox,omitempty"`
	Pattern   string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

func BuildGranuleOutput(g models.Granule) GranuleOutput {
	out := GranuleOutput{
		Name:       g.Name,
		ID:         g.ID,
		Filename:   g.Filename(),
		SizeStatus: g.Size.Status.String(),
	}
	if link, ok := g.FirstLink(); ok {
		out.URL = link
	}
	if g.Size.Known() {
		mb := g.Size.MB
		out.SizeMB = &mb
	}
	return out
}

func BuildFinalOutput(q models.SearchQuery, summary models.SearchSummary, granules []models.Granule) FinalOutput {
	out := FinalOutput{
		Query: QueryOutput{
			ShortName: q.ShortName,
			Start:     q.Start.Format(models.DateLayout),
			End:       q.End.Format(models.DateLayout),
			BBox:      q.BBox,
			Pattern:   q.NamePattern,
		},
		Summary:  summary,
		Granules: make([]GranuleOutput, 0, len(granules)),
	}
	for _, g := range granules {
		out.Granules = append(out.Granules, BuildGranuleOutput(g))
	}
	return out
}
