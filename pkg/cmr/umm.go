package cmr

import (
	"fmt"
	"strings"

	"github.com/Gismakerr/DaChuang/models"
)

// searchResponse is the body of granules.umm_json.
type searchResponse struct {
	Hits  int       `json:"hits"`
	Items []ummItem `json:"items"`
}

type ummItem struct {
	Meta struct {
		ConceptID string `json:"concept-id"`
	} `json:"meta"`
	UMM ummGranule `json:"umm"`
}

type ummGranule struct {
	GranuleUR   string       `json:"GranuleUR"`
	DataGranule *dataGranule `json:"DataGranule,omitempty"`
	RelatedUrls []relatedURL `json:"RelatedUrls,omitempty"`
}

type dataGranule struct {
	ArchiveAndDistributionInformation []archiveInfo `json:"ArchiveAndDistributionInformation,omitempty"`
}

type archiveInfo struct {
	Name        string   `json:"Name,omitempty"`
	SizeInBytes *int64   `json:"SizeInBytes,omitempty"`
	Size        *float64 `json:"Size,omitempty"`
	SizeUnit    string   `json:"SizeUnit,omitempty"`
}

type relatedURL struct {
	URL  string `json:"URL"`
	Type string `json:"Type"`
}

// Access selects which data links a granule exposes.
type Access string

const (
	AccessExternal Access = "external" // https links, usable from anywhere
	AccessDirect   Access = "direct"   // s3 links, usable in-region only
)

// ParseAccess validates an access mode string; empty means external.
func ParseAccess(s string) (Access, error) {
	switch Access(strings.ToLower(s)) {
	case "", AccessExternal:
		return AccessExternal, nil
	case AccessDirect:
		return AccessDirect, nil
	default:
		return "", fmt.Errorf("unknown access mode %q (want external or direct)", s)
	}
}

var unitToMB = map[string]float64{
	"KB": 1.0 / 1024,
	"MB": 1,
	"GB": 1024,
	"TB": 1024 * 1024,
	"PB": 1024 * 1024 * 1024,
}

// sizeOf sums the archive sizes of a granule in MB.
func sizeOf(dg *dataGranule) models.Size {
	if dg == nil || len(dg.ArchiveAndDistributionInformation) == 0 {
		return models.Size{Status: models.SizeAbsent}
	}
	var total float64
	for _, info := range dg.ArchiveAndDistributionInformation {
		switch {
		case info.SizeInBytes != nil:
			total += float64(*info.SizeInBytes) / (1024 * 1024)
		case info.Size != nil:
			factor, ok := unitToMB[strings.ToUpper(info.SizeUnit)]
			if !ok {
				return models.UnreadableSize(fmt.Errorf("unsupported size unit %q for %s", info.SizeUnit, info.Name))
			}
			total += *info.Size * factor
		default:
			return models.UnreadableSize(fmt.Errorf("no size for %s", info.Name))
		}
	}
	return models.KnownSize(total)
}

// dataLinks returns the GET DATA links matching access, in catalog order.
func dataLinks(urls []relatedURL, access Access) []string {
	var links []string
	for _, u := range urls {
		if u.Type != "GET DATA" && u.Type != "GET DATA VIA DIRECT ACCESS" {
			continue
		}
		isS3 := strings.HasPrefix(u.URL, "s3://")
		if (access == AccessDirect) == isS3 {
			links = append(links, u.URL)
		}
	}
	return links
}

func (it ummItem) granule(access Access) models.Granule {
	return models.Granule{
		ID:        it.Meta.ConceptID,
		Name:      it.UMM.GranuleUR,
		DataLinks: dataLinks(it.UMM.RelatedUrls, access),
		Size:      sizeOf(it.UMM.DataGranule),
	}
}
