// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/suplementia/evidence-engine/pkg/types"
)

// PubMed EFetch XML structures, reduced to the fields the pipeline uses.
type articleSet struct {
	Articles []article `xml:"PubmedArticle"`
}

type article struct {
	PMID        string   `xml:"MedlineCitation>PMID"`
	Title       string   `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract    []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Journal     string   `xml:"MedlineCitation>Article>Journal>Title"`
	Year        string   `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	MedlineDate string   `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>MedlineDate"`
	PubTypes    []string `xml:"MedlineCitation>Article>PublicationTypeList>PublicationType"`
}

// parseArticleSet decodes an EFetch XML payload into Studies.
func parseArticleSet(body []byte) ([]types.Study, error) {
	var set articleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing EFetch XML: %w", err)
	}

	studies := make([]types.Study, 0, len(set.Articles))
	for _, a := range set.Articles {
		if a.PMID == "" {
			continue
		}
		abstract := strings.TrimSpace(strings.Join(a.Abstract, " "))
		s := types.Study{
			PMID:         a.PMID,
			Title:        strings.TrimSpace(a.Title),
			Abstract:     abstract,
			Journal:      strings.TrimSpace(a.Journal),
			Year:         parseYear(a.Year, a.MedlineDate),
			Type:         mapStudyType(a.PubTypes),
			Participants: ParseParticipants(abstract),
			URL:          types.RecordURL(a.PMID),
		}
		s.FromRegistry = isRegistryJournal(s.Journal)
		studies = append(studies, s)
	}
	return studies, nil
}

// parseYear reads the publication year, falling back to MedlineDate strings
// like "2019 Jan-Feb".
func parseYear(year, medlineDate string) int {
	if y, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		return y
	}
	fields := strings.Fields(medlineDate)
	if len(fields) > 0 {
		if y, err := strconv.Atoi(fields[0]); err == nil {
			return y
		}
	}
	return 0
}

// mapStudyType reduces PubMed publication types to the pipeline's study
// types, best methodology first.
func mapStudyType(pubTypes []string) types.StudyType {
	has := func(want string) bool {
		for _, pt := range pubTypes {
			if strings.EqualFold(strings.TrimSpace(pt), want) {
				return true
			}
		}
		return false
	}

	switch {
	case has("Meta-Analysis"):
		return types.TypeMetaAnalysis
	case has("Systematic Review"):
		return types.TypeSystematicReview
	case has("Randomized Controlled Trial"):
		return types.TypeRCT
	case has("Clinical Trial"), has("Controlled Clinical Trial"):
		return types.TypeRCT
	case has("Observational Study"), has("Cohort Studies"), has("Comparative Study"):
		return types.TypeCohort
	case has("Case Reports"):
		return types.TypeCaseReport
	default:
		return types.TypeOther
	}
}

// isRegistryJournal marks the standardized-methodology review registry.
func isRegistryJournal(journal string) bool {
	return strings.Contains(strings.ToLower(journal), "cochrane")
}

// Participant-count patterns over abstract text: "n = 120",
// "120 participants", "120 patients were randomized".
var (
	nEqualsPattern      = regexp.MustCompile(`(?i)\bn\s*=\s*([\d,]+)`)
	participantsPattern = regexp.MustCompile(`(?i)\b([\d,]+)\s+(?:participants|patients|subjects|adults|volunteers|men|women)\b`)
)

// maxPlausibleParticipants guards against matching years or registry IDs.
const maxPlausibleParticipants = 5_000_000

// ParseParticipants extracts the participant count from an abstract,
// returning 0 when no plausible count is found. When several counts appear
// the largest plausible one wins, matching how trial abstracts report
// enrolment before attrition.
func ParseParticipants(abstract string) int {
	best := 0
	for _, re := range []*regexp.Regexp{nEqualsPattern, participantsPattern} {
		for _, m := range re.FindAllStringSubmatch(abstract, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > maxPlausibleParticipants {
				continue
			}
			if n > best {
				best = n
			}
		}
	}
	return best
}
