// internal/workers/notification/notify-match-results/template.go
package notifymatchresults

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"scholarship-workers/internal/models"
)

// Templates maps template names to their {{placeholder}} text. The digest
// envelope lives in the template file; the per-scholarship lines are built
// in code and injected through the matches/titles placeholders.
type Templates map[string]string

const (
	tplEmailSubject      = "match_digest_email_subject"
	tplEmailSubjectEmpty = "match_digest_email_subject_empty"
	tplEmailBody         = "match_digest_email_body"
	tplEmailBodyEmpty    = "match_digest_email_body_empty"
	tplSMS               = "match_digest_sms"
	tplSMSEmpty          = "match_digest_sms_empty"
)

var requiredTemplates = []string{
	tplEmailSubject, tplEmailSubjectEmpty,
	tplEmailBody, tplEmailBodyEmpty,
	tplSMS, tplSMSEmpty,
}

// DefaultTemplates returns the built-in digest templates, used when no
// template file is configured.
func DefaultTemplates() Templates {
	return Templates{
		tplEmailSubject:      "You match {{eligibleCount}} scholarship(s)",
		tplEmailSubjectEmpty: "Scholarship matches: nothing new right now",
		tplEmailBody: "Hi {{name}},\n\n" +
			"We found {{eligibleCount}} scholarship(s) you are eligible for out of {{totalCount}} checked:\n\n" +
			"{{matches}}Log in to see the full list and apply.\n",
		tplEmailBodyEmpty: "Hi {{name}},\n\n" +
			"We checked the current scholarship catalog and none of the active scholarships match your profile yet. We will notify you as new ones open up.\n",
		tplSMS:      "You match {{eligibleCount}} scholarship(s): {{titles}}.",
		tplSMSEmpty: "No scholarship matches for your profile right now. We will alert you when new ones open.",
	}
}

type templateFile struct {
	Version   string            `json:"version"`
	Templates map[string]string `json:"templates"`
}

// LoadTemplates reads a template file and checks every digest template is
// present, so a broken deploy fails at startup instead of per job.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	var f templateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse template file %s: %w", path, err)
	}

	for _, name := range requiredTemplates {
		if f.Templates[name] == "" {
			return nil, fmt.Errorf("template file %s: missing template %q", path, name)
		}
	}

	return f.Templates, nil
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// render substitutes {{name}} placeholders. Unknown placeholders stay in
// place so template typos are visible in the rendered output.
func render(tpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(m string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(m, "{{"), "}}")
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

func buildEmailSubject(tpls Templates, ranked models.RankedResults) string {
	if ranked.EligibleScholarships == 0 {
		return render(tpls[tplEmailSubjectEmpty], nil)
	}
	return render(tpls[tplEmailSubject], map[string]string{
		"eligibleCount": strconv.Itoa(ranked.EligibleScholarships),
	})
}

func buildEmailBody(tpls Templates, ranked models.RankedResults, topN int) string {
	name := "there"
	if ranked.UserProfile != nil && ranked.UserProfile.Name != "" {
		name = ranked.UserProfile.Name
	}

	if ranked.EligibleScholarships == 0 {
		return render(tpls[tplEmailBodyEmpty], map[string]string{"name": name})
	}

	var matches strings.Builder
	count := 0
	for _, result := range ranked.Results {
		if !result.IsEligible {
			continue
		}
		count++
		if count > topN {
			break
		}
		fmt.Fprintf(&matches, "%d. %s (%s)\n", count, result.Scholarship.Title, result.Scholarship.Provider)
		fmt.Fprintf(&matches, "   Amount: ₹%.0f | Match: %d%%\n", result.Scholarship.Amount, result.MatchPercentage)
		if result.Scholarship.ApplicationDeadline != nil {
			fmt.Fprintf(&matches, "   Apply by: %s\n", result.Scholarship.ApplicationDeadline.Format("02 Jan 2006"))
		}
		matches.WriteString("\n")
	}

	return render(tpls[tplEmailBody], map[string]string{
		"name":          name,
		"eligibleCount": strconv.Itoa(ranked.EligibleScholarships),
		"totalCount":    strconv.Itoa(ranked.TotalScholarships),
		"matches":       matches.String(),
	})
}

func buildSMSMessage(tpls Templates, ranked models.RankedResults, topN int) string {
	if ranked.EligibleScholarships == 0 {
		return render(tpls[tplSMSEmpty], nil)
	}

	var titles []string
	for _, result := range ranked.Results {
		if !result.IsEligible {
			continue
		}
		titles = append(titles, result.Scholarship.Title)
		if len(titles) >= topN {
			break
		}
	}

	msg := render(tpls[tplSMS], map[string]string{
		"eligibleCount": strconv.Itoa(ranked.EligibleScholarships),
		"titles":        strings.Join(titles, ", "),
	})
	// Truncate on rune boundaries so multibyte titles never get split.
	if r := []rune(msg); len(r) > 150 {
		msg = string(r[:147]) + "..."
	}
	return msg
}
