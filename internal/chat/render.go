package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
)

type labels struct {
	title          string
	score          string
	level          string
	categories     string
	regulatory     string
	market         string
	documentation  string
	competitive    string
	certifications string
	gaps           string
	recs           string
	actions        string
	timeline       string
	insights       string
	advantages     string
	challenges     string
	unstructured   string
	recovered      string
	up             string
	down           string
	same           string
	levels         map[assessments.RequirementLevel]string
	priorities     map[assessments.Priority]string
	countryAsk     string
	countryHint    string
	followUp       string
	fieldNames     map[string]string
	overridden     string
}

var indonesian = labels{
	title:          "Hasil Analisis Kesiapan Ekspor",
	score:          "Skor kesiapan",
	level:          "Tingkat kesiapan",
	categories:     "Skor per kategori",
	regulatory:     "Kepatuhan regulasi",
	market:         "Kelayakan pasar",
	documentation:  "Kesiapan dokumen",
	competitive:    "Posisi kompetitif",
	certifications: "Sertifikasi yang dibutuhkan",
	gaps:           "Kesenjangan kepatuhan",
	recs:           "Rekomendasi",
	actions:        "Langkah selanjutnya",
	timeline:       "Estimasi waktu",
	insights:       "Wawasan pasar",
	advantages:     "Keunggulan kompetitif",
	challenges:     "Tantangan",
	unstructured:   "Analisis tidak dalam format terstruktur, berikut jawaban lengkapnya.",
	recovered:      "Poin yang terdeteksi",
	up:             "naik %d poin dari analisis sebelumnya",
	down:           "turun %d poin dari analisis sebelumnya",
	same:           "sama dengan analisis sebelumnya",
	levels: map[assessments.RequirementLevel]string{
		assessments.LevelMandatory:   "wajib",
		assessments.LevelRecommended: "disarankan",
		assessments.LevelOptional:    "opsional",
	},
	priorities: map[assessments.Priority]string{
		assessments.PriorityHigh:   "tinggi",
		assessments.PriorityMedium: "sedang",
		assessments.PriorityLow:    "rendah",
	},
	countryAsk:  "Negara mana yang ingin Anda analisis untuk kesiapan ekspor?",
	countryHint: "Pilihan yang tersedia",
	followUp:    "Sebelum analisis kesiapan ekspor, saya perlu beberapa informasi lagi:",
	fieldNames: map[string]string{
		profiles.FieldCompanyName: "Apa nama perusahaan Anda?",
		profiles.FieldProductName: "Produk apa yang ingin Anda ekspor?",
		profiles.FieldCategory:    "Produk Anda termasuk kategori apa? (misalnya makanan olahan, tekstil, furniture)",
		profiles.FieldCapacity:    "Berapa kapasitas produksi Anda per bulan?",
		profiles.FieldCity:        "Di kota mana lokasi produksi Anda?",
	},
	overridden: "skor dihitung ulang dari rata-rata kategori",
}

var english = labels{
	title:          "Export Readiness Assessment",
	score:          "Readiness score",
	level:          "Readiness level",
	categories:     "Category scores",
	regulatory:     "Regulatory compliance",
	market:         "Market viability",
	documentation:  "Documentation readiness",
	competitive:    "Competitive positioning",
	certifications: "Required certifications",
	gaps:           "Compliance gaps",
	recs:           "Recommendations",
	actions:        "Next steps",
	timeline:       "Estimated timeline",
	insights:       "Market insights",
	advantages:     "Competitive advantages",
	challenges:     "Challenges",
	unstructured:   "The assessment was not returned in a structured format. The full answer follows.",
	recovered:      "Detected points",
	up:             "up %d points from the previous assessment",
	down:           "down %d points from the previous assessment",
	same:           "unchanged from the previous assessment",
	levels: map[assessments.RequirementLevel]string{
		assessments.LevelMandatory:   "mandatory",
		assessments.LevelRecommended: "recommended",
		assessments.LevelOptional:    "optional",
	},
	priorities: map[assessments.Priority]string{
		assessments.PriorityHigh:   "high",
		assessments.PriorityMedium: "medium",
		assessments.PriorityLow:    "low",
	},
	countryAsk:  "Which country would you like an export readiness assessment for?",
	countryHint: "Available options",
	followUp:    "Before running the export readiness assessment I need a bit more information:",
	fieldNames: map[string]string{
		profiles.FieldCompanyName: "What is your company name?",
		profiles.FieldProductName: "Which product do you want to export?",
		profiles.FieldCategory:    "Which category does your product belong to? (e.g. processed food, textiles, furniture)",
		profiles.FieldCapacity:    "What is your monthly production capacity?",
		profiles.FieldCity:        "In which city is your production located?",
	},
	overridden: "score recalculated from the category average",
}

func labelsFor(p profiles.BusinessProfile) labels {
	if p.PrefersEnglish() {
		return english
	}
	return indonesian
}

// RenderAssessment formats an entry as markdown. prev, when set, is the
// previous structured assessment for the same country.
func RenderAssessment(entry assessments.Entry, prev *assessments.Entry, l labels) string {
	var b strings.Builder
	rec := entry.Record
	fmt.Fprintf(&b, "## %s: %s\n\n", l.title, entry.Country)

	overall, ok := rec.Overall()
	if !ok {
		b.WriteString("_" + l.unstructured + "_\n\n")
		b.WriteString(strings.TrimSpace(rec.FallbackText))
		b.WriteString("\n")
		var points []string
		for _, c := range rec.Certifications {
			points = append(points, fmt.Sprintf("%s (%s)", c.Name, l.levels[c.RequirementLevel]))
		}
		for _, g := range rec.Gaps {
			points = append(points, g.Description)
		}
		if len(points) > 0 {
			fmt.Fprintf(&b, "\n### %s\n", l.recovered)
			writeList(&b, points)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "**%s:** %d/100", l.score, overall)
	if prev != nil {
		if prevOverall, ok := prev.Record.Overall(); ok {
			b.WriteString(" (" + delta(overall-prevOverall, l) + ")")
		}
	}
	b.WriteString("\n")
	if rec.OverallOverridden {
		b.WriteString("_" + l.overridden + "_\n")
	}
	if rec.ReadinessLevel != "" {
		fmt.Fprintf(&b, "**%s:** %s\n", l.level, rec.ReadinessLevel)
	}

	s := rec.Scores
	fmt.Fprintf(&b, "\n### %s\n", l.categories)
	writeList(&b, []string{
		l.regulatory + ": " + score(s.RegulatoryCompliance),
		l.market + ": " + score(s.MarketViability),
		l.documentation + ": " + score(s.DocumentationReadiness),
		l.competitive + ": " + score(s.CompetitivePositioning),
	})

	if len(rec.Certifications) > 0 {
		items := make([]string, 0, len(rec.Certifications))
		for _, c := range rec.Certifications {
			parts := []string{fmt.Sprintf("%s (%s)", c.Name, l.levels[c.RequirementLevel])}
			for _, extra := range []string{c.EstimatedTime, c.EstimatedCost, c.IssuingBody} {
				if extra != "" {
					parts = append(parts, extra)
				}
			}
			items = append(items, strings.Join(parts, ", "))
		}
		fmt.Fprintf(&b, "\n### %s\n", l.certifications)
		writeList(&b, items)
	}
	if len(rec.Gaps) > 0 {
		items := make([]string, 0, len(rec.Gaps))
		for _, g := range rec.Gaps {
			item := fmt.Sprintf("[%s] %s", l.priorities[g.Priority], g.Description)
			if g.RequiredAction != "" {
				item += ": " + g.RequiredAction
			}
			items = append(items, item)
		}
		fmt.Fprintf(&b, "\n### %s\n", l.gaps)
		writeList(&b, items)
	}
	if len(rec.Recommendations) > 0 {
		items := make([]string, 0, len(rec.Recommendations))
		for _, r := range rec.Recommendations {
			item := r.Text
			if r.Rationale != "" {
				item += " (" + r.Rationale + ")"
			}
			items = append(items, item)
		}
		fmt.Fprintf(&b, "\n### %s\n", l.recs)
		writeList(&b, items)
	}
	if len(rec.ActionItems) > 0 {
		fmt.Fprintf(&b, "\n### %s\n", l.actions)
		for i, a := range rec.ActionItems {
			fmt.Fprintf(&b, "%d. %s\n", i+1, a)
		}
	}
	if len(rec.CompetitiveAdvantages) > 0 {
		fmt.Fprintf(&b, "\n### %s\n", l.advantages)
		writeList(&b, rec.CompetitiveAdvantages)
	}
	if len(rec.PotentialChallenges) > 0 {
		fmt.Fprintf(&b, "\n### %s\n", l.challenges)
		writeList(&b, rec.PotentialChallenges)
	}
	if rec.MarketInsights != "" {
		fmt.Fprintf(&b, "\n**%s:** %s\n", l.insights, rec.MarketInsights)
	}
	if rec.Timeline != "" {
		fmt.Fprintf(&b, "\n**%s:** %s\n", l.timeline, rec.Timeline)
	}
	return b.String()
}

// RenderCountryPrompt asks the user to pick a target country, listing the
// profile's own targets first.
func RenderCountryPrompt(countries []string, l labels) string {
	var b strings.Builder
	b.WriteString(l.countryAsk + "\n\n" + l.countryHint + ":\n")
	writeList(&b, countries)
	return b.String()
}

// RenderFollowUp turns missing assessment fields into questions.
func RenderFollowUp(missing []string, l labels) string {
	var b strings.Builder
	b.WriteString(l.followUp + "\n")
	for i, field := range missing {
		q, ok := l.fieldNames[field]
		if !ok {
			q = field
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return b.String()
}

func delta(diff int, l labels) string {
	switch {
	case diff > 0:
		return fmt.Sprintf(l.up, diff)
	case diff < 0:
		return fmt.Sprintf(l.down, -diff)
	default:
		return l.same
	}
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "/100"
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}
