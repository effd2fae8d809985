// Package prompts renders the text prompts sent to the reasoning engine.
// Every formatter is deterministic: equal inputs produce byte-identical
// output.
package prompts

import (
	"bytes"
	"embed"
	"strconv"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/catalog"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompts").
	Funcs(template.FuncMap{
		"join":       func(items []string) string { return strings.Join(items, ", ") },
		"or_default": orDefault,
	}).
	ParseFS(templateFS, "templates/*.tmpl"))

// ExtractionWindow is how many recent transcript messages the extraction prompt sees.
const ExtractionWindow = 6

const notSpecified = "Not specified"

// ErrUnknownCountry is returned when the assessment target is not in the catalog.
var ErrUnknownCountry = eris.New("unknown target country")

// IncompleteProfileError lists the profile fields an assessment still needs.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return "profile incomplete: missing " + strings.Join(e.Missing, ", ")
}

// Message is one transcript line.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssessmentRequest is the input of FormatAssessment.
type AssessmentRequest struct {
	Profile  profiles.BusinessProfile
	Country  string
	ImageRef string
}

// RequiredFields returns the assessment fields missing from p, in a fixed order.
func RequiredFields(p profiles.BusinessProfile) []string {
	var missing []string
	if !profiles.Meaningful(p.CompanyName) {
		missing = append(missing, profiles.FieldCompanyName)
	}
	if !profiles.Meaningful(p.Product.Name) {
		missing = append(missing, profiles.FieldProductName)
	}
	if !profiles.Meaningful(p.Category) {
		missing = append(missing, profiles.FieldCategory)
	}
	return missing
}

// FormatAssessment renders the export readiness prompt for the request.
// It returns *IncompleteProfileError when company name, product name or
// category is missing.
func FormatAssessment(req AssessmentRequest) (string, error) {
	if missing := RequiredFields(req.Profile); len(missing) > 0 {
		return "", &IncompleteProfileError{Missing: missing}
	}
	country, ok := catalog.LookupCountry(req.Country)
	if !ok {
		return "", eris.Wrapf(ErrUnknownCountry, "country %q", req.Country)
	}

	p := req.Profile
	imageRef := strings.TrimSpace(req.ImageRef)
	if imageRef == "" {
		imageRef = strings.TrimSpace(p.ProductImageRef)
	}
	data := struct {
		Profile        profiles.BusinessProfile
		Country        catalog.Country
		Capacity       string
		Location       string
		Certifications []string
		Required       []string
		ImageRef       string
	}{
		Profile:        p,
		Country:        country,
		Capacity:       formatCapacity(p.Capacity),
		Location:       formatLocation(p.Location),
		Certifications: p.ExportInterest.Certifications,
		Required:       catalog.Certifications(country.Code, p.Category),
		ImageRef:       imageRef,
	}
	return render("assessment.tmpl", data)
}

// FormatExtraction renders the profile extraction prompt over the last
// ExtractionWindow messages of the transcript.
func FormatExtraction(history []Message) (string, error) {
	if len(history) > ExtractionWindow {
		history = history[len(history)-ExtractionWindow:]
	}
	data := struct {
		Messages   []Message
		Categories []string
	}{
		Messages:   history,
		Categories: catalog.Categories(),
	}
	return render("extraction.tmpl", data)
}

// ConversationRequest is the input of FormatConversation. Profile is nil
// before the first extraction has stored anything.
type ConversationRequest struct {
	Profile   *profiles.BusinessProfile
	History   []Message
	Utterance string
}

// FormatConversation renders the chat prompt. A complete profile switches
// the assistant from profiling questions to export planning.
func FormatConversation(req ConversationRequest) (string, error) {
	var p profiles.BusinessProfile
	if req.Profile != nil {
		p = *req.Profile
	}
	completeness := profiles.CheckCompleteness(p)

	language := "Bahasa Indonesia"
	if p.PrefersEnglish() {
		language = "English"
	}
	data := struct {
		Complete  bool
		Missing   []string
		Countries []string
		Language  string
		Known     []string
		Messages  []Message
		Utterance string
	}{
		Complete:  completeness.Complete,
		Missing:   humanFields(completeness.Missing),
		Countries: catalog.CountryNames(),
		Language:  language,
		Known:     knownFacts(p),
		Messages:  req.History,
		Utterance: strings.TrimSpace(req.Utterance),
	}
	return render("conversation.tmpl", data)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", eris.Wrapf(err, "render %s", name)
	}
	return buf.String(), nil
}

func orDefault(s string) string {
	if !profiles.Meaningful(s) {
		return notSpecified
	}
	return strings.TrimSpace(s)
}

func formatCapacity(c profiles.Capacity) string {
	if c.Amount <= 0 {
		return notSpecified
	}
	out := strconv.FormatFloat(c.Amount, 'f', -1, 64)
	if profiles.Meaningful(c.Unit) {
		out += " " + strings.TrimSpace(c.Unit)
	}
	if profiles.Meaningful(c.Timeframe) {
		out += " per " + strings.TrimSpace(c.Timeframe)
	}
	return out
}

func formatLocation(l profiles.Location) string {
	var parts []string
	for _, s := range []string{l.City, l.Province, l.Country} {
		if profiles.Meaningful(s) {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	if len(parts) == 0 {
		return notSpecified
	}
	return strings.Join(parts, ", ")
}

var fieldLabels = map[string]string{
	profiles.FieldCompanyName: "company name",
	profiles.FieldProductName: "product name",
	profiles.FieldCategory:    "product category",
	profiles.FieldCapacity:    "production capacity",
	profiles.FieldCity:        "production city",
}

func humanFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if label, ok := fieldLabels[f]; ok {
			out = append(out, label)
			continue
		}
		out = append(out, f)
	}
	return out
}

func knownFacts(p profiles.BusinessProfile) []string {
	var facts []string
	add := func(label, value string) {
		if profiles.Meaningful(value) {
			facts = append(facts, label+": "+strings.TrimSpace(value))
		}
	}
	add("Company", p.CompanyName)
	add("Product", p.Product.Name)
	add("Category", p.Category)
	if p.Capacity.Amount > 0 {
		facts = append(facts, "Capacity: "+formatCapacity(p.Capacity))
	}
	add("City", p.Location.City)
	add("Province", p.Location.Province)
	add("Export experience", p.ExportInterest.Experience)
	if len(p.ExportInterest.TargetCountries) > 0 {
		facts = append(facts, "Target countries: "+strings.Join(p.ExportInterest.TargetCountries, ", "))
	}
	return facts
}
