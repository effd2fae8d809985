package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/catalog"
	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
	"github.com/magungh1/exporo-sme-export-assistant/internal/prompts"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/keylock"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

var (
	// ErrEmptyUtterance is returned for blank input.
	ErrEmptyUtterance = errors.New("utterance is empty")
	// ErrMissingUser is returned when no user id is supplied.
	ErrMissingUser = errors.New("user id is required")
)

// Kind says what a DisplayResult carries.
type Kind string

const (
	KindChat          Kind = "chat"
	KindCountryPrompt Kind = "country_prompt"
	KindFollowUp      Kind = "follow_up"
	KindAssessment    Kind = "assessment"
)

// DisplayResult is everything a chat surface needs to show for one turn.
type DisplayResult struct {
	Kind       Kind               `json:"kind"`
	Text       string             `json:"text"`
	State      State              `json:"state"`
	Country    string             `json:"country,omitempty"`
	Missing    []string           `json:"missing,omitempty"`
	Assessment *assessments.Entry `json:"assessment,omitempty"`
	Previous   *assessments.Entry `json:"previous,omitempty"`
}

// Deps are the collaborators of a Pipeline. Assessor defaults to Engine.
type Deps struct {
	Profiles *profiles.Service
	History  *assessments.Service
	Sessions SessionStore
	Engine   llm.Engine
	Assessor llm.Engine
}

// Pipeline processes utterances. Turns of one user run one at a time;
// different users never block each other.
type Pipeline struct {
	profiles *profiles.Service
	history  *assessments.Service
	sessions SessionStore
	engine   llm.Engine
	assessor llm.Engine
	now      func() time.Time
	locks    *keylock.Map
}

// NewPipeline builds a Pipeline.
func NewPipeline(d Deps) *Pipeline {
	if d.Sessions == nil {
		d.Sessions = NewMemorySessionStore()
	}
	if d.Assessor == nil {
		d.Assessor = d.Engine
	}
	return &Pipeline{
		profiles: d.Profiles,
		history:  d.History,
		sessions: d.Sessions,
		engine:   d.Engine,
		assessor: d.Assessor,
		now:      time.Now,
		locks:    keylock.New(),
	}
}

// Session returns the user's current session.
func (p *Pipeline) Session(ctx context.Context, userID string) (Session, error) {
	if strings.TrimSpace(userID) == "" {
		return Session{}, ErrMissingUser
	}
	return p.sessions.Load(ctx, userID)
}

// ProcessUtterance runs one conversational turn. Engine failures that
// survive the retry are returned and satisfy errors.Is with
// llm.ErrEngineUnavailable or llm.ErrEngineTimeout.
func (p *Pipeline) ProcessUtterance(ctx context.Context, userID, text string) (DisplayResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DisplayResult{}, ErrMissingUser
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return DisplayResult{}, ErrEmptyUtterance
	}

	unlock := p.locks.Lock(userID)
	defer unlock()

	sess, err := p.sessions.Load(ctx, userID)
	if err != nil {
		return DisplayResult{}, eris.Wrap(err, "load session")
	}
	profile, hasProfile, err := p.loadProfile(ctx, userID)
	if err != nil {
		return DisplayResult{}, err
	}

	prior := append([]prompts.Message(nil), sess.History...)
	sess.appendMessage(roleUser, text)

	tr := Step(sess.State, text)
	if tr.To != StateIdle {
		metrics.IncDetectorTrigger(tr.Country != "")
	}

	var result DisplayResult
	switch tr.To {
	case StateReadyToAnalyze:
		sess.LastCountry = tr.Country
		result, err = p.analyze(ctx, userID, tr.Country, profile)
		// The analysis attempt always returns the session to idle.
		sess.State = StateIdle
	case StateAwaitingCountry:
		sess.State = StateAwaitingCountry
		result = DisplayResult{
			Kind: KindCountryPrompt,
			Text: RenderCountryPrompt(countryChoices(profile), labelsFor(profile)),
		}
	default:
		sess.State = StateIdle
		var profilePtr *profiles.BusinessProfile
		if hasProfile {
			profilePtr = &profile
		}
		result, err = p.converse(ctx, userID, text, prior, sess.History, profilePtr)
	}
	if err != nil {
		// Keep the state change so a retry starts from idle; drop the failed turn's text.
		sess.History = prior
		sess.UpdatedAt = p.now().UTC()
		if saveErr := p.sessions.Save(ctx, sess); saveErr != nil {
			telemetry.Error("chat.session_save_failed", map[string]any{"user_id": userID, "error": saveErr})
		}
		return DisplayResult{}, err
	}

	result.State = sess.State
	sess.appendMessage(roleAssistant, result.Text)
	sess.UpdatedAt = p.now().UTC()
	if err := p.sessions.Save(ctx, sess); err != nil {
		return DisplayResult{}, eris.Wrap(err, "save session")
	}
	return result, nil
}

func (p *Pipeline) loadProfile(ctx context.Context, userID string) (profiles.BusinessProfile, bool, error) {
	profile, err := p.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		return profile, true, nil
	case errors.Is(err, profiles.ErrNotFound):
		return profiles.BusinessProfile{UserID: userID}, false, nil
	default:
		return profiles.BusinessProfile{}, false, eris.Wrap(err, "load profile")
	}
}

func (p *Pipeline) analyze(ctx context.Context, userID, country string, profile profiles.BusinessProfile) (DisplayResult, error) {
	start := p.now()
	metrics.IncAssessmentStarted()
	l := labelsFor(profile)

	prompt, err := prompts.FormatAssessment(prompts.AssessmentRequest{Profile: profile, Country: country})
	var incomplete *prompts.IncompleteProfileError
	if errors.As(err, &incomplete) {
		metrics.IncAssessmentFailed("incomplete_profile")
		return DisplayResult{
			Kind:    KindFollowUp,
			Text:    RenderFollowUp(incomplete.Missing, l),
			Country: country,
			Missing: incomplete.Missing,
		}, nil
	}
	if err != nil {
		metrics.IncAssessmentFailed("prompt")
		return DisplayResult{}, err
	}

	raw, err := p.assessor.Invoke(ctx, prompt)
	if err != nil {
		metrics.IncAssessmentFailed(failureReason(err))
		return DisplayResult{}, err
	}
	rec := assessments.Normalize(raw)

	prev, hasPrev, err := p.history.LatestStructured(ctx, userID, country)
	if err != nil {
		return DisplayResult{}, eris.Wrap(err, "load previous assessment")
	}
	entry, err := p.history.Append(ctx, userID, country, rec, util.Hash(prompt))
	if err != nil {
		metrics.IncAssessmentFailed("storage")
		return DisplayResult{}, eris.Wrap(err, "append assessment")
	}
	metrics.IncAssessmentCompleted(string(rec.Variant))
	metrics.ObserveAssessmentDuration(p.now().Sub(start).Seconds())

	var prevPtr *assessments.Entry
	if hasPrev {
		prevPtr = &prev
	}
	telemetry.Info("assessment.complete", map[string]any{
		"user_id":    userID,
		"country":    country,
		"variant":    string(rec.Variant),
		"seq":        entry.Seq,
		"request_id": middleware.RequestIDFrom(ctx),
	})
	return DisplayResult{
		Kind:       KindAssessment,
		Text:       RenderAssessment(entry, prevPtr, l),
		Country:    country,
		Assessment: &entry,
		Previous:   prevPtr,
	}, nil
}

// converse produces the chat reply and, concurrently, refreshes the
// profile from the transcript. Extraction problems never fail the turn.
func (p *Pipeline) converse(ctx context.Context, userID, text string, prior, transcript []prompts.Message, profile *profiles.BusinessProfile) (DisplayResult, error) {
	chatPrompt, err := prompts.FormatConversation(prompts.ConversationRequest{Profile: profile, History: prior, Utterance: text})
	if err != nil {
		return DisplayResult{}, err
	}

	var reply string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := p.engine.Invoke(gctx, chatPrompt)
		if err != nil {
			return err
		}
		reply = strings.TrimSpace(out)
		return nil
	})
	g.Go(func() error {
		p.extract(gctx, userID, transcript)
		return nil
	})
	if err := g.Wait(); err != nil {
		return DisplayResult{}, err
	}
	return DisplayResult{Kind: KindChat, Text: reply}, nil
}

func (p *Pipeline) extract(ctx context.Context, userID string, transcript []prompts.Message) {
	prompt, err := prompts.FormatExtraction(transcript)
	if err != nil {
		telemetry.Warn("extraction.prompt_failed", map[string]any{"user_id": userID, "error": err})
		return
	}
	raw, err := p.engine.Invoke(ctx, prompt)
	if err != nil {
		telemetry.Warn("extraction.engine_failed", map[string]any{"user_id": userID, "error": err})
		return
	}
	patch, ok := profiles.ParseExtraction(raw)
	if !ok {
		telemetry.Warn("extraction.unparseable", map[string]any{"user_id": userID, "reply_len": len(raw)})
		return
	}
	if patch.IsEmpty() {
		return
	}
	if _, err := p.profiles.Upsert(ctx, userID, patch); err != nil {
		telemetry.Warn("extraction.upsert_failed", map[string]any{"user_id": userID, "error": err})
	}
}

// countryChoices lists the profile's catalog target countries first, then
// the rest of the catalog in declaration order.
func countryChoices(profile profiles.BusinessProfile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, target := range profile.ExportInterest.TargetCountries {
		if c, ok := catalog.LookupCountry(target); ok && !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	}
	for _, name := range catalog.CountryNames() {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, llm.ErrEngineTimeout):
		return "engine_timeout"
	case errors.Is(err, llm.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "engine_error"
	}
}
