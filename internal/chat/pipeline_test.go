package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
)

const structuredReply = "```json\n" + `{
  "readiness_score": 75,
  "category_scores": {"regulatory_compliance": 60, "market_viability": 70, "documentation_readiness": 80, "competitive_positioning": 90},
  "certifications": [{"name": "JAS", "requirement_level": "mandatory"}],
  "timeline_estimate": "3-6 months"
}` + "\n```"

// scripted answers by prompt kind and records every prompt it saw.
type scripted struct {
	mu      sync.Mutex
	chat    string
	chatErr error
	extract string
	extErr  error
	assess  []string
	assessN int
	prompts []string
}

func (s *scripted) engine() llm.Engine {
	return llm.EngineFunc(func(ctx context.Context, prompt string) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.prompts = append(s.prompts, prompt)
		switch {
		case strings.Contains(prompt, "Data Extraction Assistant"):
			return s.extract, s.extErr
		case strings.Contains(prompt, "export readiness to "):
			if len(s.assess) == 0 {
				return "", llm.Unavailable("test", errors.New("no assessment scripted"))
			}
			reply := s.assess[s.assessN%len(s.assess)]
			s.assessN++
			return reply, nil
		default:
			return s.chat, s.chatErr
		}
	})
}

func (s *scripted) count(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

type fixture struct {
	pipeline *Pipeline
	profiles *profiles.Service
	history  *assessments.Service
	engine   *scripted
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		profiles: profiles.NewService(profiles.NewMemoryRepo()),
		history:  assessments.NewService(assessments.NewMemoryRepo()),
		engine:   &scripted{chat: "Halo! Saya Exporo.", extract: "{}"},
	}
	f.pipeline = NewPipeline(Deps{
		Profiles: f.profiles,
		History:  f.history,
		Engine:   f.engine.engine(),
	})
	return f
}

func (f *fixture) seedCompleteProfile(t *testing.T, userID string) {
	t.Helper()
	_, err := f.profiles.Upsert(context.Background(), userID, profiles.Patch{
		CompanyName:     profiles.String("CV Sambal Nusantara"),
		ProductName:     profiles.String("Sambal"),
		Category:        profiles.String("Food & Beverages"),
		TargetCountries: []string{"Japan"},
	})
	require.NoError(t, err)
}

func TestProcessUtteranceRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyUtterance)
	_, err = f.pipeline.ProcessUtterance(context.Background(), "", "halo")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestProcessUtteranceChatExtractsProfile(t *testing.T) {
	f := newFixture(t)
	f.engine.extract = `{"company_name": "CV Maju", "product_details": {"name": "Keripik"}}`

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "Saya dari CV Maju, jual keripik")
	require.NoError(t, err)
	assert.Equal(t, KindChat, res.Kind)
	assert.Equal(t, "Halo! Saya Exporo.", res.Text)
	assert.Equal(t, StateIdle, res.State)

	p, err := f.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "CV Maju", p.CompanyName)
	assert.Equal(t, "Keripik", p.Product.Name)

	sess, err := f.pipeline.Session(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, roleUser, sess.History[0].Role)
	assert.Equal(t, roleAssistant, sess.History[1].Role)
}

func TestProcessUtteranceExtractionFailureDoesNotFailTurn(t *testing.T) {
	f := newFixture(t)
	f.engine.extract = "maaf, tidak ada data"

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "halo")
	require.NoError(t, err)
	assert.Equal(t, KindChat, res.Kind)

	_, err = f.profiles.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, profiles.ErrNotFound)
}

func TestProcessUtteranceAsksForCountry(t *testing.T) {
	f := newFixture(t)
	f.seedCompleteProfile(t, "u1")

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "saya mau cek kesiapan ekspor")
	require.NoError(t, err)
	assert.Equal(t, KindCountryPrompt, res.Kind)
	assert.Equal(t, StateAwaitingCountry, res.State)
	// The profile's own target comes first.
	assert.Contains(t, res.Text, ":\n- Japan\n- United States\n")
	assert.Zero(t, f.engine.count("export readiness to "))

	f.engine.assess = []string{structuredReply}
	res, err = f.pipeline.ProcessUtterance(context.Background(), "u1", "Jepang")
	require.NoError(t, err)
	assert.Equal(t, KindAssessment, res.Kind)
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, "Japan", res.Country)
}

func TestProcessUtteranceAssessmentWithDelta(t *testing.T) {
	f := newFixture(t)
	f.seedCompleteProfile(t, "u1")
	second := strings.Replace(structuredReply, `"readiness_score": 75`, `"readiness_score": 80`, 1)
	second = strings.Replace(second, `"market_viability": 70`, `"market_viability": 90`, 1)
	f.engine.assess = []string{structuredReply, second}

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "cek kesiapan ekspor ke Jepang")
	require.NoError(t, err)
	require.Equal(t, KindAssessment, res.Kind)
	require.NotNil(t, res.Assessment)
	assert.Nil(t, res.Previous)
	assert.Equal(t, int64(1), res.Assessment.Seq)
	assert.NotEmpty(t, res.Assessment.PromptHash)
	assert.Contains(t, res.Text, "75/100")

	res, err = f.pipeline.ProcessUtterance(context.Background(), "u1", "cek kesiapan ekspor ke Jepang lagi")
	require.NoError(t, err)
	require.NotNil(t, res.Previous)
	assert.Equal(t, int64(2), res.Assessment.Seq)
	assert.Contains(t, res.Text, "80/100 (naik 5 poin dari analisis sebelumnya)")

	entries, err := f.history.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestProcessUtteranceUnstructuredAssessmentIsStored(t *testing.T) {
	f := newFixture(t)
	f.seedCompleteProfile(t, "u1")
	f.engine.assess = []string{"Produk Anda cukup siap.\n- Sertifikat Halal wajib\n"}

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "analisis ekspor Malaysia")
	require.NoError(t, err)
	require.Equal(t, KindAssessment, res.Kind)
	assert.False(t, res.Assessment.Record.Structured())
	assert.Contains(t, res.Text, "Produk Anda cukup siap.")

	_, ok, err := f.history.LatestStructured(context.Background(), "u1", "Malaysia")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessUtteranceIncompleteProfileFollowsUp(t *testing.T) {
	f := newFixture(t)
	_, err := f.profiles.Upsert(context.Background(), "u1", profiles.Patch{ProductName: profiles.String("Batik")})
	require.NoError(t, err)

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "cek kesiapan ekspor ke Singapura")
	require.NoError(t, err)
	assert.Equal(t, KindFollowUp, res.Kind)
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, []string{profiles.FieldCompanyName, profiles.FieldCategory}, res.Missing)
	assert.Contains(t, res.Text, "1. Apa nama perusahaan Anda?")
	assert.Zero(t, f.engine.count("export readiness to "))

	entries, err := f.history.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessUtteranceEngineErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	f.engine.chatErr = llm.Timeout("test", context.DeadlineExceeded)

	_, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "halo")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrEngineTimeout)

	sess, err := f.pipeline.Session(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, sess.History)
	assert.Equal(t, StateIdle, sess.State)
}

func TestProcessUtteranceAssessmentFailureReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.seedCompleteProfile(t, "u1")

	_, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "cek kesiapan ekspor")
	require.NoError(t, err)
	_, err = f.pipeline.ProcessUtterance(context.Background(), "u1", "China")
	assert.ErrorIs(t, err, llm.ErrEngineUnavailable)

	sess, err := f.pipeline.Session(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, sess.State)
	assert.Equal(t, "China", sess.LastCountry)
}

func TestProcessUtteranceUsesSeparateAssessor(t *testing.T) {
	f := newFixture(t)
	f.seedCompleteProfile(t, "u1")
	var calls int
	f.pipeline.assessor = llm.EngineFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return structuredReply, nil
	})

	res, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "export readiness for Australia")
	require.NoError(t, err)
	assert.Equal(t, KindAssessment, res.Kind)
	assert.Equal(t, 1, calls)
	assert.Zero(t, f.engine.count("export readiness to "))
}

func TestProcessUtteranceSerializesPerUser(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.ProcessUtterance(context.Background(), "u1", "halo")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := f.pipeline.Session(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, sess.History, 20)
}
